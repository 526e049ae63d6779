package score

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// referenceFold mirrors the fold in 64-bit arithmetic so the test does not
// share the implementation's overflow behavior.
func referenceFold(x uint32) uint32 {
	y := uint64(x)
	y = ((y >> 16) ^ y) * 0x119DE1F3 % (1 << 32)
	y = ((y >> 16) ^ y) * 0x119DE1F3 % (1 << 32)
	return uint32((y >> 16) ^ y)
}

func TestHash32Vectors(t *testing.T) {
	vectors := map[uint32]uint32{
		0:          0,
		1:          0x4AB1ACDB,
		12345:      0x87E85705,
		999999:     0x589CA584,
		0xFFFFFFFF: 0x58D5AB82,
	}

	for in, want := range vectors {
		assert.Equal(t, want, Hash32(in), "input %d", in)
	}
}

func TestHash32MatchesReference(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		x := r.Uint32()
		assert.Equal(t, referenceFold(x), Hash32(x), "input %d", x)
	}
}

func TestHash32Constant(t *testing.T) {
	assert.EqualValues(t, 0x119DE1F3, foldConstant)
}
