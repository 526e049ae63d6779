package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeasonCardIDDecomposition(t *testing.T) {
	for s := uint64(0); s < 10000; s++ {
		h := HeroToken{SeasonCardID: s}
		recomposed := 1000*h.CardType() + 10*h.SeasonID() + h.CardSeasonCollectionID()
		assert.Equal(t, s, recomposed, "season_card_id %d", s)
		assert.Equal(t, h.CardType() == 2, h.Revolution(), "season_card_id %d", s)
	}
}

func TestSeasonCardIDFields(t *testing.T) {
	h := HeroToken{SeasonCardID: 2031}
	assert.EqualValues(t, 2, h.CardType())
	assert.EqualValues(t, 3, h.SeasonID())
	assert.EqualValues(t, 1, h.CardSeasonCollectionID())
	assert.True(t, h.Revolution())

	h = HeroToken{SeasonCardID: 1020}
	assert.EqualValues(t, 1, h.CardType())
	assert.EqualValues(t, 2, h.SeasonID())
	assert.EqualValues(t, 0, h.CardSeasonCollectionID())
	assert.False(t, h.Revolution())
}
