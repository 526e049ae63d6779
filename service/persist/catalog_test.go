package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCardClass(t *testing.T) {
	cases := map[string]CardClass{
		"Harvester":     CardClassHarvester,
		"warmonger":     CardClassWarmonger,
		"DEFENDER":      CardClassDefender,
		" Specialist ":  CardClassSpecialist,
		"revolutionist": CardClassRevolutionist,
		"unknown":       CardClassSpecialist,
		"":              CardClassSpecialist,
	}
	for in, want := range cases {
		assert.Equal(t, want, ToCardClass(in), "input %q", in)
	}
}

func TestCardClassRender(t *testing.T) {
	assert.Equal(t, "SPECIALIST", CardClassSpecialist.Render())
	assert.Equal(t, "REVOLUTIONIST", CardClassRevolutionist.Render())
}

func TestDefaultCharacter(t *testing.T) {
	c := DefaultCharacter(102)
	assert.Equal(t, "Hero #102", c.Title)
	assert.Equal(t, "Neutral", c.Fraction)
	assert.Equal(t, CardClassSpecialist, c.Class)
}

func TestFallbackWeaponName(t *testing.T) {
	cases := []struct {
		key  WeaponMappingKey
		want string
	}{
		{WeaponMappingKey{Tier: 1, Type: 1, Subtype: 0, Category: 3}, "T1 Sword #3"},
		{WeaponMappingKey{Tier: 2, Type: 2, Subtype: 1, Category: 7}, "T2 Gun #7"},
		{WeaponMappingKey{Tier: 3, Type: 9, Subtype: 4, Category: 1}, "T3 Weapon #1"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FallbackWeaponName(tc.key))
	}
}

func TestToAddress(t *testing.T) {
	a, err := ToAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
	assert.NoError(t, err)
	assert.Equal(t, Address("0xab5801a7d398351b8be11c439e05c5b3259aec9b"), a)

	_, err = ToAddress("0x123")
	assert.ErrorAs(t, err, &ErrInvalidAddress{})

	_, err = ToAddress("")
	assert.Error(t, err)
}
