package enrich

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaverse/meda-api/service/persist"
)

func TestRenderHeroEnvelope(t *testing.T) {
	_, _, _, _, engine := newHeroFixture()

	heroes, err := engine.Heroes(context.Background(), testWallet)
	require.NoError(t, err)

	envelope := RenderHeroEnvelope(heroes)
	require.Equal(t, 2, envelope.Count)
	assert.Nil(t, envelope.Next)

	first := envelope.Results[0]
	assert.EqualValues(t, 101, first.BCID)
	assert.Equal(t, "Ranger", first.Title)
	assert.Equal(t, "Solaris", first.Fraction)
	assert.Equal(t, "SPECIALIST", first.CardClass)
	assert.EqualValues(t, 7, first.Reward.Power)
	assert.EqualValues(t, 70, first.Metadata.Sec)
	assert.False(t, first.Metadata.Revolution)
	assert.EqualValues(t, 1020, first.Metadata.SeasonCardID)

	second := envelope.Results[1]
	assert.EqualValues(t, 102, second.BCID)
	assert.Equal(t, "Hero #102", second.Title)
	assert.Equal(t, "Neutral", second.Fraction)
	assert.Equal(t, "SPECIALIST", second.CardClass)
	assert.EqualValues(t, 3, second.Reward.Power)
	assert.True(t, second.Metadata.Revolution)
	assert.EqualValues(t, 2031, second.Metadata.SeasonCardID)
}

func TestHeroEnvelopeWireShape(t *testing.T) {
	envelope := RenderHeroEnvelope([]EnrichedHero{{
		Token: persist.HeroToken{
			BCID:         101,
			Sec:          70,
			Ano:          70,
			Inn:          70,
			SeasonCardID: 1020,
			SerialNumber: 7,
		},
		Character: persist.Character{Title: "Ranger", Fraction: "Solaris", Class: persist.CardClassSpecialist},
		Owner:     testWallet,
	}})

	bs, err := json.Marshal(envelope)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bs, &decoded))

	assert.EqualValues(t, 1, decoded["count"])
	assert.Nil(t, decoded["next"])

	results := decoded["results"].([]any)
	entry := results[0].(map[string]any)
	assert.EqualValues(t, 101, entry["bc_id"])
	assert.Equal(t, "SPECIALIST", entry["card_class"])

	metadata := entry["metadata"].(map[string]any)
	assert.EqualValues(t, 70, metadata["sec"])
	assert.Equal(t, false, metadata["revolution"])

	reward := entry["reward"].(map[string]any)
	assert.EqualValues(t, 7, reward["power"])
}

func TestRenderWeaponUnity(t *testing.T) {
	weapons := []EnrichedWeapon{{
		Token: persist.WeaponToken{
			BCID:          5,
			Security:      80,
			Anonymity:     40,
			Innovation:    60,
			WeaponTier:    1,
			WeaponType:    2,
			WeaponSubtype: 1,
			Category:      3,
			SerialNumber:  9,
		},
		WeaponName:      "Blaster",
		Owner:           testWallet,
		ContractAddress: persist.MustAddress("0x2222222222222222222222222222222222222222"),
	}}

	out := RenderWeaponUnity(weapons)
	require.Len(t, out, 1)

	w := out[0]
	assert.EqualValues(t, 5, w.BCID)
	assert.Equal(t, "Blaster", w.WeaponName)
	assert.True(t, w.Minted)
	assert.False(t, w.Burned)
	assert.EqualValues(t, 9, w.Metadata.SerialNumber)
	assert.Equal(t, testWallet.String(), w.OwnerAddress)
}

func TestRenderSlimViews(t *testing.T) {
	heroes := []EnrichedHero{{
		Token: persist.HeroToken{BCID: 101, Sec: 70, Ano: 71, Inn: 72, SeasonCardID: 1020},
	}}
	slim := RenderHeroSlim(heroes)
	require.Len(t, slim, 1)
	assert.EqualValues(t, 101, slim[0].BCID)
	assert.EqualValues(t, 71, slim[0].Metadata.Ano)
	assert.EqualValues(t, 1020, slim[0].Metadata.SeasonCardID)

	weapons := []EnrichedWeapon{{
		Token:      persist.WeaponToken{BCID: 5, Security: 80, Anonymity: 40, Innovation: 60},
		WeaponName: "Blaster",
	}}
	slimW := RenderWeaponSlim(weapons)
	require.Len(t, slimW, 1)
	assert.Equal(t, "Blaster", slimW[0].WeaponName)
	assert.EqualValues(t, 80, slimW[0].Security)
}
