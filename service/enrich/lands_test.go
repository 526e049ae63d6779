package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaverse/meda-api/service/persist"
)

func newLandEngine(gateway *fakeGateway) *Engine {
	catalog := &fakeCatalog{
		contracts: map[string]persist.Contract{
			persist.ContractNameLands: {
				Name:    persist.ContractNameLands,
				Address: persist.MustAddress("0x1111111111111111111111111111111111111111"),
				Kind:    persist.ContractKindERC1155,
				Active:  true,
			},
		},
	}
	return NewEngine(gateway, newFakeHeroRepo(), newFakeWeaponRepo(), catalog, &fakeErrorLog{})
}

func TestLandsBalances(t *testing.T) {
	engine := newLandEngine(&fakeGateway{balances: []uint64{2, 0, 1}})

	lands := engine.Lands(context.Background(), testWallet)
	require.Len(t, lands, 3)

	assert.EqualValues(t, 2, lands[0].Balance)
	assert.EqualValues(t, 0, lands[1].Balance)
	assert.EqualValues(t, 1, lands[2].Balance)

	assert.Equal(t, "Common", lands[0].Rarity)
	assert.Equal(t, 1, lands[0].Plots)
	assert.Equal(t, "Rare", lands[1].Rarity)
	assert.Equal(t, 3, lands[1].Plots)
	assert.Equal(t, "Legendary", lands[2].Rarity)
	assert.Equal(t, 7, lands[2].Plots)

	for i, l := range lands {
		assert.EqualValues(t, i+1, l.TokenID)
		assert.Equal(t, "land", l.NFTType)
		assert.Equal(t, "0x1111111111111111111111111111111111111111", l.ContractAddress)
	}
}

func TestLandsChainFailureSignalsUnknownBalance(t *testing.T) {
	engine := newLandEngine(&fakeGateway{balanceErr: errors.New("no healthy endpoint")})

	lands := engine.Lands(context.Background(), testWallet)
	require.Len(t, lands, 3)

	for _, l := range lands {
		assert.EqualValues(t, -1, l.Balance)
	}
	// static metadata still present
	assert.Equal(t, "Common Land Ticket", lands[0].Name)
}

func TestLandTicketCount(t *testing.T) {
	assert.Equal(t, 3, LandTicketCount([]LandEntry{{Balance: 2}, {Balance: 0}, {Balance: 1}}))
	// unknown balances count as zero
	assert.Equal(t, 0, LandTicketCount([]LandEntry{{Balance: -1}, {Balance: -1}, {Balance: -1}}))
}
