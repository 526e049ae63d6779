package enrich

import (
	"context"

	"github.com/medaverse/meda-api/service/logger"
	"github.com/medaverse/meda-api/service/persist"
)

// Land tickets conflate ownership and balance under ERC-1155, so they skip
// the persistent token cache entirely. Per-ticket metadata is static.

// LandEntry is the per-ticket render. Balance is -1 when the chain read
// failed, so the client can distinguish "none owned" from "unknown".
type LandEntry struct {
	ID              uint64 `json:"id"`
	TokenID         uint64 `json:"token_id"`
	Name            string `json:"name"`
	Rarity          string `json:"rarity"`
	Plots           int    `json:"plots"`
	Image           string `json:"image"`
	Balance         int64  `json:"balance"`
	ContractAddress string `json:"contract_address"`
	NFTType         string `json:"nft_type"`
}

type landMeta struct {
	name   string
	rarity string
	plots  int
	image  string
}

var landTokenIDs = []uint64{1, 2, 3}

var landCatalog = map[uint64]landMeta{
	1: {name: "Common Land Ticket", rarity: "Common", plots: 1, image: "https://assets.medaverse.io/lands/common.png"},
	2: {name: "Rare Land Ticket", rarity: "Rare", plots: 3, image: "https://assets.medaverse.io/lands/rare.png"},
	3: {name: "Legendary Land Ticket", rarity: "Legendary", plots: 7, image: "https://assets.medaverse.io/lands/legendary.png"},
}

// Lands returns the three land ticket entries with the wallet's balances.
// A gateway failure degrades every balance to -1 rather than failing.
func (e *Engine) Lands(ctx context.Context, wallet persist.Address) []LandEntry {
	contractAddr := ""
	if c, err := e.catalog.ContractByName(ctx, persist.ContractNameLands); err == nil {
		contractAddr = c.Address.String()
	}

	balances, err := e.gateway.ERC1155BalanceOfBatch(ctx, persist.ContractNameLands, wallet, landTokenIDs)
	if err != nil {
		logger.For(ctx).WithError(err).Warn("land balance query failed, returning unknown balances")
		balances = nil
	}

	out := make([]LandEntry, len(landTokenIDs))
	for i, id := range landTokenIDs {
		meta := landCatalog[id]
		balance := int64(-1)
		if balances != nil {
			balance = int64(balances[i])
		}
		out[i] = LandEntry{
			ID:              id,
			TokenID:         id,
			Name:            meta.name,
			Rarity:          meta.rarity,
			Plots:           meta.plots,
			Image:           meta.image,
			Balance:         balance,
			ContractAddress: contractAddr,
			NFTType:         "land",
		}
	}
	return out
}

// LandTicketCount sums the wallet's land balances, treating unknown as zero.
func LandTicketCount(lands []LandEntry) int {
	total := 0
	for _, l := range lands {
		if l.Balance > 0 {
			total += int(l.Balance)
		}
	}
	return total
}
