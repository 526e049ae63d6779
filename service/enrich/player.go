package enrich

import (
	"context"
	"math/big"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/medaverse/meda-api/service/logger"
	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/util"
)

// RewardBalance is one ERC-20 reward token balance. Wei is the raw chain
// integer as a decimal string; Balance is scaled by the token's 18 decimals.
type RewardBalance struct {
	Token   string  `json:"token"`
	Wei     string  `json:"wei"`
	Balance float64 `json:"balance"`
}

// PlayerData is the combined render used by the game lobby: every NFT kind
// in slim form plus counts, derived boosts and reward-token balances.
type PlayerData struct {
	Wallet         string             `json:"wallet"`
	Heroes         []HeroSlimEntry    `json:"heroes"`
	Weapons        []WeaponSlimEntry  `json:"weapons"`
	Lands          []LandEntry        `json:"lands"`
	HeroCount      int                `json:"hero_count"`
	WeaponCount    int                `json:"weapon_count"`
	LandTickets    int                `json:"land_tickets"`
	Boosts         persist.NFTBoosts  `json:"boosts"`
	RewardBalances []RewardBalance    `json:"token_balances"`
	LastUpdated    time.Time          `json:"last_updated"`
}

var rewardTokens = []string{persist.ContractNameMOH, persist.ContractNameMedaLLC}

// PlayerData builds the combined view. The three NFT branches and the
// reward balances are fetched concurrently; hero and weapon failures fail
// the request, everything else degrades.
func (e *Engine) PlayerData(ctx context.Context, wallet persist.Address) (PlayerData, error) {
	var heroes []EnrichedHero
	var weapons []EnrichedWeapon
	var lands []LandEntry
	rewards := make([]RewardBalance, len(rewardTokens))

	wp := pool.New().WithErrors().WithContext(ctx)
	wp.Go(func(ctx context.Context) error {
		var err error
		heroes, err = e.Heroes(ctx, wallet)
		return err
	})
	wp.Go(func(ctx context.Context) error {
		var err error
		weapons, err = e.Weapons(ctx, wallet)
		return err
	})
	wp.Go(func(ctx context.Context) error {
		lands = e.Lands(ctx, wallet)
		return nil
	})
	for i, token := range rewardTokens {
		i, token := i, token
		wp.Go(func(ctx context.Context) error {
			rewards[i] = e.rewardBalance(ctx, token, wallet)
			return nil
		})
	}
	if err := wp.Wait(); err != nil {
		return PlayerData{}, err
	}

	landTickets := LandTicketCount(lands)
	return PlayerData{
		Wallet:         wallet.String(),
		Heroes:         RenderHeroSlim(heroes),
		Weapons:        RenderWeaponSlim(weapons),
		Lands:          lands,
		HeroCount:      len(heroes),
		WeaponCount:    len(weapons),
		LandTickets:    landTickets,
		Boosts:         ComputeBoosts(heroes, weapons, landTickets),
		RewardBalances: rewards,
		LastUpdated:    time.Now().UTC(),
	}, nil
}

// Boosts recomputes the boost snapshot alone, for the score pipeline.
func (e *Engine) Boosts(ctx context.Context, wallet persist.Address) (persist.NFTBoosts, error) {
	var heroes []EnrichedHero
	var weapons []EnrichedWeapon
	var lands []LandEntry

	wp := pool.New().WithErrors().WithContext(ctx)
	wp.Go(func(ctx context.Context) error {
		var err error
		heroes, err = e.Heroes(ctx, wallet)
		return err
	})
	wp.Go(func(ctx context.Context) error {
		var err error
		weapons, err = e.Weapons(ctx, wallet)
		return err
	})
	wp.Go(func(ctx context.Context) error {
		lands = e.Lands(ctx, wallet)
		return nil
	})
	if err := wp.Wait(); err != nil {
		return persist.NFTBoosts{}, err
	}
	return ComputeBoosts(heroes, weapons, LandTicketCount(lands)), nil
}

// ComputeBoosts derives the gameplay boosts from owned NFTs. Multipliers
// are capped; health and total power are uncapped sums.
func ComputeBoosts(heroes []EnrichedHero, weapons []EnrichedWeapon, landTickets int) persist.NFTBoosts {
	h := uint64(len(heroes))
	w := uint64(len(weapons))
	l := uint64(landTickets)

	var totalPower uint64
	for _, hero := range heroes {
		totalPower += hero.Token.Sec + hero.Token.Ano + hero.Token.Inn
	}
	for _, weapon := range weapons {
		totalPower += weapon.Token.Security + weapon.Token.Anonymity + weapon.Token.Innovation
	}

	return persist.NFTBoosts{
		Heroes:           len(heroes),
		Weapons:          len(weapons),
		LandTickets:      landTickets,
		DamageMultiplier: util.MinUint64(5*h, 50),
		FireRateBonus:    util.MinUint64(3*w, 30),
		ScoreMultiplier:  util.MinUint64(2*l, 20),
		HealthBonus:      25*h + 15*w + 10*l,
		TotalPower:       totalPower,
	}
}

func (e *Engine) rewardBalance(ctx context.Context, token string, wallet persist.Address) RewardBalance {
	balance, err := e.gateway.ERC20BalanceOf(ctx, token, wallet)
	if err != nil {
		logger.For(ctx).WithError(err).Warnf("reward balance query failed for %s", token)
		return RewardBalance{Token: token, Wei: "-1", Balance: -1}
	}
	scaled, _ := new(big.Float).Quo(new(big.Float).SetInt(balance), big.NewFloat(1e18)).Float64()
	return RewardBalance{Token: token, Wei: balance.String(), Balance: scaled}
}
