package enrich

import (
	"context"
	"math/big"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/medaverse/meda-api/service/logger"
	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/service/rpc"
)

// fanOutSize bounds the per-request goroutines spent fetching cache misses.
const fanOutSize = 12

// ChainGateway is the slice of the contract gateway the engine needs.
// *rpc.Gateway satisfies it.
type ChainGateway interface {
	OwnedTokenIDs(ctx context.Context, kind persist.TokenKind, owner persist.Address) ([]uint64, error)
	GetAttribs(ctx context.Context, kind persist.TokenKind, id uint64) (rpc.Attribs, error)
	GetHeroInfo(ctx context.Context, id uint64) (rpc.HeroInfo, error)
	GetWeaponInfo(ctx context.Context, id uint64) (rpc.WeaponInfo, error)
	ERC1155BalanceOfBatch(ctx context.Context, contractName string, owner persist.Address, ids []uint64) ([]uint64, error)
	ERC20BalanceOf(ctx context.Context, contractName string, owner persist.Address) (*big.Int, error)
}

// Engine materialises enriched token views for one wallet. Ownership comes
// from chain on every request; immutable per-token facts are read through
// the persistent token cache, with misses fetched concurrently and written
// back best-effort.
type Engine struct {
	gateway  ChainGateway
	heroes   persist.HeroTokenRepository
	weapons  persist.WeaponTokenRepository
	catalog  persist.CatalogRepository
	errorLog persist.CacheErrorRepository
}

// NewEngine builds an engine. errorLog may be nil.
func NewEngine(gateway ChainGateway, heroes persist.HeroTokenRepository, weapons persist.WeaponTokenRepository, catalog persist.CatalogRepository, errorLog persist.CacheErrorRepository) *Engine {
	return &Engine{
		gateway:  gateway,
		heroes:   heroes,
		weapons:  weapons,
		catalog:  catalog,
		errorLog: errorLog,
	}
}

// EnrichedHero pairs a cached hero row with its catalog character.
type EnrichedHero struct {
	Token     persist.HeroToken
	Character persist.Character
	Owner     persist.Address
}

// EnrichedWeapon pairs a cached weapon row with its display name and the
// contract it lives on.
type EnrichedWeapon struct {
	Token           persist.WeaponToken
	WeaponName      string
	Owner           persist.Address
	ContractAddress persist.Address
}

// Heroes returns the wallet's heroes in chain ownership order, joined with
// the character catalog. Per-token fetch failures drop the entry and log it;
// only the ownership query itself can fail the request.
func (e *Engine) Heroes(ctx context.Context, wallet persist.Address) ([]EnrichedHero, error) {
	ids, err := e.gateway.OwnedTokenIDs(ctx, persist.TokenKindHeroes, wallet)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []EnrichedHero{}, nil
	}

	hits, missing, err := e.heroes.LookupMany(ctx, ids)
	if err != nil {
		logger.For(ctx).WithError(err).Error("hero cache lookup failed, treating all ids as missing")
		e.logCacheError(ctx, persist.TokenKindHeroes, nil, persist.CacheErrorTypeCacheRead, err, wallet)
		hits, missing = nil, ids
	}

	byID := make(map[uint64]persist.HeroToken, len(ids))
	for _, h := range hits {
		byID[h.BCID] = h
	}

	if len(missing) > 0 {
		fresh := e.fetchHeroes(ctx, missing, wallet)
		for _, h := range fresh {
			byID[h.BCID] = h
		}
		if len(fresh) > 0 {
			if err := e.heroes.UpsertMany(ctx, fresh); err != nil {
				logger.For(ctx).WithError(err).Warn("hero cache upsert failed")
				e.logCacheError(ctx, persist.TokenKindHeroes, nil, persist.CacheErrorTypeCacheWrite, err, wallet)
			}
		}
	}

	out := make([]EnrichedHero, 0, len(ids))
	for _, id := range ids {
		token, ok := byID[id]
		if !ok {
			continue
		}
		character := e.lookupCharacter(ctx, token)
		out = append(out, EnrichedHero{Token: token, Character: character, Owner: wallet})
	}
	return out, nil
}

// Weapons returns the wallet's weapons in chain ownership order, joined
// with the weapon-name mapping catalog.
func (e *Engine) Weapons(ctx context.Context, wallet persist.Address) ([]EnrichedWeapon, error) {
	ids, err := e.gateway.OwnedTokenIDs(ctx, persist.TokenKindWeapons, wallet)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []EnrichedWeapon{}, nil
	}

	hits, missing, err := e.weapons.LookupMany(ctx, ids)
	if err != nil {
		logger.For(ctx).WithError(err).Error("weapon cache lookup failed, treating all ids as missing")
		e.logCacheError(ctx, persist.TokenKindWeapons, nil, persist.CacheErrorTypeCacheRead, err, wallet)
		hits, missing = nil, ids
	}

	byID := make(map[uint64]persist.WeaponToken, len(ids))
	for _, w := range hits {
		byID[w.BCID] = w
	}

	if len(missing) > 0 {
		fresh := e.fetchWeapons(ctx, missing, wallet)
		for _, w := range fresh {
			byID[w.BCID] = w
		}
		if len(fresh) > 0 {
			if err := e.weapons.UpsertMany(ctx, fresh); err != nil {
				logger.For(ctx).WithError(err).Warn("weapon cache upsert failed")
				e.logCacheError(ctx, persist.TokenKindWeapons, nil, persist.CacheErrorTypeCacheWrite, err, wallet)
			}
		}
	}

	contractAddr := persist.Address("")
	if c, err := e.catalog.ContractByName(ctx, persist.ContractNameWeapons); err == nil {
		contractAddr = c.Address
	}

	out := make([]EnrichedWeapon, 0, len(ids))
	for _, id := range ids {
		token, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, EnrichedWeapon{
			Token:           token,
			WeaponName:      e.lookupWeaponName(ctx, token),
			Owner:           wallet,
			ContractAddress: contractAddr,
		})
	}
	return out, nil
}

// fetchHeroes resolves missing ids from chain with bounded fan-out. Result
// assembly is in input order; failed ids are dropped and logged.
func (e *Engine) fetchHeroes(ctx context.Context, ids []uint64, wallet persist.Address) []persist.HeroToken {
	results := make([]*persist.HeroToken, len(ids))
	wp := pool.New().WithMaxGoroutines(fanOutSize).WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		wp.Go(func(ctx context.Context) error {
			attribs, err := e.gateway.GetAttribs(ctx, persist.TokenKindHeroes, id)
			if err != nil {
				e.logTokenError(ctx, persist.TokenKindHeroes, id, err, wallet)
				return nil
			}
			info, err := e.gateway.GetHeroInfo(ctx, id)
			if err != nil {
				e.logTokenError(ctx, persist.TokenKindHeroes, id, err, wallet)
				return nil
			}
			results[i] = &persist.HeroToken{
				BCID:         id,
				Sec:          attribs.A,
				Ano:          attribs.B,
				Inn:          attribs.C,
				SeasonCardID: info.SeasonCardID,
				SerialNumber: info.SerialNumber,
				LastUpdated:  time.Now(),
				IsValid:      true,
			}
			return nil
		})
	}
	wp.Wait()

	out := make([]persist.HeroToken, 0, len(ids))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (e *Engine) fetchWeapons(ctx context.Context, ids []uint64, wallet persist.Address) []persist.WeaponToken {
	results := make([]*persist.WeaponToken, len(ids))
	wp := pool.New().WithMaxGoroutines(fanOutSize).WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		wp.Go(func(ctx context.Context) error {
			attribs, err := e.gateway.GetAttribs(ctx, persist.TokenKindWeapons, id)
			if err != nil {
				e.logTokenError(ctx, persist.TokenKindWeapons, id, err, wallet)
				return nil
			}
			info, err := e.gateway.GetWeaponInfo(ctx, id)
			if err != nil {
				e.logTokenError(ctx, persist.TokenKindWeapons, id, err, wallet)
				return nil
			}
			results[i] = &persist.WeaponToken{
				BCID:          id,
				Security:      attribs.A,
				Anonymity:     attribs.B,
				Innovation:    attribs.C,
				WeaponTier:    info.WeaponTier,
				WeaponType:    info.WeaponType,
				WeaponSubtype: info.WeaponSubtype,
				Category:      info.Category,
				SerialNumber:  info.SerialNumber,
				LastUpdated:   time.Now(),
				IsValid:       true,
			}
			return nil
		})
	}
	wp.Wait()

	out := make([]persist.WeaponToken, 0, len(ids))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (e *Engine) lookupCharacter(ctx context.Context, token persist.HeroToken) persist.Character {
	character, found, err := e.catalog.CharacterBySeasonCardID(ctx, token.SeasonCardID)
	if err != nil {
		logger.For(ctx).WithError(err).Warnf("character lookup failed for season_card_id %d", token.SeasonCardID)
		found = false
	}
	if !found {
		return persist.DefaultCharacter(token.BCID)
	}
	return character
}

func (e *Engine) lookupWeaponName(ctx context.Context, token persist.WeaponToken) string {
	key := persist.WeaponMappingKey{
		Tier:     token.WeaponTier,
		Type:     token.WeaponType,
		Subtype:  token.WeaponSubtype,
		Category: token.Category,
	}
	name, found, err := e.catalog.WeaponName(ctx, key)
	if err != nil {
		logger.For(ctx).WithError(err).Warnf("weapon name lookup failed for bc_id %d", token.BCID)
		found = false
	}
	if !found {
		return persist.FallbackWeaponName(key)
	}
	return name
}

func (e *Engine) logTokenError(ctx context.Context, kind persist.TokenKind, id uint64, err error, wallet persist.Address) {
	logger.For(ctx).WithError(err).Warnf("dropping %s token %d after fetch failure", kind, id)
	e.logCacheError(ctx, kind, &id, persist.CacheErrorTypeContractCall, err, wallet)
}

func (e *Engine) logCacheError(ctx context.Context, kind persist.TokenKind, id *uint64, errType persist.CacheErrorType, err error, wallet persist.Address) {
	if e.errorLog == nil {
		return
	}
	record := persist.CacheError{
		ContractKind: kind,
		TokenID:      id,
		ErrorType:    errType,
		Message:      err.Error(),
		Wallet:       wallet,
	}
	if logErr := e.errorLog.LogError(ctx, record); logErr != nil {
		logger.For(ctx).WithError(logErr).Warn("failed to record cache error")
	}
}
