package rpc

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/medaverse/meda-api/contracts"
	"github.com/medaverse/meda-api/service/logger"
	"github.com/medaverse/meda-api/service/memstore"
	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/util/retry"
)

const (
	callTimeout = 10 * time.Second

	ownershipTTL = 5 * time.Minute
	immutableTTL = 6 * time.Hour
	balanceTTL   = 5 * time.Minute
)

// CallRetry is the per-call policy: up to three attempts across rotated
// endpoints with a short backoff. Contract reverts are never retried.
var CallRetry = retry.Retry{MinWait: 150 * time.Millisecond, MaxWait: time.Second, MaxRetries: 2}

// ErrContractCall wraps the last underlying error after retries are exhausted.
type ErrContractCall struct {
	Method string
	Err    error
}

func (e ErrContractCall) Error() string {
	return fmt.Sprintf("contract call %s failed: %s", e.Method, e.Err)
}

func (e ErrContractCall) Unwrap() error {
	return e.Err
}

// Attribs is the immutable attribute triple of a hero or weapon.
type Attribs struct {
	A, B, C uint64
}

// HeroInfo is the decoded hero type descriptor.
type HeroInfo struct {
	SeasonCardID uint64
	SerialNumber uint64
}

// WeaponInfo is the decoded weapon type descriptor.
type WeaponInfo struct {
	WeaponTier    uint64
	WeaponType    uint64
	WeaponSubtype uint64
	Category      uint64
	SerialNumber  uint64
}

var neutralAttribs = map[persist.TokenKind]Attribs{
	persist.TokenKindHeroes:  {A: 50, B: 50, C: 50},
	persist.TokenKindWeapons: {A: 60, B: 60, C: 60},
}

// Gateway is the typed contract wrapper over the Pool. Ownership queries
// are authoritative and only hot-cached; immutable attribute and info
// reads are hot-cached for hours, with the persistent token cache as the
// durable layer above this one.
type Gateway struct {
	pool     *Pool
	catalog  persist.CatalogRepository
	errorLog persist.CacheErrorRepository

	ownershipCache  *memstore.Cache[[]uint64]
	attribsCache    *memstore.Cache[Attribs]
	heroInfoCache   *memstore.Cache[HeroInfo]
	weaponInfoCache *memstore.Cache[WeaponInfo]
	balanceCache    *memstore.Cache[[]uint64]
	erc20Cache      *memstore.Cache[string]
}

// NewGateway builds a gateway. errorLog may be nil; soft warnings are then
// only logged.
func NewGateway(pool *Pool, catalog persist.CatalogRepository, errorLog persist.CacheErrorRepository) *Gateway {
	return &Gateway{
		pool:            pool,
		catalog:         catalog,
		errorLog:        errorLog,
		ownershipCache:  memstore.New[[]uint64]("ownership", 2048, ownershipTTL),
		attribsCache:    memstore.New[Attribs]("attribs", 16384, immutableTTL),
		heroInfoCache:   memstore.New[HeroInfo]("heroInfo", 16384, immutableTTL),
		weaponInfoCache: memstore.New[WeaponInfo]("weaponInfo", 16384, immutableTTL),
		balanceCache:    memstore.New[[]uint64]("balances", 2048, balanceTTL),
		erc20Cache:      memstore.New[string]("erc20", 2048, balanceTTL),
	}
}

// Pool exposes the underlying endpoint pool for health reporting.
func (g *Gateway) Pool() *Pool {
	return g.pool
}

// OwnedTokenIDs returns the ordered set of token ids owned by owner.
// Authoritative: never persisted, hot-cached for a few minutes only.
func (g *Gateway) OwnedTokenIDs(ctx context.Context, kind persist.TokenKind, owner persist.Address) ([]uint64, error) {
	if !kind.Valid() {
		return nil, persist.ErrUnknownTokenKind{Kind: kind}
	}
	key := memstore.Key("tokensOfOwner", kind.String(), owner.String())
	if ids, ok := g.ownershipCache.Get(key); ok {
		return ids, nil
	}

	contractAddr, err := g.contractAddress(ctx, kind.String())
	if err != nil {
		return nil, err
	}

	var raw []*big.Int
	err = g.call(ctx, "tokensOfOwner", func(ctx context.Context, client Client) error {
		opts := &bind.CallOpts{Context: ctx}
		switch kind {
		case persist.TokenKindHeroes:
			caller, err := contracts.NewMedaHeroesCaller(contractAddr, client)
			if err != nil {
				return err
			}
			raw, err = caller.TokensOfOwner(opts, owner.Address())
			return err
		default:
			caller, err := contracts.NewMedaWeaponsCaller(contractAddr, client)
			if err != nil {
				return err
			}
			raw, err = caller.TokensOfOwner(opts, owner.Address())
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, len(raw))
	for i, id := range raw {
		ids[i] = id.Uint64()
	}
	g.ownershipCache.Set(key, ids)
	return ids, nil
}

// GetAttribs returns the immutable attribute triple for a token. A short or
// malformed tuple substitutes the kind's neutral defaults and records a
// soft warning instead of failing the call.
func (g *Gateway) GetAttribs(ctx context.Context, kind persist.TokenKind, id uint64) (Attribs, error) {
	if !kind.Valid() {
		return Attribs{}, persist.ErrUnknownTokenKind{Kind: kind}
	}
	key := memstore.Key("getAttribs", kind.String(), strconv.FormatUint(id, 10))
	if a, ok := g.attribsCache.Get(key); ok {
		return a, nil
	}

	contractAddr, err := g.contractAddress(ctx, kind.String())
	if err != nil {
		return Attribs{}, err
	}

	var a, b, c *big.Int
	err = g.call(ctx, "getAttribs", func(ctx context.Context, client Client) error {
		opts := &bind.CallOpts{Context: ctx}
		switch kind {
		case persist.TokenKindHeroes:
			caller, err := contracts.NewMedaHeroesCaller(contractAddr, client)
			if err != nil {
				return err
			}
			a, b, c, err = caller.GetAttribs(opts, new(big.Int).SetUint64(id))
			return err
		default:
			caller, err := contracts.NewMedaWeaponsCaller(contractAddr, client)
			if err != nil {
				return err
			}
			a, b, c, err = caller.GetAttribs(opts, new(big.Int).SetUint64(id))
			return err
		}
	})
	if err != nil {
		if isMalformedResponse(err) {
			g.softWarn(ctx, kind, id, err)
			return neutralAttribs[kind], nil
		}
		return Attribs{}, err
	}
	if a == nil || b == nil || c == nil {
		g.softWarn(ctx, kind, id, errors.New("short attribute tuple"))
		return neutralAttribs[kind], nil
	}

	out := Attribs{A: a.Uint64(), B: b.Uint64(), C: c.Uint64()}
	g.attribsCache.Set(key, out)
	return out, nil
}

// GetHeroInfo returns the immutable hero type descriptor.
func (g *Gateway) GetHeroInfo(ctx context.Context, id uint64) (HeroInfo, error) {
	key := memstore.Key("getTokenInfo", persist.TokenKindHeroes.String(), strconv.FormatUint(id, 10))
	if info, ok := g.heroInfoCache.Get(key); ok {
		return info, nil
	}

	contractAddr, err := g.contractAddress(ctx, persist.ContractNameHeroes)
	if err != nil {
		return HeroInfo{}, err
	}

	var raw contracts.MedaHeroesTokenInfo
	err = g.call(ctx, "getTokenInfo", func(ctx context.Context, client Client) error {
		caller, err := contracts.NewMedaHeroesCaller(contractAddr, client)
		if err != nil {
			return err
		}
		raw, err = caller.GetTokenInfo(&bind.CallOpts{Context: ctx}, new(big.Int).SetUint64(id))
		return err
	})
	if err != nil {
		return HeroInfo{}, err
	}

	info := HeroInfo{SeasonCardID: raw.SeasonCardID.Uint64(), SerialNumber: raw.SerialNumber.Uint64()}
	g.heroInfoCache.Set(key, info)
	return info, nil
}

// GetWeaponInfo returns the immutable weapon type descriptor.
func (g *Gateway) GetWeaponInfo(ctx context.Context, id uint64) (WeaponInfo, error) {
	key := memstore.Key("getTokenInfo", persist.TokenKindWeapons.String(), strconv.FormatUint(id, 10))
	if info, ok := g.weaponInfoCache.Get(key); ok {
		return info, nil
	}

	contractAddr, err := g.contractAddress(ctx, persist.ContractNameWeapons)
	if err != nil {
		return WeaponInfo{}, err
	}

	var raw contracts.MedaWeaponsTokenInfo
	err = g.call(ctx, "getTokenInfo", func(ctx context.Context, client Client) error {
		caller, err := contracts.NewMedaWeaponsCaller(contractAddr, client)
		if err != nil {
			return err
		}
		raw, err = caller.GetTokenInfo(&bind.CallOpts{Context: ctx}, new(big.Int).SetUint64(id))
		return err
	})
	if err != nil {
		return WeaponInfo{}, err
	}

	info := WeaponInfo{
		WeaponTier:    raw.WeaponTier.Uint64(),
		WeaponType:    raw.WeaponType.Uint64(),
		WeaponSubtype: raw.WeaponSubtype.Uint64(),
		Category:      raw.Category.Uint64(),
		SerialNumber:  raw.SerialNumber.Uint64(),
	}
	g.weaponInfoCache.Set(key, info)
	return info, nil
}

// ERC1155BalanceOfBatch returns balances parallel to ids for one owner.
func (g *Gateway) ERC1155BalanceOfBatch(ctx context.Context, contractName string, owner persist.Address, ids []uint64) ([]uint64, error) {
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.FormatUint(id, 10)
	}
	key := memstore.Key("balanceOfBatch", contractName, owner.String(), strings.Join(idStrs, ","))
	if balances, ok := g.balanceCache.Get(key); ok {
		return balances, nil
	}

	contractAddr, err := g.contractAddress(ctx, contractName)
	if err != nil {
		return nil, err
	}

	accounts := make([]common.Address, len(ids))
	bigIDs := make([]*big.Int, len(ids))
	for i, id := range ids {
		accounts[i] = owner.Address()
		bigIDs[i] = new(big.Int).SetUint64(id)
	}

	var raw []*big.Int
	err = g.call(ctx, "balanceOfBatch", func(ctx context.Context, client Client) error {
		caller, err := contracts.NewIERC1155Caller(contractAddr, client)
		if err != nil {
			return err
		}
		raw, err = caller.BalanceOfBatch(&bind.CallOpts{Context: ctx}, accounts, bigIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(raw) != len(ids) {
		return nil, ErrContractCall{Method: "balanceOfBatch", Err: fmt.Errorf("got %d balances for %d ids", len(raw), len(ids))}
	}

	balances := make([]uint64, len(raw))
	for i, b := range raw {
		balances[i] = b.Uint64()
	}
	g.balanceCache.Set(key, balances)
	return balances, nil
}

// ERC20BalanceOf returns the raw (wei-denominated) balance of owner.
func (g *Gateway) ERC20BalanceOf(ctx context.Context, contractName string, owner persist.Address) (*big.Int, error) {
	key := memstore.Key("balanceOf", contractName, owner.String())
	if s, ok := g.erc20Cache.Get(key); ok {
		if b, ok := new(big.Int).SetString(s, 10); ok {
			return b, nil
		}
	}

	contractAddr, err := g.contractAddress(ctx, contractName)
	if err != nil {
		return nil, err
	}

	var balance *big.Int
	err = g.call(ctx, "balanceOf", func(ctx context.Context, client Client) error {
		caller, err := contracts.NewIERC20Caller(contractAddr, client)
		if err != nil {
			return err
		}
		balance, err = caller.BalanceOf(&bind.CallOpts{Context: ctx}, owner.Address())
		return err
	})
	if err != nil {
		return nil, err
	}

	g.erc20Cache.Set(key, balance.String())
	return balance, nil
}

// PurgeWallet drops all hot-cache entries derived from one wallet so the
// next read goes back to chain. Immutable per-token entries stay.
func (g *Gateway) PurgeWallet(wallet persist.Address) {
	for _, kind := range []persist.TokenKind{persist.TokenKindHeroes, persist.TokenKindWeapons} {
		g.ownershipCache.Purge(memstore.Key("tokensOfOwner", kind.String(), wallet.String()))
	}
	for _, name := range []string{persist.ContractNameLands} {
		g.balanceCache.Purge(memstore.Key("balanceOfBatch", name, wallet.String()))
	}
	for _, name := range []string{persist.ContractNameMOH, persist.ContractNameMedaLLC} {
		g.erc20Cache.Purge(memstore.Key("balanceOf", name, wallet.String()))
	}
}

// PurgeAll clears every hot-cache entry the gateway holds.
func (g *Gateway) PurgeAll() {
	g.ownershipCache.Purge("")
	g.attribsCache.Purge("")
	g.heroInfoCache.Purge("")
	g.weaponInfoCache.Purge("")
	g.balanceCache.Purge("")
	g.erc20Cache.Purge("")
}

func (g *Gateway) contractAddress(ctx context.Context, name string) (common.Address, error) {
	c, err := g.catalog.ContractByName(ctx, name)
	if err != nil {
		return common.Address{}, err
	}
	return c.Address.Address(), nil
}

// call runs f against a pooled endpoint, rotating endpoints between
// attempts. Transport and generic node errors are retried; contract
// reverts surface immediately.
func (g *Gateway) call(ctx context.Context, method string, f func(ctx context.Context, client Client) error) error {
	attempt := func(ctx context.Context) error {
		endpoint, err := g.pool.Acquire(ctx)
		if err != nil {
			return err
		}
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()
		if err := f(callCtx, endpoint.Client()); err != nil {
			if isTransportError(err) {
				endpoint.MarkUnhealthy()
			}
			return err
		}
		return nil
	}

	err := retry.RetryFunc(ctx, attempt, retryable, CallRetry)
	if err != nil {
		return ErrContractCall{Method: method, Err: err}
	}
	return nil
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrNoHealthyEndpoint):
		return false
	case isRevert(err), isMalformedResponse(err):
		return false
	}
	return true
}

func isRevert(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "execution reverted") || strings.Contains(msg, "revert")
}

func isMalformedResponse(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "abi:") || strings.Contains(msg, "cannot unmarshal") || strings.Contains(msg, "length insufficient")
}

func isTransportError(err error) bool {
	return !isRevert(err) && !isMalformedResponse(err)
}

func (g *Gateway) softWarn(ctx context.Context, kind persist.TokenKind, id uint64, err error) {
	logger.For(ctx).WithError(err).Warnf("malformed %s attribute tuple for token %d, substituting defaults", kind, id)
	if g.errorLog == nil {
		return
	}
	tokenID := id
	record := persist.CacheError{
		ContractKind: kind,
		TokenID:      &tokenID,
		ErrorType:    persist.CacheErrorTypeMalformed,
		Message:      err.Error(),
	}
	if logErr := g.errorLog.LogError(ctx, record); logErr != nil {
		logger.For(ctx).WithError(logErr).Warn("failed to record cache error")
	}
}
