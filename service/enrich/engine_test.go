package enrich

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/service/rpc"
)

var testWallet = persist.MustAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")

type fakeGateway struct {
	owned       map[persist.TokenKind][]uint64
	attribs     map[uint64]rpc.Attribs
	heroInfos   map[uint64]rpc.HeroInfo
	weaponInfos map[uint64]rpc.WeaponInfo
	balances    []uint64
	balanceErr  error
	erc20       map[string]*big.Int
	failIDs     map[uint64]bool

	attribCalls atomic.Int64
	infoCalls   atomic.Int64
}

func (f *fakeGateway) OwnedTokenIDs(ctx context.Context, kind persist.TokenKind, owner persist.Address) ([]uint64, error) {
	return f.owned[kind], nil
}

func (f *fakeGateway) GetAttribs(ctx context.Context, kind persist.TokenKind, id uint64) (rpc.Attribs, error) {
	f.attribCalls.Add(1)
	if f.failIDs[id] {
		return rpc.Attribs{}, errors.New("contract call failed")
	}
	return f.attribs[id], nil
}

func (f *fakeGateway) GetHeroInfo(ctx context.Context, id uint64) (rpc.HeroInfo, error) {
	f.infoCalls.Add(1)
	return f.heroInfos[id], nil
}

func (f *fakeGateway) GetWeaponInfo(ctx context.Context, id uint64) (rpc.WeaponInfo, error) {
	f.infoCalls.Add(1)
	return f.weaponInfos[id], nil
}

func (f *fakeGateway) ERC1155BalanceOfBatch(ctx context.Context, contractName string, owner persist.Address, ids []uint64) ([]uint64, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return f.balances, nil
}

func (f *fakeGateway) ERC20BalanceOf(ctx context.Context, contractName string, owner persist.Address) (*big.Int, error) {
	if b, ok := f.erc20[contractName]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

type fakeHeroRepo struct {
	mu   sync.Mutex
	rows map[uint64]persist.HeroToken

	lookupErr error
	upsertErr error
}

func newFakeHeroRepo() *fakeHeroRepo {
	return &fakeHeroRepo{rows: map[uint64]persist.HeroToken{}}
}

func (f *fakeHeroRepo) LookupMany(ctx context.Context, ids []uint64) ([]persist.HeroToken, []uint64, error) {
	if f.lookupErr != nil {
		return nil, nil, f.lookupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var hits []persist.HeroToken
	var missing []uint64
	for _, id := range ids {
		if row, ok := f.rows[id]; ok && row.IsValid {
			hits = append(hits, row)
		} else {
			missing = append(missing, id)
		}
	}
	return hits, missing, nil
}

func (f *fakeHeroRepo) UpsertMany(ctx context.Context, rows []persist.HeroToken) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range rows {
		f.rows[row.BCID] = row
	}
	return nil
}

func (f *fakeHeroRepo) Invalidate(ctx context.Context, ids []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		row := f.rows[id]
		row.IsValid = false
		f.rows[id] = row
	}
	return nil
}

func (f *fakeHeroRepo) InvalidateAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.rows {
		row.IsValid = false
		f.rows[id] = row
	}
	return nil
}

type fakeWeaponRepo struct {
	mu   sync.Mutex
	rows map[uint64]persist.WeaponToken
}

func newFakeWeaponRepo() *fakeWeaponRepo {
	return &fakeWeaponRepo{rows: map[uint64]persist.WeaponToken{}}
}

func (f *fakeWeaponRepo) LookupMany(ctx context.Context, ids []uint64) ([]persist.WeaponToken, []uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var hits []persist.WeaponToken
	var missing []uint64
	for _, id := range ids {
		if row, ok := f.rows[id]; ok && row.IsValid {
			hits = append(hits, row)
		} else {
			missing = append(missing, id)
		}
	}
	return hits, missing, nil
}

func (f *fakeWeaponRepo) UpsertMany(ctx context.Context, rows []persist.WeaponToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range rows {
		f.rows[row.BCID] = row
	}
	return nil
}

func (f *fakeWeaponRepo) Invalidate(ctx context.Context, ids []uint64) error { return nil }

func (f *fakeWeaponRepo) InvalidateAll(ctx context.Context) error { return nil }

type fakeCatalog struct {
	characters  map[uint64]persist.Character
	weaponNames map[persist.WeaponMappingKey]string
	contracts   map[string]persist.Contract
}

func (f *fakeCatalog) CharacterBySeasonCardID(ctx context.Context, seasonCardID uint64) (persist.Character, bool, error) {
	c, ok := f.characters[seasonCardID]
	return c, ok, nil
}

func (f *fakeCatalog) WeaponName(ctx context.Context, key persist.WeaponMappingKey) (string, bool, error) {
	name, ok := f.weaponNames[key]
	return name, ok, nil
}

func (f *fakeCatalog) ContractByName(ctx context.Context, name string) (persist.Contract, error) {
	if c, ok := f.contracts[name]; ok {
		return c, nil
	}
	return persist.Contract{}, persist.ErrContractNotFound{Name: name}
}

type fakeErrorLog struct {
	mu      sync.Mutex
	records []persist.CacheError
}

func (f *fakeErrorLog) LogError(ctx context.Context, record persist.CacheError) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeErrorLog) Unresolved(ctx context.Context, limit int) ([]persist.CacheError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]persist.CacheError{}, f.records...), nil
}

func (f *fakeErrorLog) MarkResolved(ctx context.Context, ids []int64) error { return nil }

func (f *fakeErrorLog) DeleteResolvedOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	return 0, nil
}

func newHeroFixture() (*fakeGateway, *fakeHeroRepo, *fakeCatalog, *fakeErrorLog, *Engine) {
	gateway := &fakeGateway{
		owned: map[persist.TokenKind][]uint64{
			persist.TokenKindHeroes: {101, 102},
		},
		attribs: map[uint64]rpc.Attribs{
			101: {A: 70, B: 70, C: 70},
			102: {A: 50, B: 50, C: 50},
		},
		heroInfos: map[uint64]rpc.HeroInfo{
			101: {SeasonCardID: 1020, SerialNumber: 7},
			102: {SeasonCardID: 2031, SerialNumber: 3},
		},
		failIDs: map[uint64]bool{},
	}
	heroes := newFakeHeroRepo()
	catalog := &fakeCatalog{
		characters: map[uint64]persist.Character{
			1020: {SeasonCardID: 1020, Title: "Ranger", Fraction: "Solaris", Class: persist.CardClassSpecialist},
		},
		weaponNames: map[persist.WeaponMappingKey]string{},
		contracts:   map[string]persist.Contract{},
	}
	errorLog := &fakeErrorLog{}
	engine := NewEngine(gateway, heroes, newFakeWeaponRepo(), catalog, errorLog)
	return gateway, heroes, catalog, errorLog, engine
}

func TestHeroesCacheMissFetchesAndUpserts(t *testing.T) {
	gateway, heroes, _, _, engine := newHeroFixture()

	result, err := engine.Heroes(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, result, 2)

	// exactly one attribs and one info call per missing id
	assert.EqualValues(t, 2, gateway.attribCalls.Load())
	assert.EqualValues(t, 2, gateway.infoCalls.Load())

	// cache now holds both rows with contract values
	require.Len(t, heroes.rows, 2)
	row := heroes.rows[101]
	assert.True(t, row.IsValid)
	assert.EqualValues(t, 70, row.Sec)
	assert.EqualValues(t, 1020, row.SeasonCardID)
	assert.EqualValues(t, 7, row.SerialNumber)
}

func TestHeroesWarmCacheSkipsContractCalls(t *testing.T) {
	gateway, heroes, _, _, engine := newHeroFixture()

	_, err := engine.Heroes(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, heroes.rows, 2)

	gateway.attribCalls.Store(0)
	gateway.infoCalls.Store(0)

	result, err := engine.Heroes(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.EqualValues(t, 0, gateway.attribCalls.Load())
	assert.EqualValues(t, 0, gateway.infoCalls.Load())
}

func TestHeroesPreserveOwnershipOrder(t *testing.T) {
	gateway, _, _, _, engine := newHeroFixture()
	gateway.owned[persist.TokenKindHeroes] = []uint64{102, 101}

	result, err := engine.Heroes(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.EqualValues(t, 102, result[0].Token.BCID)
	assert.EqualValues(t, 101, result[1].Token.BCID)
}

func TestHeroesCatalogJoin(t *testing.T) {
	_, _, _, _, engine := newHeroFixture()

	result, err := engine.Heroes(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, result, 2)

	// catalog hit
	assert.Equal(t, "Ranger", result[0].Character.Title)
	assert.Equal(t, "Solaris", result[0].Character.Fraction)

	// missing row falls back deterministically
	assert.Equal(t, "Hero #102", result[1].Character.Title)
	assert.Equal(t, "Neutral", result[1].Character.Fraction)
	assert.Equal(t, persist.CardClassSpecialist, result[1].Character.Class)
}

func TestHeroesPerTokenFailureDropsEntry(t *testing.T) {
	gateway, _, _, errorLog, engine := newHeroFixture()
	gateway.failIDs[102] = true

	result, err := engine.Heroes(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.EqualValues(t, 101, result[0].Token.BCID)

	require.Len(t, errorLog.records, 1)
	assert.Equal(t, persist.CacheErrorTypeContractCall, errorLog.records[0].ErrorType)
	require.NotNil(t, errorLog.records[0].TokenID)
	assert.EqualValues(t, 102, *errorLog.records[0].TokenID)
}

func TestHeroesCacheReadFailureDegradesToAllMiss(t *testing.T) {
	gateway, heroes, _, errorLog, engine := newHeroFixture()
	heroes.lookupErr = errors.New("connection refused")

	result, err := engine.Heroes(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.EqualValues(t, 2, gateway.attribCalls.Load())

	var sawReadError bool
	for _, r := range errorLog.records {
		if r.ErrorType == persist.CacheErrorTypeCacheRead {
			sawReadError = true
		}
	}
	assert.True(t, sawReadError)
}

func TestHeroesCacheWriteFailureNonFatal(t *testing.T) {
	_, heroes, _, errorLog, engine := newHeroFixture()
	heroes.upsertErr = errors.New("disk full")

	result, err := engine.Heroes(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, result, 2)

	var sawWriteError bool
	for _, r := range errorLog.records {
		if r.ErrorType == persist.CacheErrorTypeCacheWrite {
			sawWriteError = true
		}
	}
	assert.True(t, sawWriteError)
}

func TestWeaponsNaming(t *testing.T) {
	gateway := &fakeGateway{
		owned: map[persist.TokenKind][]uint64{
			persist.TokenKindWeapons: {5, 6},
		},
		attribs: map[uint64]rpc.Attribs{
			5: {A: 80, B: 40, C: 60},
			6: {A: 60, B: 60, C: 60},
		},
		weaponInfos: map[uint64]rpc.WeaponInfo{
			5: {WeaponTier: 1, WeaponType: 2, WeaponSubtype: 1, Category: 3, SerialNumber: 9},
			6: {WeaponTier: 2, WeaponType: 1, WeaponSubtype: 0, Category: 4, SerialNumber: 1},
		},
		failIDs: map[uint64]bool{},
	}
	catalog := &fakeCatalog{
		weaponNames: map[persist.WeaponMappingKey]string{
			{Tier: 1, Type: 2, Subtype: 1, Category: 3}: "Blaster",
		},
		contracts: map[string]persist.Contract{},
	}
	engine := NewEngine(gateway, newFakeHeroRepo(), newFakeWeaponRepo(), catalog, &fakeErrorLog{})

	result, err := engine.Weapons(context.Background(), testWallet)
	require.NoError(t, err)
	require.Len(t, result, 2)

	// mapped tuple uses the catalog name
	assert.Equal(t, "Blaster", result[0].WeaponName)
	// unmapped tuple falls back to the deterministic name
	assert.Equal(t, "T2 Sword #4", result[1].WeaponName)
}
