package persist

import (
	"context"
	"time"
)

// HeroToken is one row of the persistent hero token cache. Rows are written
// on first observation of a bc_id and treated as immutable afterwards;
// invalidation flips IsValid instead of deleting.
type HeroToken struct {
	BCID         uint64    `json:"bc_id"`
	Sec          uint64    `json:"sec"`
	Ano          uint64    `json:"ano"`
	Inn          uint64    `json:"inn"`
	SeasonCardID uint64    `json:"season_card_id"`
	SerialNumber uint64    `json:"serial_number"`
	LastUpdated  time.Time `json:"last_updated"`
	IsValid      bool      `json:"is_valid"`
}

// CardType is the thousands digit of the packed season card id.
func (h HeroToken) CardType() uint64 {
	return h.SeasonCardID / 1000
}

// SeasonID is the middle two digits of the packed season card id.
func (h HeroToken) SeasonID() uint64 {
	return (h.SeasonCardID % 1000) / 10
}

// CardSeasonCollectionID is the final digit of the packed season card id.
func (h HeroToken) CardSeasonCollectionID() uint64 {
	return h.SeasonCardID % 10
}

// Revolution reports whether the hero is a revolution variant (card type 2).
func (h HeroToken) Revolution() bool {
	return h.CardType() == 2
}

// WeaponToken is one row of the persistent weapon token cache.
type WeaponToken struct {
	BCID          uint64    `json:"bc_id"`
	Security      uint64    `json:"security"`
	Anonymity     uint64    `json:"anonymity"`
	Innovation    uint64    `json:"innovation"`
	WeaponTier    uint64    `json:"weapon_tier"`
	WeaponType    uint64    `json:"weapon_type"`
	WeaponSubtype uint64    `json:"weapon_subtype"`
	Category      uint64    `json:"category"`
	SerialNumber  uint64    `json:"serial_number"`
	LastUpdated   time.Time `json:"last_updated"`
	IsValid       bool      `json:"is_valid"`
}

// CacheErrorType tags cache-error log rows by failure origin.
type CacheErrorType string

const (
	CacheErrorTypeContractCall CacheErrorType = "contract_call"
	CacheErrorTypeMalformed    CacheErrorType = "malformed_response"
	CacheErrorTypeCacheRead    CacheErrorType = "cache_read"
	CacheErrorTypeCacheWrite   CacheErrorType = "cache_write"
)

// CacheError is an append-only record of a token-cache failure.
type CacheError struct {
	ID           int64          `json:"id"`
	ContractKind TokenKind      `json:"contract_kind"`
	TokenID      *uint64        `json:"token_id,omitempty"`
	ErrorType    CacheErrorType `json:"error_type"`
	Message      string         `json:"message"`
	Wallet       Address        `json:"wallet,omitempty"`
	RetryCount   int            `json:"retry_count"`
	Resolved     bool           `json:"resolved"`
	CreatedAt    time.Time      `json:"created_at"`
	ResolvedAt   *time.Time     `json:"resolved_at,omitempty"`
}

// HeroTokenRepository is the persistent cache of immutable hero facts.
type HeroTokenRepository interface {
	LookupMany(ctx context.Context, ids []uint64) (hits []HeroToken, missing []uint64, err error)
	UpsertMany(ctx context.Context, rows []HeroToken) error
	Invalidate(ctx context.Context, ids []uint64) error
	InvalidateAll(ctx context.Context) error
}

// WeaponTokenRepository is the persistent cache of immutable weapon facts.
type WeaponTokenRepository interface {
	LookupMany(ctx context.Context, ids []uint64) (hits []WeaponToken, missing []uint64, err error)
	UpsertMany(ctx context.Context, rows []WeaponToken) error
	Invalidate(ctx context.Context, ids []uint64) error
	InvalidateAll(ctx context.Context) error
}

// CacheErrorRepository is the write-only error log plus its maintenance ops.
type CacheErrorRepository interface {
	LogError(ctx context.Context, record CacheError) error
	Unresolved(ctx context.Context, limit int) ([]CacheError, error)
	MarkResolved(ctx context.Context, ids []int64) error
	DeleteResolvedOlderThan(ctx context.Context, age time.Duration) (int64, error)
}
