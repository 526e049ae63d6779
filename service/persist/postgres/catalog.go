package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/medaverse/meda-api/service/memstore"
	"github.com/medaverse/meda-api/service/persist"
)

const catalogTTL = time.Hour

// CatalogRepository serves the static catalogs (characters, weapon name
// mappings, configured contracts) with read-through hot caching. Concurrent
// identical lookups are collapsed through singleflight so a cold cache
// doesn't stampede the database.
type CatalogRepository struct {
	db    *sql.DB
	group singleflight.Group

	characterCache *memstore.Cache[characterHit]
	weaponCache    *memstore.Cache[weaponNameHit]
	contractCache  *memstore.Cache[persist.Contract]
}

type characterHit struct {
	Character persist.Character
	Found     bool
}

type weaponNameHit struct {
	Name  string
	Found bool
}

// NewCatalogRepository creates a new postgres repository for the static catalogs.
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{
		db:             db,
		characterCache: memstore.New[characterHit]("characters", 4096, catalogTTL),
		weaponCache:    memstore.New[weaponNameHit]("weaponMappings", 4096, catalogTTL),
		contractCache:  memstore.New[persist.Contract]("contracts", 64, catalogTTL),
	}
}

// CharacterBySeasonCardID returns the catalog row for a season card id.
// The bool result reports whether a row exists; callers apply the hero
// defaults on a miss.
func (r *CatalogRepository) CharacterBySeasonCardID(ctx context.Context, seasonCardID uint64) (persist.Character, bool, error) {
	key := memstore.Key("character", strconv.FormatUint(seasonCardID, 10))
	if hit, ok := r.characterCache.Get(key); ok {
		return hit.Character, hit.Found, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		var c persist.Character
		var class string
		var id int64
		err := r.db.QueryRowContext(ctx,
			`SELECT season_card_id, title, fraction, class FROM characters WHERE season_card_id = $1`,
			int64(seasonCardID)).Scan(&id, &c.Title, &c.Fraction, &class)
		if err == sql.ErrNoRows {
			return characterHit{}, nil
		}
		if err != nil {
			return nil, err
		}
		c.SeasonCardID = uint64(id)
		c.Class = persist.ToCardClass(class)
		return characterHit{Character: c, Found: true}, nil
	})
	if err != nil {
		return persist.Character{}, false, err
	}

	hit := v.(characterHit)
	r.characterCache.Set(key, hit)
	return hit.Character, hit.Found, nil
}

// WeaponName returns the display name mapped to a weapon tuple. The bool
// result reports whether a mapping exists; callers render the fallback
// name on a miss.
func (r *CatalogRepository) WeaponName(ctx context.Context, mk persist.WeaponMappingKey) (string, bool, error) {
	key := memstore.Key("weaponName",
		strconv.FormatUint(mk.Tier, 10), strconv.FormatUint(mk.Type, 10),
		strconv.FormatUint(mk.Subtype, 10), strconv.FormatUint(mk.Category, 10))
	if hit, ok := r.weaponCache.Get(key); ok {
		return hit.Name, hit.Found, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		var name string
		err := r.db.QueryRowContext(ctx,
			`SELECT weapon_name FROM weapon_mappings WHERE weapon_tier = $1 AND weapon_type = $2 AND weapon_subtype = $3 AND category = $4`,
			int64(mk.Tier), int64(mk.Type), int64(mk.Subtype), int64(mk.Category)).Scan(&name)
		if err == sql.ErrNoRows {
			return weaponNameHit{}, nil
		}
		if err != nil {
			return nil, err
		}
		return weaponNameHit{Name: name, Found: true}, nil
	})
	if err != nil {
		return "", false, err
	}

	hit := v.(weaponNameHit)
	r.weaponCache.Set(key, hit)
	return hit.Name, hit.Found, nil
}

// ContractByName returns the single active contract for a logical name.
func (r *CatalogRepository) ContractByName(ctx context.Context, name string) (persist.Contract, error) {
	key := memstore.Key("contract", name)
	if c, ok := r.contractCache.Get(key); ok {
		return c, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		var c persist.Contract
		var addr, kind string
		err := r.db.QueryRowContext(ctx,
			`SELECT name, address, kind, active FROM contracts WHERE name = $1 AND active`,
			name).Scan(&c.Name, &addr, &kind, &c.Active)
		if err == sql.ErrNoRows {
			return nil, persist.ErrContractNotFound{Name: name}
		}
		if err != nil {
			return nil, err
		}
		c.Address, err = persist.ToAddress(addr)
		if err != nil {
			return nil, fmt.Errorf("contract %s has malformed address: %w", name, err)
		}
		c.Kind = persist.ContractKind(kind)
		return c, nil
	})
	if err != nil {
		return persist.Contract{}, err
	}

	c := v.(persist.Contract)
	r.contractCache.Set(key, c)
	return c, nil
}

// PurgeCaches drops the read-through caches, forcing the next lookups back
// to the database. Used by the admin purge path after catalog edits.
func (r *CatalogRepository) PurgeCaches() {
	r.characterCache.Purge("")
	r.weaponCache.Purge("")
	r.contractCache.Purge("")
}
