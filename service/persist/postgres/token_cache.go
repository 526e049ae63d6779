package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/medaverse/meda-api/service/persist"
)

// HeroTokenRepository is the persistent hero token cache backed by postgres.
type HeroTokenRepository struct {
	pool *pgxpool.Pool
}

// NewHeroTokenRepository creates a new postgres repository for cached hero tokens.
func NewHeroTokenRepository(pool *pgxpool.Pool) *HeroTokenRepository {
	return &HeroTokenRepository{pool: pool}
}

// LookupMany returns the usable rows for ids plus the ids that missed.
// Rows flipped to is_valid=false count as absent.
func (r *HeroTokenRepository) LookupMany(ctx context.Context, ids []uint64) ([]persist.HeroToken, []uint64, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT bc_id, sec, ano, inn, season_card_id, serial_number, last_updated, is_valid
		 FROM hero_token_cache WHERE bc_id = ANY($1) AND is_valid`, int64Slice(ids))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	byID := make(map[uint64]persist.HeroToken, len(ids))
	for rows.Next() {
		var t persist.HeroToken
		var bcID, sec, ano, inn, seasonCardID, serial int64
		if err := rows.Scan(&bcID, &sec, &ano, &inn, &seasonCardID, &serial, &t.LastUpdated, &t.IsValid); err != nil {
			return nil, nil, err
		}
		t.BCID, t.Sec, t.Ano, t.Inn = uint64(bcID), uint64(sec), uint64(ano), uint64(inn)
		t.SeasonCardID, t.SerialNumber = uint64(seasonCardID), uint64(serial)
		byID[t.BCID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	hits := make([]persist.HeroToken, 0, len(byID))
	var missing []uint64
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			hits = append(hits, t)
		} else {
			missing = append(missing, id)
		}
	}
	return hits, missing, nil
}

// UpsertMany writes rows in one transaction. Conflicts on bc_id overwrite
// the immutable fields and set is_valid=true; upserts are idempotent, so
// concurrent requests for overlapping id sets race benignly.
func (r *HeroTokenRepository) UpsertMany(ctx context.Context, tokens []persist.HeroToken) error {
	if len(tokens) == 0 {
		return nil
	}

	sqlStr := `INSERT INTO hero_token_cache (bc_id, sec, ano, inn, season_card_id, serial_number) VALUES ` +
		generateValuesPlaceholders(len(tokens), 6) +
		` ON CONFLICT (bc_id) DO UPDATE SET
			sec = EXCLUDED.sec, ano = EXCLUDED.ano, inn = EXCLUDED.inn,
			season_card_id = EXCLUDED.season_card_id, serial_number = EXCLUDED.serial_number,
			is_valid = TRUE, last_updated = now()`

	vals := make([]interface{}, 0, len(tokens)*6)
	for _, t := range tokens {
		vals = append(vals, int64(t.BCID), int64(t.Sec), int64(t.Ano), int64(t.Inn), int64(t.SeasonCardID), int64(t.SerialNumber))
	}

	return r.pool.BeginTxFunc(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sqlStr, vals...)
		return err
	})
}

// Invalidate flips is_valid=false for ids; rows are never deleted.
func (r *HeroTokenRepository) Invalidate(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `UPDATE hero_token_cache SET is_valid = FALSE WHERE bc_id = ANY($1)`, int64Slice(ids))
	return err
}

// InvalidateAll flips is_valid=false for every row.
func (r *HeroTokenRepository) InvalidateAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `UPDATE hero_token_cache SET is_valid = FALSE`)
	return err
}

// WeaponTokenRepository is the persistent weapon token cache backed by postgres.
type WeaponTokenRepository struct {
	pool *pgxpool.Pool
}

// NewWeaponTokenRepository creates a new postgres repository for cached weapon tokens.
func NewWeaponTokenRepository(pool *pgxpool.Pool) *WeaponTokenRepository {
	return &WeaponTokenRepository{pool: pool}
}

// LookupMany returns the usable rows for ids plus the ids that missed.
func (r *WeaponTokenRepository) LookupMany(ctx context.Context, ids []uint64) ([]persist.WeaponToken, []uint64, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT bc_id, security, anonymity, innovation, weapon_tier, weapon_type, weapon_subtype, category, serial_number, last_updated, is_valid
		 FROM weapon_token_cache WHERE bc_id = ANY($1) AND is_valid`, int64Slice(ids))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	byID := make(map[uint64]persist.WeaponToken, len(ids))
	for rows.Next() {
		var t persist.WeaponToken
		var vals [9]int64
		if err := rows.Scan(&vals[0], &vals[1], &vals[2], &vals[3], &vals[4], &vals[5], &vals[6], &vals[7], &vals[8], &t.LastUpdated, &t.IsValid); err != nil {
			return nil, nil, err
		}
		t.BCID = uint64(vals[0])
		t.Security, t.Anonymity, t.Innovation = uint64(vals[1]), uint64(vals[2]), uint64(vals[3])
		t.WeaponTier, t.WeaponType, t.WeaponSubtype = uint64(vals[4]), uint64(vals[5]), uint64(vals[6])
		t.Category, t.SerialNumber = uint64(vals[7]), uint64(vals[8])
		byID[t.BCID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	hits := make([]persist.WeaponToken, 0, len(byID))
	var missing []uint64
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			hits = append(hits, t)
		} else {
			missing = append(missing, id)
		}
	}
	return hits, missing, nil
}

// UpsertMany writes rows in one transaction with idempotent conflict handling.
func (r *WeaponTokenRepository) UpsertMany(ctx context.Context, tokens []persist.WeaponToken) error {
	if len(tokens) == 0 {
		return nil
	}

	sqlStr := `INSERT INTO weapon_token_cache (bc_id, security, anonymity, innovation, weapon_tier, weapon_type, weapon_subtype, category, serial_number) VALUES ` +
		generateValuesPlaceholders(len(tokens), 9) +
		` ON CONFLICT (bc_id) DO UPDATE SET
			security = EXCLUDED.security, anonymity = EXCLUDED.anonymity, innovation = EXCLUDED.innovation,
			weapon_tier = EXCLUDED.weapon_tier, weapon_type = EXCLUDED.weapon_type, weapon_subtype = EXCLUDED.weapon_subtype,
			category = EXCLUDED.category, serial_number = EXCLUDED.serial_number,
			is_valid = TRUE, last_updated = now()`

	vals := make([]interface{}, 0, len(tokens)*9)
	for _, t := range tokens {
		vals = append(vals,
			int64(t.BCID), int64(t.Security), int64(t.Anonymity), int64(t.Innovation),
			int64(t.WeaponTier), int64(t.WeaponType), int64(t.WeaponSubtype), int64(t.Category), int64(t.SerialNumber))
	}

	return r.pool.BeginTxFunc(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sqlStr, vals...)
		return err
	})
}

// Invalidate flips is_valid=false for ids; rows are never deleted.
func (r *WeaponTokenRepository) Invalidate(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `UPDATE weapon_token_cache SET is_valid = FALSE WHERE bc_id = ANY($1)`, int64Slice(ids))
	return err
}

// InvalidateAll flips is_valid=false for every row.
func (r *WeaponTokenRepository) InvalidateAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `UPDATE weapon_token_cache SET is_valid = FALSE`)
	return err
}

func int64Slice(ids []uint64) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
