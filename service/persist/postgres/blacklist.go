package postgres

import (
	"context"
	"database/sql"

	"github.com/medaverse/meda-api/service/persist"
)

// BlacklistRepository answers active-blacklist queries for the anti-cheat gate.
type BlacklistRepository struct {
	db *sql.DB
}

// NewBlacklistRepository creates a new postgres repository for the blacklist.
func NewBlacklistRepository(db *sql.DB) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

// IsBlacklisted reports whether the wallet has an active blacklist row.
func (r *BlacklistRepository) IsBlacklisted(ctx context.Context, wallet persist.Address) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blacklist WHERE player_address = $1 AND active)`,
		wallet.String()).Scan(&exists)
	return exists, err
}

// Entry returns the blacklist row for a wallet if one exists, active or not.
func (r *BlacklistRepository) Entry(ctx context.Context, wallet persist.Address) (persist.BlacklistEntry, bool, error) {
	var e persist.BlacklistEntry
	var addr string
	var evidence sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT player_address, reason, evidence, active, created_at FROM blacklist WHERE player_address = $1`,
		wallet.String()).Scan(&addr, &e.Reason, &evidence, &e.Active, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return persist.BlacklistEntry{}, false, nil
	}
	if err != nil {
		return persist.BlacklistEntry{}, false, err
	}
	e.PlayerAddress = persist.Address(addr)
	if evidence.Valid {
		e.Evidence = []byte(evidence.String)
	}
	return e, true, nil
}
