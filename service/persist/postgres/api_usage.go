package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/medaverse/meda-api/service/logger"
)

// APIUsageRepository is the fire-and-forget request audit log.
type APIUsageRepository struct {
	db *sql.DB
}

// NewAPIUsageRepository creates a new postgres repository for the usage log.
func NewAPIUsageRepository(db *sql.DB) *APIUsageRepository {
	return &APIUsageRepository{db: db}
}

// Record inserts one audit row. Failures are logged and swallowed; the
// audit log must never affect a response.
func (r *APIUsageRepository) Record(ctx context.Context, endpoint, wallet string, status int, latency time.Duration) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_usage (endpoint, wallet, status, latency_ms) VALUES ($1, NULLIF($2, ''), $3, $4)`,
		endpoint, wallet, status, latency.Milliseconds())
	if err != nil {
		logger.For(ctx).WithError(err).Warn("failed to record api usage")
	}
}
