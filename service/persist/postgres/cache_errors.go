package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/util"
)

const maxErrorMessageLen = 1000

// CacheErrorRepository is the append-only cache-error log.
type CacheErrorRepository struct {
	db *sql.DB
}

// NewCacheErrorRepository creates a new postgres repository for cache errors.
func NewCacheErrorRepository(db *sql.DB) *CacheErrorRepository {
	return &CacheErrorRepository{db: db}
}

// LogError appends one record. Messages are truncated to the column limit.
func (r *CacheErrorRepository) LogError(ctx context.Context, record persist.CacheError) error {
	var tokenID *int64
	if record.TokenID != nil {
		v := int64(*record.TokenID)
		tokenID = &v
	}
	var wallet *string
	if record.Wallet != "" {
		s := record.Wallet.String()
		wallet = &s
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cache_errors (contract_kind, token_id, error_type, message, wallet, retry_count)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ContractKind.String(), tokenID, string(record.ErrorType),
		util.TruncateWithEllipsis(record.Message, maxErrorMessageLen), wallet, record.RetryCount)
	return err
}

// Unresolved returns up to limit unresolved records, oldest first.
func (r *CacheErrorRepository) Unresolved(ctx context.Context, limit int) ([]persist.CacheError, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, contract_kind, token_id, error_type, message, COALESCE(wallet, ''), retry_count, resolved, created_at, resolved_at
		 FROM cache_errors WHERE NOT resolved ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []persist.CacheError
	for rows.Next() {
		var rec persist.CacheError
		var kind, errType, wallet string
		var tokenID sql.NullInt64
		var resolvedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &kind, &tokenID, &errType, &rec.Message, &wallet, &rec.RetryCount, &rec.Resolved, &rec.CreatedAt, &resolvedAt); err != nil {
			return nil, err
		}
		rec.ContractKind = persist.TokenKind(kind)
		rec.ErrorType = persist.CacheErrorType(errType)
		rec.Wallet = persist.Address(wallet)
		if tokenID.Valid {
			v := uint64(tokenID.Int64)
			rec.TokenID = &v
		}
		if resolvedAt.Valid {
			rec.ResolvedAt = &resolvedAt.Time
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkResolved flips resolved on the given records.
func (r *CacheErrorRepository) MarkResolved(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	sqlStr := `UPDATE cache_errors SET resolved = TRUE, resolved_at = now() WHERE id IN (`
	vals := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			sqlStr += `,`
		}
		sqlStr += fmt.Sprintf("$%d", i+1)
		vals[i] = id
	}
	sqlStr += `)`
	_, err := r.db.ExecContext(ctx, sqlStr, vals...)
	return err
}

// DeleteResolvedOlderThan applies the retention policy and reports the
// number of rows removed.
func (r *CacheErrorRepository) DeleteResolvedOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cache_errors WHERE resolved AND created_at < now() - make_interval(secs => $1)`,
		age.Seconds())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
