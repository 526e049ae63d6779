package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/medaverse/meda-api/service/persist"
)

// ScoreRepository persists score submissions. The raw archive row, the
// processed row and the player-stats upsert commit in one transaction.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new postgres repository for score submissions.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// SaveSubmission writes the raw and processed records atomically. Player
// stats are only advanced by validated submissions, so a blacklisted or
// rule-failing game never moves best_score.
func (r *ScoreRepository) SaveSubmission(ctx context.Context, raw persist.RawScoreSubmission, processed persist.ScoreSubmission) (int64, int64, error) {
	var rawID, processedID int64

	statsJSON, err := json.Marshal(processed.Stats)
	if err != nil {
		return 0, 0, err
	}
	boostsJSON, err := json.Marshal(processed.Boosts)
	if err != nil {
		return 0, 0, err
	}
	envelopeJSON, err := json.Marshal(raw.Envelope)
	if err != nil {
		return 0, 0, err
	}

	err = r.pool.BeginTxFunc(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO score_submissions_raw (envelope, raw_payload) VALUES ($1, $2) RETURNING id`,
			envelopeJSON, []byte(raw.RawPayload)).Scan(&rawID)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO score_submissions
				(raw_id, player_address, final_score, calculated_score, stats, boosts, validated)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			rawID, processed.PlayerAddress.String(), processed.FinalScore, int64(processed.CalculatedScore),
			statsJSON, boostsJSON, processed.Validated).Scan(&processedID)
		if err != nil {
			return err
		}

		if !processed.Validated {
			return nil
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO player_stats (player_address, total_games, best_score, first_game, last_game)
			 VALUES ($1, 1, $2, now(), now())
			 ON CONFLICT (player_address) DO UPDATE SET
				total_games = player_stats.total_games + 1,
				best_score = GREATEST(player_stats.best_score, EXCLUDED.best_score),
				last_game = now()`,
			processed.PlayerAddress.String(), int64(processed.CalculatedScore))
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return rawID, processedID, nil
}

// ArchiveRaw stores the ciphertext envelope with no processed row, used
// when decryption fails but the payload is kept for forensic review.
func (r *ScoreRepository) ArchiveRaw(ctx context.Context, raw persist.RawScoreSubmission) (int64, error) {
	envelopeJSON, err := json.Marshal(raw.Envelope)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.pool.QueryRow(ctx,
		`INSERT INTO score_submissions_raw (envelope, raw_payload) VALUES ($1, $2) RETURNING id`,
		envelopeJSON, []byte(raw.RawPayload)).Scan(&id)
	return id, err
}

// PlayerStats returns the aggregate row for a wallet; a wallet with no
// validated games yields the zero value.
func (r *ScoreRepository) PlayerStats(ctx context.Context, wallet persist.Address) (persist.PlayerStats, error) {
	var stats persist.PlayerStats
	var addr string
	var bestScore int64
	err := r.pool.QueryRow(ctx,
		`SELECT player_address, total_games, best_score, first_game, last_game
		 FROM player_stats WHERE player_address = $1`, wallet.String()).
		Scan(&addr, &stats.TotalGames, &bestScore, &stats.FirstGame, &stats.LastGame)
	if err == pgx.ErrNoRows {
		return persist.PlayerStats{PlayerAddress: wallet}, nil
	}
	if err != nil {
		return persist.PlayerStats{}, err
	}
	stats.PlayerAddress = persist.Address(addr)
	stats.BestScore = uint32(bestScore)
	return stats, nil
}
