package persist

import (
	"context"
	"encoding/json"
	"time"
)

// ScoreEnvelope is the 17-field ciphertext payload posted by the game
// client. Field order is fixed; each value is a base64 RSA ciphertext.
type ScoreEnvelope struct {
	Hash        string `json:"hash" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Delta       string `json:"delta" binding:"required"`
	Parameter1  string `json:"parameter1" binding:"required"`
	Parameter2  string `json:"parameter2" binding:"required"`
	Parameter3  string `json:"parameter3" binding:"required"`
	Parameter4  string `json:"parameter4" binding:"required"`
	Parameter5  string `json:"parameter5" binding:"required"`
	Parameter6  string `json:"parameter6" binding:"required"`
	Parameter7  string `json:"parameter7" binding:"required"`
	Parameter8  string `json:"parameter8" binding:"required"`
	Parameter9  string `json:"parameter9" binding:"required"`
	Parameter10 string `json:"parameter10" binding:"required"`
	Parameter11 string `json:"parameter11" binding:"required"`
	Parameter12 string `json:"parameter12" binding:"required"`
	Parameter13 string `json:"parameter13" binding:"required"`
	Parameter14 string `json:"parameter14" binding:"required"`
	Parameter15 string `json:"parameter15" binding:"required"`
}

// RawScoreSubmission archives the envelope exactly as received.
type RawScoreSubmission struct {
	ID         int64           `json:"id"`
	Envelope   ScoreEnvelope   `json:"envelope"`
	RawPayload json.RawMessage `json:"raw_payload"`
	ReceivedAt time.Time       `json:"received_at"`
}

// GameStats are the decrypted, typed per-game statistics.
type GameStats struct {
	DurationSeconds             int64   `json:"duration_seconds"`
	EnemiesSpawned              int64   `json:"enemies_spawned"`
	EnemiesKilled               int64   `json:"enemies_killed"`
	WavesCompleted              int64   `json:"waves_completed"`
	TravelDistance              int64   `json:"travel_distance"`
	PerksCollected              int64   `json:"perks_collected"`
	CoinsCollected              int64   `json:"coins_collected"`
	ShieldsCollected            int64   `json:"shields_collected"`
	KillingSpreeMult            int64   `json:"killing_spree_mult"`
	KillingSpreeDuration        int64   `json:"killing_spree_duration"`
	MaxKillingSpree             int64   `json:"max_killing_spree"`
	AttackSpeed                 float64 `json:"attack_speed"`
	MaxScorePerEnemy            int64   `json:"max_score_per_enemy"`
	MaxScorePerEnemyScaled      int64   `json:"max_score_per_enemy_scaled"`
	AbilityUseCount             int64   `json:"ability_use_count"`
	EnemiesKilledInKillingSpree int64   `json:"enemies_killed_while_killing_spree"`
}

// NFTBoosts is the snapshot of NFT-derived boosts at submission time.
type NFTBoosts struct {
	Heroes           int    `json:"heroes"`
	Weapons          int    `json:"weapons"`
	LandTickets      int    `json:"land_tickets"`
	DamageMultiplier uint64 `json:"damage_multiplier"`
	FireRateBonus    uint64 `json:"fire_rate_bonus"`
	ScoreMultiplier  uint64 `json:"score_multiplier"`
	HealthBonus      uint64 `json:"health_bonus"`
	TotalPower       uint64 `json:"total_power"`
}

// ScoreSubmission is the processed record referencing its raw archive row.
type ScoreSubmission struct {
	ID              int64     `json:"id"`
	RawID           int64     `json:"raw_id"`
	PlayerAddress   Address   `json:"player_address"`
	FinalScore      int64     `json:"final_score"`
	CalculatedScore uint32    `json:"calculated_score"`
	Stats           GameStats `json:"stats"`
	Boosts          NFTBoosts `json:"boosts"`
	Validated       bool      `json:"validated"`
	ReceivedAt      time.Time `json:"received_at"`
}

// PlayerStats is the per-wallet aggregate updated on every processed score.
type PlayerStats struct {
	PlayerAddress Address   `json:"player_address"`
	TotalGames    int64     `json:"total_games"`
	BestScore     uint32    `json:"best_score"`
	FirstGame     time.Time `json:"first_game"`
	LastGame      time.Time `json:"last_game"`
}

// BlacklistEntry marks a wallet whose submissions are stored but never validated.
type BlacklistEntry struct {
	PlayerAddress Address         `json:"player_address"`
	Reason        string          `json:"reason"`
	Evidence      json.RawMessage `json:"evidence,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ScoreRepository persists one submission atomically: the raw archive row,
// the processed row referencing it, and the player-stats upsert. ArchiveRaw
// stores the ciphertext alone, for submissions rejected before processing.
type ScoreRepository interface {
	SaveSubmission(ctx context.Context, raw RawScoreSubmission, processed ScoreSubmission) (rawID, processedID int64, err error)
	ArchiveRaw(ctx context.Context, raw RawScoreSubmission) (int64, error)
	PlayerStats(ctx context.Context, wallet Address) (PlayerStats, error)
}

// BlacklistRepository answers active-blacklist membership queries.
type BlacklistRepository interface {
	IsBlacklisted(ctx context.Context, wallet Address) (bool, error)
	Entry(ctx context.Context, wallet Address) (BlacklistEntry, bool, error)
}
