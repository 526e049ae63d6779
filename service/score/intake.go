package score

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/medaverse/meda-api/service/logger"
	"github.com/medaverse/meda-api/service/persist"
)

// ErrIntakeDisabled is returned when the RSA keys were absent at startup.
var ErrIntakeDisabled = errors.New("score intake is disabled: missing rsa keys")

// BoostProvider snapshots the submitting wallet's NFT boosts. The
// enrichment engine satisfies it.
type BoostProvider interface {
	Boosts(ctx context.Context, wallet persist.Address) (persist.NFTBoosts, error)
}

// Intake runs the per-submission pipeline: decrypt, recompute, gate,
// persist. One pipeline per request; only the DB and key handles are shared.
type Intake struct {
	decryptor *Decryptor
	scores    persist.ScoreRepository
	blacklist persist.BlacklistRepository
	boosts    BoostProvider
}

// NewIntake builds the pipeline. boosts may be nil; the snapshot is then
// all zeros.
func NewIntake(decryptor *Decryptor, scores persist.ScoreRepository, blacklist persist.BlacklistRepository, boosts BoostProvider) *Intake {
	return &Intake{decryptor: decryptor, scores: scores, blacklist: blacklist, boosts: boosts}
}

// Result reports what the pipeline persisted.
type Result struct {
	RawID           int64    `json:"raw_id"`
	SubmissionID    int64    `json:"submission_id"`
	PlayerAddress   string   `json:"player_address"`
	CalculatedScore uint32   `json:"calculated_score"`
	Validated       bool     `json:"validated"`
	Flags           []string `json:"flags,omitempty"`
}

// Process handles one submission. A decrypt failure archives the raw
// envelope and returns ErrDecryptFailure; everything past decryption is
// persisted regardless of validation outcome so cheating attempts stay
// reviewable.
func (s *Intake) Process(ctx context.Context, envelope persist.ScoreEnvelope, rawPayload json.RawMessage) (Result, error) {
	raw := persist.RawScoreSubmission{Envelope: envelope, RawPayload: rawPayload}

	dec, err := s.decryptor.Decrypt(envelope)
	if err != nil {
		if _, archiveErr := s.scores.ArchiveRaw(ctx, raw); archiveErr != nil {
			logger.For(ctx).WithError(archiveErr).Error("failed to archive undecryptable submission")
		}
		return Result{}, err
	}

	calculated := Hash32(uint32(dec.FinalScore))
	validated, flags := s.validate(ctx, dec)

	boosts := persist.NFTBoosts{}
	if s.boosts != nil {
		if b, err := s.boosts.Boosts(ctx, dec.PlayerAddress); err != nil {
			logger.For(ctx).WithError(err).Warn("boost snapshot failed, storing zeros")
		} else {
			boosts = b
		}
	}

	processed := persist.ScoreSubmission{
		PlayerAddress:   dec.PlayerAddress,
		FinalScore:      dec.FinalScore,
		CalculatedScore: calculated,
		Stats:           dec.Stats,
		Boosts:          boosts,
		Validated:       validated,
	}

	rawID, submissionID, err := s.scores.SaveSubmission(ctx, raw, processed)
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to persist score submission")
	}

	return Result{
		RawID:           rawID,
		SubmissionID:    submissionID,
		PlayerAddress:   dec.PlayerAddress.String(),
		CalculatedScore: calculated,
		Validated:       validated,
		Flags:           flags,
	}, nil
}

// validate applies the anti-cheat gate. Failures never reject the request;
// they mark the row invalid so it is stored but excluded from player stats.
func (s *Intake) validate(ctx context.Context, dec Decrypted) (bool, []string) {
	var flags []string

	blacklisted, err := s.blacklist.IsBlacklisted(ctx, dec.PlayerAddress)
	if err != nil {
		logger.For(ctx).WithError(err).Error("blacklist check failed, treating submission as unvalidated")
		flags = append(flags, "blacklist_check_failed")
	} else if blacklisted {
		flags = append(flags, "blacklisted")
	}

	if dec.Stats.DurationSeconds <= 0 {
		flags = append(flags, "non_positive_duration")
	}
	if dec.Stats.EnemiesKilled > dec.Stats.EnemiesSpawned {
		flags = append(flags, "kills_exceed_spawned")
	}
	if dec.Stats.EnemiesKilledInKillingSpree > dec.Stats.EnemiesKilled {
		flags = append(flags, "spree_kills_exceed_kills")
	}

	return len(flags) == 0, flags
}
