package score

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaverse/meda-api/service/persist"
)

type fakeScoreRepo struct {
	saved       []persist.ScoreSubmission
	archived    []persist.RawScoreSubmission
	statsByAddr map[persist.Address]persist.PlayerStats
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{statsByAddr: map[persist.Address]persist.PlayerStats{}}
}

func (f *fakeScoreRepo) SaveSubmission(ctx context.Context, raw persist.RawScoreSubmission, processed persist.ScoreSubmission) (int64, int64, error) {
	f.archived = append(f.archived, raw)
	f.saved = append(f.saved, processed)
	if processed.Validated {
		stats := f.statsByAddr[processed.PlayerAddress]
		stats.PlayerAddress = processed.PlayerAddress
		stats.TotalGames++
		if processed.CalculatedScore > stats.BestScore {
			stats.BestScore = processed.CalculatedScore
		}
		f.statsByAddr[processed.PlayerAddress] = stats
	}
	return int64(len(f.archived)), int64(len(f.saved)), nil
}

func (f *fakeScoreRepo) ArchiveRaw(ctx context.Context, raw persist.RawScoreSubmission) (int64, error) {
	f.archived = append(f.archived, raw)
	return int64(len(f.archived)), nil
}

func (f *fakeScoreRepo) PlayerStats(ctx context.Context, wallet persist.Address) (persist.PlayerStats, error) {
	return f.statsByAddr[wallet], nil
}

type fakeBlacklist struct {
	entries map[persist.Address]bool
}

func (f *fakeBlacklist) IsBlacklisted(ctx context.Context, wallet persist.Address) (bool, error) {
	return f.entries[wallet], nil
}

func (f *fakeBlacklist) Entry(ctx context.Context, wallet persist.Address) (persist.BlacklistEntry, bool, error) {
	if !f.entries[wallet] {
		return persist.BlacklistEntry{}, false, nil
	}
	return persist.BlacklistEntry{PlayerAddress: wallet, Active: true}, true, nil
}

func newTestIntake(t *testing.T, repo *fakeScoreRepo, blacklist *fakeBlacklist) (*Intake, func() persist.ScoreEnvelope) {
	t.Helper()
	scoreKey, scoreBlob := generateKeyPEM(t)
	infoKey, infoBlob := generateKeyPEM(t)

	d, err := NewDecryptor(scoreBlob, infoBlob)
	require.NoError(t, err)

	intake := NewIntake(d, repo, blacklist, nil)
	return intake, func() persist.ScoreEnvelope {
		return testEnvelope(t, scoreKey, infoKey)
	}
}

func TestProcessValidSubmission(t *testing.T) {
	repo := newFakeScoreRepo()
	intake, mkEnvelope := newTestIntake(t, repo, &fakeBlacklist{entries: map[persist.Address]bool{}})

	result, err := intake.Process(context.Background(), mkEnvelope(), []byte(`{}`))
	require.NoError(t, err)

	assert.True(t, result.Validated)
	assert.Empty(t, result.Flags)
	assert.Equal(t, Hash32(1), result.CalculatedScore)

	require.Len(t, repo.saved, 1)
	assert.True(t, repo.saved[0].Validated)

	stats, err := repo.PlayerStats(context.Background(), repo.saved[0].PlayerAddress)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalGames)
	assert.Equal(t, Hash32(1), stats.BestScore)
}

func TestProcessBlacklistedStoredButInvalid(t *testing.T) {
	wallet := persist.MustAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
	repo := newFakeScoreRepo()
	intake, mkEnvelope := newTestIntake(t, repo, &fakeBlacklist{entries: map[persist.Address]bool{wallet: true}})

	result, err := intake.Process(context.Background(), mkEnvelope(), []byte(`{}`))
	require.NoError(t, err)

	assert.False(t, result.Validated)
	assert.Contains(t, result.Flags, "blacklisted")

	// stored for review, but player stats untouched
	require.Len(t, repo.saved, 1)
	assert.False(t, repo.saved[0].Validated)

	stats, err := repo.PlayerStats(context.Background(), wallet)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalGames)
	assert.EqualValues(t, 0, stats.BestScore)
}

func TestProcessDecryptFailureArchivesRaw(t *testing.T) {
	repo := newFakeScoreRepo()
	intake, mkEnvelope := newTestIntake(t, repo, &fakeBlacklist{entries: map[persist.Address]bool{}})

	envelope := mkEnvelope()
	envelope.Hash = "bm90IGEgY2lwaGVydGV4dA=="

	_, err := intake.Process(context.Background(), envelope, []byte(`{"hash":"x"}`))
	var decErr ErrDecryptFailure
	require.ErrorAs(t, err, &decErr)

	assert.Empty(t, repo.saved)
	require.Len(t, repo.archived, 1)
	assert.Equal(t, envelope, repo.archived[0].Envelope)
}
