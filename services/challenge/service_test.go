package challenge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository/repositorytest"
	"github.com/hyeonwoo-dev/tunequiz-api/services/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCounts map[string]int

func (s staticCounts) CountsByArtist(ctx context.Context) (map[string]int, error) {
	return s, nil
}

func newService(records *repositorytest.Challenges, counts staticCounts) *Service {
	return NewService(records, counts, history.NewLog(repositorytest.NewSongHistories()))
}

func perfectRecord(id, memberID uint, artist string, total int) model.ChallengeRecord {
	achieved := time.Now().Add(-24 * time.Hour)
	return model.ChallengeRecord{
		ID:             id,
		MemberID:       memberID,
		Artist:         artist,
		Difficulty:     model.DifficultyHardcore,
		TotalSongs:     total,
		CorrectCount:   total,
		PerfectClear:   true,
		CurrentPerfect: true,
		AchievedAt:     &achieved,
	}
}

func TestRecordClearFullClearSetsBothFlags(t *testing.T) {
	records := repositorytest.NewChallenges()
	svc := newService(records, staticCounts{"IU": 5})

	record, err := svc.RecordClear(context.Background(), ClearAttempt{
		MemberID: 1, Artist: "IU", Difficulty: model.DifficultyHardcore,
		TotalSongs: 5, CorrectCount: 5, TimeMs: 90000,
	})
	require.NoError(t, err)
	assert.True(t, record.PerfectClear)
	assert.True(t, record.CurrentPerfect)
	assert.Equal(t, 5, record.TotalSongs)
	require.NotNil(t, record.AchievedAt)
	assert.Equal(t, int64(90000), record.BestTimeMs)
}

func TestRecordClearPartialDoesNotSetFlags(t *testing.T) {
	records := repositorytest.NewChallenges()
	svc := newService(records, staticCounts{"IU": 5})

	record, err := svc.RecordClear(context.Background(), ClearAttempt{
		MemberID: 1, Artist: "IU", Difficulty: model.DifficultyHardcore,
		TotalSongs: 5, CorrectCount: 4,
	})
	require.NoError(t, err)
	assert.False(t, record.PerfectClear)
	assert.False(t, record.CurrentPerfect)
	assert.Nil(t, record.AchievedAt)
}

func TestRecordClearRevalidatesAfterCatalogChange(t *testing.T) {
	// A fresh full clear at the new total is the only way CurrentPerfect
	// comes back after an invalidation.
	records := repositorytest.NewChallenges(func() model.ChallengeRecord {
		r := perfectRecord(1, 1, "IU", 5)
		r.CurrentPerfect = false
		r.TotalSongs = 5
		return r
	}())
	svc := newService(records, staticCounts{"IU": 6})

	record, err := svc.RecordClear(context.Background(), ClearAttempt{
		MemberID: 1, Artist: "IU", Difficulty: model.DifficultyHardcore,
		TotalSongs: 6, CorrectCount: 6,
	})
	require.NoError(t, err)
	assert.True(t, record.CurrentPerfect)
	assert.Equal(t, 6, record.TotalSongs)
}

func TestRefreshCatalogGrowthThenShrink(t *testing.T) {
	// Catalog 5 -> 6 -> 5: CurrentPerfect goes true -> false and stays
	// false (the recorded total was re-anchored by nothing), PerfectClear
	// survives throughout.
	records := repositorytest.NewChallenges(perfectRecord(1, 1, "IU", 5))
	ctx := context.Background()

	svc := newService(records, staticCounts{"IU": 6})
	stats, err := svc.RefreshPerfects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Invalidated)

	got := records.ByID(1)
	assert.True(t, got.PerfectClear)
	assert.False(t, got.CurrentPerfect)
	require.NotNil(t, got.LastCheckedAt)

	// Back to the recorded total: the flag does not come back.
	svc = newService(records, staticCounts{"IU": 5})
	stats, err = svc.RefreshPerfects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Invalidated)

	got = records.ByID(1)
	assert.True(t, got.PerfectClear)
	assert.False(t, got.CurrentPerfect)
}

func TestRefreshEmptyCatalogRevokesBothFlags(t *testing.T) {
	records := repositorytest.NewChallenges(perfectRecord(1, 1, "IU", 5))
	svc := newService(records, staticCounts{})

	stats, err := svc.RefreshPerfects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Invalidated)
	assert.Equal(t, 1, stats.AllDeleted)

	got := records.ByID(1)
	assert.False(t, got.PerfectClear)
	assert.False(t, got.CurrentPerfect)
}

func TestRefreshUnchangedCatalogOnlyStampsCheck(t *testing.T) {
	records := repositorytest.NewChallenges(perfectRecord(1, 1, "IU", 5))
	svc := newService(records, staticCounts{"IU": 5})

	stats, err := svc.RefreshPerfects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Invalidated)

	got := records.ByID(1)
	assert.True(t, got.PerfectClear)
	assert.True(t, got.CurrentPerfect)
	require.NotNil(t, got.LastCheckedAt)
}

func TestRefreshStageRecordExemptFromSizeRule(t *testing.T) {
	stage := 3
	record := perfectRecord(1, 1, "IU", 20)
	record.StageLevel = &stage

	records := repositorytest.NewChallenges(record)
	svc := newService(records, staticCounts{"IU": 27})

	stats, err := svc.RefreshPerfects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Invalidated)

	got := records.ByID(1)
	assert.True(t, got.CurrentPerfect, "stage records ignore catalog size changes")

	// The empty-catalog rule still applies to stage records.
	svc = newService(records, staticCounts{})
	stats, err = svc.RefreshPerfects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.AllDeleted)
	assert.False(t, records.ByID(1).PerfectClear)
}

func TestRefreshContinuesPastSaveFailure(t *testing.T) {
	records := repositorytest.NewChallenges(
		perfectRecord(1, 1, "IU", 5),
		perfectRecord(2, 2, "IU", 5),
		perfectRecord(3, 3, "IU", 5),
	)
	records.SaveErrs[2] = errors.New("deadlock detected")

	svc := newService(records, staticCounts{"IU": 6})
	stats, err := svc.RefreshPerfects(context.Background())
	require.NoError(t, err, "one record's failure must not abort the batch")

	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 2, stats.Invalidated)
	assert.Equal(t, 1, stats.Failed)

	assert.False(t, records.ByID(1).CurrentPerfect)
	assert.True(t, records.ByID(2).CurrentPerfect, "failed save leaves the row untouched")
	assert.False(t, records.ByID(3).CurrentPerfect)
}

func TestCheckPerfectsOnlyVisitsPerfectRecords(t *testing.T) {
	plain := model.ChallengeRecord{
		ID: 2, MemberID: 2, Artist: "IU", Difficulty: model.DifficultyNormal,
		TotalSongs: 5, CorrectCount: 3,
	}
	records := repositorytest.NewChallenges(perfectRecord(1, 1, "IU", 5), plain)

	svc := newService(records, staticCounts{"IU": 6})
	stats, err := svc.CheckPerfects(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.False(t, records.ByID(1).CurrentPerfect)
	assert.Nil(t, records.ByID(2).LastCheckedAt)
}

func TestCheckPerfectsStampsUnchangedRecords(t *testing.T) {
	records := repositorytest.NewChallenges(perfectRecord(1, 1, "IU", 5))

	svc := newService(records, staticCounts{"IU": 5})
	stats, err := svc.CheckPerfects(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 0, stats.Invalidated)

	got := records.ByID(1)
	assert.True(t, got.CurrentPerfect)
	require.NotNil(t, got.LastCheckedAt, "the daily pass stamps verified records like the weekly one")
}

func TestVerifyAchievedTotal(t *testing.T) {
	histories := repositorytest.NewSongHistories()
	log := history.NewLog(histories)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := uint(1); i <= 5; i++ {
		song := &model.Song{ID: i, Artist: "IU"}
		require.NoError(t, log.RecordAdded(ctx, song, base.Add(time.Duration(i)*time.Minute)))
	}

	achieved := base.Add(time.Hour)
	record := perfectRecord(1, 1, "IU", 5)
	record.AchievedAt = &achieved

	svc := NewService(repositorytest.NewChallenges(record), staticCounts{"IU": 5}, log)

	ok, count, err := svc.VerifyAchievedTotal(ctx, &record)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, count)

	// A sixth song added after the achievement does not change the answer.
	require.NoError(t, log.RecordAdded(ctx, &model.Song{ID: 6, Artist: "IU"}, achieved.Add(time.Hour)))
	ok, count, err = svc.VerifyAchievedTotal(ctx, &record)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, count)
}
