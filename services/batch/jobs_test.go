package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository/repositorytest"
	"github.com/hyeonwoo-dev/tunequiz-api/services/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVideoChecker struct {
	verdicts map[string]media.Verdict
	errs     map[string]error
}

func (f *fakeVideoChecker) Check(ctx context.Context, videoID string) (media.Verdict, error) {
	if err := f.errs[videoID]; err != nil {
		return media.Verdict{}, err
	}
	if v, ok := f.verdicts[videoID]; ok {
		return v, nil
	}
	return media.Verdict{Kind: media.VerdictValid}, nil
}

type fakeFileChecker struct {
	missing map[string]bool
}

func (f *fakeFileChecker) Exists(ctx context.Context, path string) (bool, error) {
	return !f.missing[path], nil
}

func TestYoutubeCheckDeactivatesInvalidVideos(t *testing.T) {
	songs := make([]model.Song, 0, 10)
	for i := 1; i <= 10; i++ {
		songs = append(songs, model.Song{
			ID: uint(i), Artist: "IU", Title: fmt.Sprintf("Track %d", i),
			YoutubeVideoID: fmt.Sprintf("vid-%d", i), Active: true,
		})
	}
	f := newLedgerFixture(t, songs...)
	exec := f.newExecution(t, "youtube_check")

	checker := &fakeVideoChecker{verdicts: map[string]media.Verdict{
		"vid-3": {Kind: media.VerdictUnavailable, Detail: "video not found"},
		"vid-7": {Kind: media.VerdictEmbedDisabled, Detail: "embedding disabled by uploader"},
	}}

	job := NewYoutubeCheckJob(f.songs, checker, f.service)
	result, err := job.Run(context.Background(), exec)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Affected)

	for i := uint(1); i <= 10; i++ {
		song, _ := f.songs.FindByID(context.Background(), i)
		wantActive := i != 3 && i != 7
		assert.Equal(t, wantActive, song.Active, "song %d", i)
	}

	unrestored, _ := f.affected.FindUnrestoredByJob(context.Background(), "youtube_check")
	require.Len(t, unrestored, 2)
	reasons := map[uint]model.AffectedReason{}
	for _, entry := range unrestored {
		reasons[entry.SongID] = entry.Reason
	}
	assert.Equal(t, model.ReasonVideoUnavailable, reasons[3])
	assert.Equal(t, model.ReasonEmbedDisabled, reasons[7])
}

func TestYoutubeCheckSkipsOnCheckerError(t *testing.T) {
	f := newLedgerFixture(t, model.Song{ID: 1, Artist: "IU", YoutubeVideoID: "vid-1", Active: true})
	exec := f.newExecution(t, "youtube_check")

	checker := &fakeVideoChecker{errs: map[string]error{"vid-1": errors.New("quota exceeded")}}
	job := NewYoutubeCheckJob(f.songs, checker, f.service)

	result, err := job.Run(context.Background(), exec)
	require.NoError(t, err, "checker errors are counted, not fatal")
	assert.Equal(t, 0, result.Affected)

	song, _ := f.songs.FindByID(context.Background(), 1)
	assert.True(t, song.Active, "a failed check must not deactivate")
}

func TestDuplicateCheckKeepsOldestSong(t *testing.T) {
	f := newLedgerFixture(t,
		model.Song{ID: 1, Artist: "IU", Title: "Palette", YoutubeVideoID: "shared", Active: true},
		model.Song{ID: 2, Artist: "IU", Title: "Palette (re-upload)", YoutubeVideoID: "shared", Active: true},
		model.Song{ID: 3, Artist: "IU", Title: "Palette (again)", YoutubeVideoID: "shared", Active: true},
		model.Song{ID: 4, Artist: "BTS", Title: "Other", YoutubeVideoID: "unique", Active: true},
	)
	exec := f.newExecution(t, "duplicate_check")

	job := NewDuplicateCheckJob(f.songs, f.service)
	result, err := job.Run(context.Background(), exec)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Affected)

	ctx := context.Background()
	song, _ := f.songs.FindByID(ctx, 1)
	assert.True(t, song.Active, "lowest id keeps the video")
	for _, id := range []uint{2, 3} {
		song, _ := f.songs.FindByID(ctx, id)
		assert.False(t, song.Active, "song %d", id)
	}

	entries, _ := f.affected.FindUnrestoredByJob(ctx, "duplicate_check")
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, model.ReasonDuplicateSong, entry.Reason)
		assert.Contains(t, entry.ReasonDetail, "song 1")
	}
}

func TestFileCheckDeactivatesMissingFiles(t *testing.T) {
	f := newLedgerFixture(t,
		model.Song{ID: 1, Artist: "IU", FilePath: "iu/palette.mp3", Active: true},
		model.Song{ID: 2, Artist: "IU", FilePath: "iu/lilac.mp3", Active: true},
	)
	exec := f.newExecution(t, "file_check")

	checker := &fakeFileChecker{missing: map[string]bool{"iu/lilac.mp3": true}}
	job := NewFileCheckJob(f.songs, checker, f.service)

	result, err := job.Run(context.Background(), exec)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Affected)

	song, _ := f.songs.FindByID(context.Background(), 2)
	assert.False(t, song.Active)
}

func TestLpDecaySkipsBronzeZeroAndActives(t *testing.T) {
	old := time.Now().AddDate(0, 0, -40)
	recent := time.Now().AddDate(0, 0, -5)

	members := repositorytest.NewMembers(
		model.Member{ID: 1, Nickname: "idle-gold", Tier: model.TierGold, TierPoints: 50, LastMultiPlayedAt: &old},
		model.Member{ID: 2, Nickname: "idle-bronze-zero", Tier: model.TierBronze, TierPoints: 0, LastMultiPlayedAt: &old},
		model.Member{ID: 3, Nickname: "active-gold", Tier: model.TierGold, TierPoints: 50, LastMultiPlayedAt: &recent},
		model.Member{ID: 4, Nickname: "never-played", Tier: model.TierGold, TierPoints: 50},
		model.Member{ID: 5, Nickname: "idle-silver-low", Tier: model.TierSilver, TierPoints: 3, LastMultiPlayedAt: &old},
	)

	job := NewLpDecayJob(members)
	result, err := job.Run(context.Background(), &model.JobExecution{JobID: "lp_decay"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Affected)

	assert.Equal(t, 43, members.Rows[1].TierPoints)
	assert.Equal(t, 0, members.Rows[2].TierPoints, "bronze zero is untouched")
	assert.Equal(t, 50, members.Rows[3].TierPoints, "recently active is untouched")
	assert.Equal(t, 50, members.Rows[4].TierPoints, "never played is untouched")

	demoted := members.Rows[5]
	assert.Equal(t, model.TierBronze, demoted.Tier)
	assert.Equal(t, 96, demoted.TierPoints)
	require.NotNil(t, demoted.TierUpdatedAt)
}

func TestRankingSnapshotIsIdempotent(t *testing.T) {
	members := repositorytest.NewMembers(
		model.Member{ID: 1, Nickname: "alpha", Tier: model.TierDiamond, TierPoints: 40,
			WeeklyScore: 900, MultiGames: 30, MultiWins: 12},
		model.Member{ID: 2, Nickname: "beta", Tier: model.TierGold, TierPoints: 80,
			WeeklyScore: 1200, MultiGames: 20, MultiWins: 4},
	)
	rankings := repositorytest.NewRankings()

	job := NewRankingSnapshotJob(members, rankings)
	job.now = func() time.Time { return time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC) }

	result, err := job.Run(context.Background(), &model.JobExecution{JobID: "ranking_snapshot"})
	require.NoError(t, err)
	assert.Equal(t, 6, result.Affected, "two members on each of three boards")

	// Weekly score board is ordered by score, not tier.
	var scoreBoard []model.RankingHistory
	for _, row := range rankings.Rows {
		if row.RankingType == model.RankingWeeklyScore {
			scoreBoard = append(scoreBoard, row)
		}
	}
	require.Len(t, scoreBoard, 2)
	assert.Equal(t, "beta", scoreBoard[0].Nickname)
	assert.Equal(t, 1, scoreBoard[0].Rank)
	assert.Equal(t, 1200, scoreBoard[0].Score)

	// Same week again: nothing new is written.
	result, err = job.Run(context.Background(), &model.JobExecution{JobID: "ranking_snapshot"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Affected)
	assert.Len(t, rankings.Rows, 6)
}

func TestCleanupPrunesByRetention(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	oldExec := &model.JobExecution{JobID: "youtube_check", Result: model.ResultSuccess,
		ExecutedAt: time.Now().AddDate(0, 0, -45)}
	freshExec := &model.JobExecution{JobID: "youtube_check", Result: model.ResultSuccess,
		ExecutedAt: time.Now().AddDate(0, 0, -5)}
	require.NoError(t, f.executions.Create(ctx, oldExec))
	require.NoError(t, f.executions.Create(ctx, freshExec))

	require.NoError(t, f.histories.Append(ctx, &model.SongHistory{
		SongID: 1, Artist: "IU", Action: model.HistoryAdded,
		ActionAt: time.Now().AddDate(-2, 0, 0),
	}))
	require.NoError(t, f.histories.Append(ctx, &model.SongHistory{
		SongID: 1, Artist: "IU", Action: model.HistoryDeleted,
		ActionAt: time.Now().AddDate(0, -1, 0),
	}))

	job := NewCleanupJob(f.service, f.log)
	result, err := job.Run(ctx, &model.JobExecution{JobID: "execution_history_cleanup"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Affected)

	assert.Len(t, f.executions.Rows, 1)
	assert.Len(t, f.histories.Rows, 1)
}
