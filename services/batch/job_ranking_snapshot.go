package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
)

// snapshotLimit caps how many positions each board archives per period.
const snapshotLimit = 100

// RankingSnapshotJob archives the top positions of the three leaderboards
// before the weekly reset. The job is idempotent per board and period: a
// board whose snapshot rows already exist is skipped, so a retried run
// never duplicates an archive.
type RankingSnapshotJob struct {
	members  repository.MemberStore
	rankings repository.RankingHistoryStore
	// now is swappable for tests
	now func() time.Time
}

// NewRankingSnapshotJob creates the weekly leaderboard archive job
func NewRankingSnapshotJob(members repository.MemberStore, rankings repository.RankingHistoryStore) *RankingSnapshotJob {
	return &RankingSnapshotJob{
		members:  members,
		rankings: rankings,
		now:      time.Now,
	}
}

func (j *RankingSnapshotJob) ID() string { return "ranking_snapshot" }

func (j *RankingSnapshotJob) Run(ctx context.Context, exec *model.JobExecution) (Result, error) {
	start, end := weekBounds(j.now())

	total := 0
	skipped := 0
	for _, board := range []model.RankingType{
		model.RankingWeeklyScore,
		model.RankingMultiTier,
		model.RankingMultiWins,
	} {
		exists, err := j.rankings.SnapshotExists(ctx, model.PeriodWeekly, board, start, end)
		if err != nil {
			return Result{Affected: total}, fmt.Errorf("failed to check snapshot for %s: %w", board, err)
		}
		if exists {
			skipped++
			continue
		}

		members, err := j.loadBoard(ctx, board)
		if err != nil {
			return Result{Affected: total}, fmt.Errorf("failed to load %s board: %w", board, err)
		}

		entries := make([]model.RankingHistory, 0, len(members))
		for rank, member := range members {
			entries = append(entries, model.RankingHistory{
				PeriodType:  model.PeriodWeekly,
				RankingType: board,
				PeriodStart: start,
				PeriodEnd:   end,
				MemberID:    member.ID,
				Nickname:    member.Nickname,
				Rank:        rank + 1,
				Score:       boardScore(board, &member),
				Tier:        member.Tier,
				Points:      member.TierPoints,
			})
		}

		if err := j.rankings.CreateBatch(ctx, entries); err != nil {
			return Result{Affected: total}, fmt.Errorf("failed to archive %s board: %w", board, err)
		}
		total += len(entries)
	}

	return Result{
		Affected: total,
		Message:  fmt.Sprintf("archived %d positions (%d boards already archived)", total, skipped),
	}, nil
}

func (j *RankingSnapshotJob) loadBoard(ctx context.Context, board model.RankingType) ([]model.Member, error) {
	switch board {
	case model.RankingWeeklyScore:
		return j.members.TopByWeeklyScore(ctx, snapshotLimit)
	case model.RankingMultiTier:
		return j.members.TopByTier(ctx, snapshotLimit)
	case model.RankingMultiWins:
		return j.members.TopByWins(ctx, snapshotLimit)
	default:
		return nil, fmt.Errorf("unknown ranking board %s", board)
	}
}

func boardScore(board model.RankingType, member *model.Member) int {
	switch board {
	case model.RankingWeeklyScore:
		return member.WeeklyScore
	case model.RankingMultiWins:
		return member.MultiWins
	default:
		return member.TierPoints
	}
}

// weekBounds returns the Monday 00:00 UTC start and the following Monday
// for the week containing t.
func weekBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(weekday - 1))
	return start, start.AddDate(0, 0, 7)
}
