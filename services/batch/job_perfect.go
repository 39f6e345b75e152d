package batch

import (
	"context"
	"fmt"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/services/challenge"
)

// PerfectCheckJob is the daily pass over records still holding a perfect
// flag.
type PerfectCheckJob struct {
	challenges *challenge.Service
}

// NewPerfectCheckJob creates the daily perfect-flag check job
func NewPerfectCheckJob(challenges *challenge.Service) *PerfectCheckJob {
	return &PerfectCheckJob{challenges: challenges}
}

func (j *PerfectCheckJob) ID() string { return "perfect_check" }

func (j *PerfectCheckJob) Run(ctx context.Context, exec *model.JobExecution) (Result, error) {
	stats, err := j.challenges.CheckPerfects(ctx)
	if err != nil {
		return Result{}, err
	}
	return perfectResult(stats), nil
}

// PerfectRefreshJob is the weekly full re-check over every challenge record.
type PerfectRefreshJob struct {
	challenges *challenge.Service
}

// NewPerfectRefreshJob creates the weekly perfect-flag refresh job
func NewPerfectRefreshJob(challenges *challenge.Service) *PerfectRefreshJob {
	return &PerfectRefreshJob{challenges: challenges}
}

func (j *PerfectRefreshJob) ID() string { return "perfect_refresh" }

func (j *PerfectRefreshJob) Run(ctx context.Context, exec *model.JobExecution) (Result, error) {
	stats, err := j.challenges.RefreshPerfects(ctx)
	if err != nil {
		return Result{}, err
	}
	return perfectResult(stats), nil
}

func perfectResult(stats challenge.RefreshStats) Result {
	return Result{
		Affected: stats.Invalidated,
		Message: fmt.Sprintf("processed %d records, invalidated %d (%d fully revoked), %d failed",
			stats.Processed, stats.Invalidated, stats.AllDeleted, stats.Failed),
	}
}
