package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/services/history"
)

const (
	// executionRetentionDays is how long job execution rows are kept.
	executionRetentionDays = 30
	// historyRetentionDays is how long song history events are kept.
	// Point-in-time counts older than this window are not answerable.
	historyRetentionDays = 365
)

// CleanupJob prunes aged execution rows and song history events. Affected
// song entries are kept forever; they are the undo trail.
type CleanupJob struct {
	ledger  *Service
	history *history.Log
}

// NewCleanupJob creates the retention job
func NewCleanupJob(ledger *Service, historyLog *history.Log) *CleanupJob {
	return &CleanupJob{ledger: ledger, history: historyLog}
}

func (j *CleanupJob) ID() string { return "execution_history_cleanup" }

func (j *CleanupJob) Run(ctx context.Context, exec *model.JobExecution) (Result, error) {
	now := time.Now()

	executionsPruned, err := j.ledger.PruneExecutions(ctx, now.AddDate(0, 0, -executionRetentionDays))
	if err != nil {
		return Result{}, fmt.Errorf("failed to prune executions: %w", err)
	}

	historyPruned, err := j.history.PruneOlderThan(ctx, now.AddDate(0, 0, -historyRetentionDays))
	if err != nil {
		return Result{Affected: int(executionsPruned)}, fmt.Errorf("failed to prune song history: %w", err)
	}

	return Result{
		Affected: int(executionsPruned + historyPruned),
		Message:  fmt.Sprintf("pruned %d executions, %d history events", executionsPruned, historyPruned),
	}, nil
}
