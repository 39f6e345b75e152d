package batch

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
)

// Executor runs jobs and records every run in the execution ledger.
// Recording is two-phase: a RUNNING row is written before the job body
// starts, and the same row is completed afterwards. A crash between the
// phases leaves a RUNNING row behind; SweepStaleRunning cleans those up
// on the next startup.
type Executor struct {
	executions repository.ExecutionStore
	configs    repository.JobConfigStore
}

// NewExecutor creates an executor over the given ledgers
func NewExecutor(executions repository.ExecutionStore, configs repository.JobConfigStore) *Executor {
	return &Executor{
		executions: executions,
		configs:    configs,
	}
}

// Execute runs the job and returns its recorded execution row. The row is
// persisted even when the job fails or panics; a panic is converted into a
// FAIL result and does not propagate.
func (e *Executor) Execute(ctx context.Context, job Job, trigger model.TriggerKind) (*model.JobExecution, error) {
	exec := &model.JobExecution{
		JobID:      job.ID(),
		JobName:    job.ID(),
		RunID:      uuid.New().String(),
		Trigger:    trigger,
		Result:     model.ResultRunning,
		ExecutedAt: time.Now(),
	}
	if config, err := e.configs.FindByID(ctx, job.ID()); err == nil && config != nil {
		exec.JobName = config.Name
	}

	if err := e.executions.Create(ctx, exec); err != nil {
		// Without a ledger row the run is unauditable, so do not run.
		return nil, fmt.Errorf("failed to record execution start for %s: %w", job.ID(), err)
	}

	log.Printf("[BATCH] Starting job: %s run=%s trigger=%s", job.ID(), exec.RunID, trigger)

	start := time.Now()
	result, runErr := e.run(ctx, job, exec)
	elapsed := time.Since(start).Milliseconds()

	exec.ExecutionTimeMs = elapsed
	exec.AffectedCount = result.Affected
	if runErr != nil {
		exec.Result = model.ResultFail
		exec.Message = runErr.Error()
		log.Printf("[BATCH] Job failed: %s run=%s - %v", job.ID(), exec.RunID, runErr)
	} else {
		exec.Result = model.ResultSuccess
		exec.Message = result.Message
		log.Printf("[BATCH] Job completed: %s run=%s affected=%d in %dms",
			job.ID(), exec.RunID, result.Affected, elapsed)
	}

	if err := e.executions.Complete(ctx, exec); err != nil {
		log.Printf("[BATCH] Failed to complete execution record for %s: %v", job.ID(), err)
	}
	if err := e.configs.RecordLastRun(ctx, job.ID(), exec.Result, exec.Message, exec.AffectedCount, elapsed); err != nil {
		log.Printf("[BATCH] Failed to update last-run snapshot for %s: %v", job.ID(), err)
	}

	return exec, runErr
}

// run invokes the job body with panic recovery.
func (e *Executor) run(ctx context.Context, job Job, exec *model.JobExecution) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[BATCH] Job panicked: %s - %v\n%s", job.ID(), r, debug.Stack())
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(ctx, exec)
}

// SweepStaleRunning marks RUNNING rows older than the threshold as FAIL.
// Call once at startup, before the scheduler starts firing jobs.
func (e *Executor) SweepStaleRunning(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	swept, err := e.executions.MarkStaleRunning(ctx, cutoff, "marked failed: process exited mid-run")
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale executions: %w", err)
	}
	if swept > 0 {
		log.Printf("[BATCH] Swept %d stale RUNNING executions", swept)
	}
	return swept, nil
}
