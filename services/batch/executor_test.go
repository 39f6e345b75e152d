package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository/repositorytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRecordsSuccess(t *testing.T) {
	executions := repositorytest.NewExecutions()
	configs := repositorytest.NewJobConfigs(model.JobConfig{
		JobID: "noop", Name: "No-op job", Implemented: true, Enabled: true,
	})
	executor := NewExecutor(executions, configs)

	job := JobFunc{JobID: "noop", Fn: func(ctx context.Context, exec *model.JobExecution) (Result, error) {
		return Result{Affected: 3, Message: "did things"}, nil
	}}

	exec, err := executor.Execute(context.Background(), job, model.TriggerManual)
	require.NoError(t, err)

	stored := executions.ByID(exec.ID)
	require.NotNil(t, stored)
	assert.Equal(t, model.ResultSuccess, stored.Result)
	assert.Equal(t, "did things", stored.Message)
	assert.Equal(t, 3, stored.AffectedCount)
	assert.Equal(t, model.TriggerManual, stored.Trigger)
	assert.Equal(t, "No-op job", stored.JobName)
	assert.NotEmpty(t, stored.RunID)

	config, _ := configs.FindByID(context.Background(), "noop")
	assert.Equal(t, model.ResultSuccess, config.LastResult)
	assert.Equal(t, 3, config.LastAffectedCount)
	require.NotNil(t, config.LastExecutedAt)
}

func TestExecuteRecordsFailure(t *testing.T) {
	executions := repositorytest.NewExecutions()
	configs := repositorytest.NewJobConfigs()
	executor := NewExecutor(executions, configs)

	boom := errors.New("storage unreachable")
	job := JobFunc{JobID: "broken", Fn: func(ctx context.Context, exec *model.JobExecution) (Result, error) {
		return Result{Affected: 1}, boom
	}}

	exec, err := executor.Execute(context.Background(), job, model.TriggerScheduled)
	require.ErrorIs(t, err, boom)

	stored := executions.ByID(exec.ID)
	require.NotNil(t, stored)
	assert.Equal(t, model.ResultFail, stored.Result)
	assert.Equal(t, "storage unreachable", stored.Message)
	assert.Equal(t, 1, stored.AffectedCount)
}

func TestExecuteRecoversPanic(t *testing.T) {
	executions := repositorytest.NewExecutions()
	executor := NewExecutor(executions, repositorytest.NewJobConfigs())

	job := JobFunc{JobID: "panicky", Fn: func(ctx context.Context, exec *model.JobExecution) (Result, error) {
		panic("nil map write")
	}}

	exec, err := executor.Execute(context.Background(), job, model.TriggerScheduled)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil map write")

	stored := executions.ByID(exec.ID)
	require.NotNil(t, stored)
	assert.Equal(t, model.ResultFail, stored.Result)
}

func TestExecuteRefusesWithoutLedgerRow(t *testing.T) {
	executions := repositorytest.NewExecutions()
	executions.CreateErr = errors.New("insert failed")
	executor := NewExecutor(executions, repositorytest.NewJobConfigs())

	ran := false
	job := JobFunc{JobID: "noop", Fn: func(ctx context.Context, exec *model.JobExecution) (Result, error) {
		ran = true
		return Result{}, nil
	}}

	_, err := executor.Execute(context.Background(), job, model.TriggerManual)
	require.Error(t, err)
	assert.False(t, ran, "job must not run when the start record cannot be written")
}

func TestSweepStaleRunning(t *testing.T) {
	executions := repositorytest.NewExecutions()
	executor := NewExecutor(executions, repositorytest.NewJobConfigs())
	ctx := context.Background()

	stale := &model.JobExecution{
		JobID: "youtube_check", Result: model.ResultRunning,
		ExecutedAt: time.Now().Add(-3 * time.Hour),
	}
	fresh := &model.JobExecution{
		JobID: "youtube_check", Result: model.ResultRunning,
		ExecutedAt: time.Now(),
	}
	require.NoError(t, executions.Create(ctx, stale))
	require.NoError(t, executions.Create(ctx, fresh))

	swept, err := executor.SweepStaleRunning(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	assert.Equal(t, model.ResultFail, executions.ByID(stale.ID).Result)
	assert.Equal(t, model.ResultRunning, executions.ByID(fresh.ID).Result)
}
