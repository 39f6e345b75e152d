package scheduler

import (
	"context"
	"sync"
	"testing"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository/repositorytest"
	"github.com/hyeonwoo-dev/tunequiz-api/services/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopJob(id string) batch.Job {
	return batch.JobFunc{JobID: id, Fn: func(ctx context.Context, exec *model.JobExecution) (batch.Result, error) {
		return batch.Result{Message: "ok"}, nil
	}}
}

func jobConfig(id, expr string) model.JobConfig {
	return model.JobConfig{
		JobID:          id,
		Name:           id,
		CronExpression: expr,
		Enabled:        true,
		Implemented:    true,
	}
}

func newTestScheduler(configs *repositorytest.JobConfigs) *Scheduler {
	executor := batch.NewExecutor(repositorytest.NewExecutions(), configs)
	return New(configs, executor)
}

func TestRefreshAllSchedulesEnabledJobs(t *testing.T) {
	configs := repositorytest.NewJobConfigs(
		jobConfig("youtube_check", "0 0 3 * * *"),
		jobConfig("lp_decay", "0 0 6 * * 1"),
		func() model.JobConfig {
			c := jobConfig("disabled_job", "0 0 4 * * *")
			c.Enabled = false
			return c
		}(),
	)
	sched := newTestScheduler(configs)
	sched.RegisterJob(noopJob("youtube_check"))
	sched.RegisterJob(noopJob("lp_decay"))
	sched.RegisterJob(noopJob("disabled_job"))

	require.NoError(t, sched.RefreshAll(context.Background()))
	assert.ElementsMatch(t, []string{"youtube_check", "lp_decay"}, sched.ScheduledJobs())
}

func TestRefreshAllInvalidExpressionSkipsJob(t *testing.T) {
	configs := repositorytest.NewJobConfigs(
		jobConfig("good", "0 0 3 * * *"),
		jobConfig("bad", "not a cron"),
	)
	sched := newTestScheduler(configs)
	sched.RegisterJob(noopJob("good"))
	sched.RegisterJob(noopJob("bad"))

	require.NoError(t, sched.RefreshAll(context.Background()))
	assert.Equal(t, []string{"good"}, sched.ScheduledJobs())
}

func TestRefreshOneInvalidExpressionKeepsOldEntry(t *testing.T) {
	configs := repositorytest.NewJobConfigs(jobConfig("youtube_check", "0 0 3 * * *"))
	sched := newTestScheduler(configs)
	sched.RegisterJob(noopJob("youtube_check"))
	ctx := context.Background()

	require.NoError(t, sched.RefreshAll(ctx))

	// Break the expression and refresh: the previous schedule survives.
	broken, _ := configs.FindByID(ctx, "youtube_check")
	broken.CronExpression = "*/banana"
	require.NoError(t, configs.Save(ctx, broken))

	err := sched.RefreshOne(ctx, "youtube_check")
	require.ErrorIs(t, err, ErrInvalidSchedule)
	assert.Equal(t, []string{"youtube_check"}, sched.ScheduledJobs())
}

func TestRefreshOneDeschedulesDisabledJob(t *testing.T) {
	configs := repositorytest.NewJobConfigs(jobConfig("youtube_check", "0 0 3 * * *"))
	sched := newTestScheduler(configs)
	sched.RegisterJob(noopJob("youtube_check"))
	ctx := context.Background()

	require.NoError(t, sched.RefreshAll(ctx))
	require.Len(t, sched.ScheduledJobs(), 1)

	config, _ := configs.FindByID(ctx, "youtube_check")
	config.Enabled = false
	require.NoError(t, configs.Save(ctx, config))

	require.NoError(t, sched.RefreshOne(ctx, "youtube_check"))
	assert.Empty(t, sched.ScheduledJobs())
}

func TestConcurrentRefreshAllLeavesOneEntryPerJob(t *testing.T) {
	configs := repositorytest.NewJobConfigs(
		jobConfig("youtube_check", "0 0 3 * * *"),
		jobConfig("lp_decay", "0 0 6 * * 1"),
	)
	sched := newTestScheduler(configs)
	sched.RegisterJob(noopJob("youtube_check"))
	sched.RegisterJob(noopJob("lp_decay"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sched.RefreshAll(context.Background())
		}()
	}
	wg.Wait()

	assert.Len(t, sched.ScheduledJobs(), 2)
	// The entry map can only hold one id per job; the cron runtime's own
	// entry list is where a leaked cancel/register interleaving would show.
	assert.Len(t, sched.cron.Entries(), 2)
}

func TestTriggerManuallyUnknownJob(t *testing.T) {
	sched := newTestScheduler(repositorytest.NewJobConfigs())
	_, err := sched.TriggerManually(context.Background(), "nope")
	assert.ErrorIs(t, err, batch.ErrUnknownJob)
}

func TestTriggerManuallyNotImplemented(t *testing.T) {
	// Config row exists but no runner was registered for it.
	configs := repositorytest.NewJobConfigs(func() model.JobConfig {
		c := jobConfig("future_job", "0 0 3 * * *")
		c.Implemented = false
		return c
	}())
	sched := newTestScheduler(configs)

	_, err := sched.TriggerManually(context.Background(), "future_job")
	assert.ErrorIs(t, err, batch.ErrNotImplemented)
}

func TestTriggerManuallyRunsSynchronously(t *testing.T) {
	configs := repositorytest.NewJobConfigs(jobConfig("youtube_check", "0 0 3 * * *"))
	sched := newTestScheduler(configs)
	sched.RegisterJob(noopJob("youtube_check"))

	exec, err := sched.TriggerManually(context.Background(), "youtube_check")
	require.NoError(t, err)
	require.NotNil(t, exec)
	assert.Equal(t, model.TriggerManual, exec.Trigger)
	assert.Equal(t, model.ResultSuccess, exec.Result)
	assert.Equal(t, "ok", exec.Message)
}
