// Package scheduler drives the recurring jobs from their database-backed
// configs. Schedules live in job_configs rows, not in code: the scheduler
// reads the enabled and implemented rows, registers each with the cron
// runtime, and can re-read them at runtime so an admin edit takes effect
// without a redeploy.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/services/batch"
	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned when a cron expression does not parse.
// The previous registration of the job, if any, stays in effect.
var ErrInvalidSchedule = errors.New("invalid cron expression")

// Scheduler owns the cron runtime and the mapping from job ids to live
// cron entries.
type Scheduler struct {
	cron     *cron.Cron
	parser   cron.Parser
	configs  repository.JobConfigStore
	executor *batch.Executor

	mu      sync.Mutex
	jobs    map[string]batch.Job
	entries map[string]cron.EntryID
}

// New creates a scheduler with seconds-precision cron expressions.
// Registered jobs are not run until Start.
func New(configs repository.JobConfigStore, executor *batch.Executor) *Scheduler {
	parser := cron.NewParser(
		cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		),
	)

	return &Scheduler{
		cron:     c,
		parser:   parser,
		configs:  configs,
		executor: executor,
		jobs:     make(map[string]batch.Job),
		entries:  make(map[string]cron.EntryID),
	}
}

// RegisterJob makes a runner available for scheduling and manual triggers.
// Call for every implemented job before Start.
func (s *Scheduler) RegisterJob(job batch.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID()] = job
}

// Start loads the schedules and starts the cron runtime.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Println("Starting job scheduler...")
	if err := s.RefreshAll(ctx); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("Job scheduler started")
	return nil
}

// Stop stops the cron runtime and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	log.Println("Stopping job scheduler...")
	<-s.cron.Stop().Done()
	log.Println("Job scheduler stopped")
}

// RefreshAll re-reads every enabled and implemented config and rebuilds the
// cron entries to match. Jobs whose rows disappeared or were disabled are
// descheduled. Concurrent refreshes are serialized; the schedule set always
// reflects one complete read, never an interleaving of two.
func (s *Scheduler) RefreshAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.configs.FindEnabledImplemented(ctx)
	if err != nil {
		return fmt.Errorf("failed to load job configs: %w", err)
	}

	wanted := make(map[string]bool, len(configs))
	for i := range configs {
		config := &configs[i]
		wanted[config.JobID] = true
		if err := s.registerLocked(config); err != nil {
			log.Printf("[SCHEDULER] Skipping job %s: %v", config.JobID, err)
		}
	}

	for jobID, entryID := range s.entries {
		if !wanted[jobID] {
			s.cron.Remove(entryID)
			delete(s.entries, jobID)
			log.Printf("[SCHEDULER] Descheduled job: %s", jobID)
		}
	}

	log.Printf("[SCHEDULER] Schedules refreshed: %d jobs active", len(s.entries))
	return nil
}

// RefreshOne re-reads a single config and replaces its cron entry. A row
// that is gone, disabled, or unimplemented deschedules the job.
func (s *Scheduler) RefreshOne(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.configs.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job config %s: %w", jobID, err)
	}

	if config == nil || !config.Enabled || !config.Implemented {
		if entryID, ok := s.entries[jobID]; ok {
			s.cron.Remove(entryID)
			delete(s.entries, jobID)
			log.Printf("[SCHEDULER] Descheduled job: %s", jobID)
		}
		return nil
	}

	return s.registerLocked(config)
}

// registerLocked parses the expression and swaps the job's cron entry.
// The expression is validated before the old entry is removed, so a bad
// edit leaves the previous schedule running. Caller holds mu.
func (s *Scheduler) registerLocked(config *model.JobConfig) error {
	job, ok := s.jobs[config.JobID]
	if !ok {
		return batch.ErrNotImplemented
	}

	schedule, err := s.parser.Parse(config.CronExpression)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, config.CronExpression, err)
	}

	if entryID, ok := s.entries[config.JobID]; ok {
		s.cron.Remove(entryID)
	}

	entryID := s.cron.Schedule(schedule, cron.FuncJob(func() {
		// Errors are already recorded in the execution ledger.
		_, _ = s.executor.Execute(context.Background(), job, model.TriggerScheduled)
	}))
	s.entries[config.JobID] = entryID

	log.Printf("[SCHEDULER] Scheduled job: %s (%s)", config.JobID, config.CronExpression)
	return nil
}

// TriggerManually runs the job synchronously, outside its schedule, and
// returns its recorded execution. The run appears in the ledger as MANUAL.
func (s *Scheduler) TriggerManually(ctx context.Context, jobID string) (*model.JobExecution, error) {
	config, err := s.configs.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job config %s: %w", jobID, err)
	}
	if config == nil {
		return nil, batch.ErrUnknownJob
	}

	s.mu.Lock()
	job, ok := s.jobs[jobID]
	s.mu.Unlock()
	if !ok {
		return nil, batch.ErrNotImplemented
	}

	log.Printf("[SCHEDULER] Manual trigger: %s", jobID)
	return s.executor.Execute(ctx, job, model.TriggerManual)
}

// ScheduledJobs returns the ids currently holding a live cron entry.
func (s *Scheduler) ScheduledJobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}
