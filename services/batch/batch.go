// Package batch holds the job runtime: the contract each policy job
// implements, the executor that records every run in the execution ledger,
// and the ledger service for auditing and undoing what jobs did.
package batch

import (
	"context"
	"errors"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
)

var (
	// ErrUnknownJob is returned when no job config exists for the given id.
	ErrUnknownJob = errors.New("unknown job id")
	// ErrNotImplemented is returned when a job config exists but no runner
	// is registered for it.
	ErrNotImplemented = errors.New("job not implemented")
)

// Result is what a job body reports back to the executor
type Result struct {
	Affected int
	Message  string
}

// Job is one runnable policy. Run receives the in-flight execution row so
// the job can attach affected-song entries to it.
type Job interface {
	ID() string
	Run(ctx context.Context, exec *model.JobExecution) (Result, error)
}

// JobFunc adapts a function to the Job interface
type JobFunc struct {
	JobID string
	Fn    func(ctx context.Context, exec *model.JobExecution) (Result, error)
}

func (j JobFunc) ID() string { return j.JobID }

func (j JobFunc) Run(ctx context.Context, exec *model.JobExecution) (Result, error) {
	return j.Fn(ctx, exec)
}
