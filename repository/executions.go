package repository

import (
	"context"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"gorm.io/gorm"
)

// ExecutionStore is the append-only ledger of job runs
type ExecutionStore interface {
	Create(ctx context.Context, exec *model.JobExecution) error
	Complete(ctx context.Context, exec *model.JobExecution) error
	RecentByJob(ctx context.Context, jobID string, limit int) ([]model.JobExecution, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	MarkStaleRunning(ctx context.Context, olderThan time.Time, message string) (int64, error)
}

type gormExecutionStore struct {
	db *gorm.DB
}

// NewExecutionStore creates a GORM-backed ExecutionStore
func NewExecutionStore(db *gorm.DB) ExecutionStore {
	return &gormExecutionStore{db: db}
}

func (s *gormExecutionStore) Create(ctx context.Context, exec *model.JobExecution) error {
	return s.db.WithContext(ctx).Create(exec).Error
}

// Complete updates the terminal fields of a previously created RUNNING row.
func (s *gormExecutionStore) Complete(ctx context.Context, exec *model.JobExecution) error {
	return s.db.WithContext(ctx).Model(exec).
		Updates(map[string]interface{}{
			"result":            exec.Result,
			"message":           exec.Message,
			"affected_count":    exec.AffectedCount,
			"execution_time_ms": exec.ExecutionTimeMs,
		}).Error
}

func (s *gormExecutionStore) RecentByJob(ctx context.Context, jobID string, limit int) ([]model.JobExecution, error) {
	var executions []model.JobExecution
	err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("executed_at DESC").
		Limit(limit).
		Find(&executions).Error
	return executions, err
}

func (s *gormExecutionStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("executed_at < ?", cutoff).
		Delete(&model.JobExecution{})
	return result.RowsAffected, result.Error
}

// MarkStaleRunning sweeps RUNNING rows left behind by a crashed process and
// marks them FAIL with a synthetic message.
func (s *gormExecutionStore) MarkStaleRunning(ctx context.Context, olderThan time.Time, message string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.JobExecution{}).
		Where("result = ? AND executed_at < ?", model.ResultRunning, olderThan).
		Updates(map[string]interface{}{
			"result":  model.ResultFail,
			"message": message,
		})
	return result.RowsAffected, result.Error
}
