// Package repository holds the GORM-backed stores for the job layer.
// Services and jobs depend on the interfaces so the batch logic stays
// decoupled from persistence and testable with in-memory fakes.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"gorm.io/gorm"
)

// JobConfigStore reads and mutates the authoritative job-config rows
type JobConfigStore interface {
	FindAll(ctx context.Context) ([]model.JobConfig, error)
	FindByID(ctx context.Context, jobID string) (*model.JobConfig, error)
	FindEnabledImplemented(ctx context.Context) ([]model.JobConfig, error)
	Save(ctx context.Context, config *model.JobConfig) error
	RecordLastRun(ctx context.Context, jobID string, result model.ExecutionResult, message string, affected int, durationMs int64) error
}

type gormJobConfigStore struct {
	db *gorm.DB
}

// NewJobConfigStore creates a GORM-backed JobConfigStore
func NewJobConfigStore(db *gorm.DB) JobConfigStore {
	return &gormJobConfigStore{db: db}
}

func (s *gormJobConfigStore) FindAll(ctx context.Context) ([]model.JobConfig, error) {
	var configs []model.JobConfig
	err := s.db.WithContext(ctx).
		Order("priority ASC, name ASC").
		Find(&configs).Error
	return configs, err
}

func (s *gormJobConfigStore) FindByID(ctx context.Context, jobID string) (*model.JobConfig, error) {
	var config model.JobConfig
	err := s.db.WithContext(ctx).First(&config, "job_id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (s *gormJobConfigStore) FindEnabledImplemented(ctx context.Context) ([]model.JobConfig, error) {
	var configs []model.JobConfig
	err := s.db.WithContext(ctx).
		Where("implemented = ? AND enabled = ?", true, true).
		Find(&configs).Error
	return configs, err
}

func (s *gormJobConfigStore) Save(ctx context.Context, config *model.JobConfig) error {
	return s.db.WithContext(ctx).Save(config).Error
}

func (s *gormJobConfigStore) RecordLastRun(ctx context.Context, jobID string, result model.ExecutionResult, message string, affected int, durationMs int64) error {
	return s.db.WithContext(ctx).Model(&model.JobConfig{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"last_executed_at":       time.Now(),
			"last_result":            result,
			"last_result_message":    message,
			"last_affected_count":    affected,
			"last_execution_time_ms": durationMs,
		}).Error
}
