package model

import (
	"time"

	"gorm.io/datatypes"
)

// TriggerKind distinguishes timer firings from admin-initiated runs
type TriggerKind string

const (
	TriggerScheduled TriggerKind = "SCHEDULED"
	TriggerManual    TriggerKind = "MANUAL"
)

// ExecutionResult is the terminal (or in-flight) state of one job run
type ExecutionResult string

const (
	ResultSuccess ExecutionResult = "SUCCESS"
	ResultFail    ExecutionResult = "FAIL"
	ResultRunning ExecutionResult = "RUNNING"
)

// JobExecution is the append-only audit row for one job run. A RUNNING row is
// written before the job body starts so a crashed process still leaves a
// diagnosable trace; completion updates the same row in place.
type JobExecution struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	JobID           string          `gorm:"type:varchar(50);not null;index:idx_job_executions_job,priority:1" json:"job_id"`
	JobName         string          `gorm:"type:varchar(100);not null" json:"job_name"`
	RunID           string          `gorm:"type:varchar(36);not null" json:"run_id"`
	Trigger         TriggerKind     `gorm:"type:varchar(20);not null" json:"trigger"`
	Result          ExecutionResult `gorm:"type:varchar(20);not null" json:"result"`
	Message         string          `gorm:"type:text" json:"message"`
	AffectedCount   int             `json:"affected_count"`
	ExecutionTimeMs int64           `json:"execution_time_ms"`
	Metadata        datatypes.JSON  `json:"metadata,omitempty"`
	ExecutedAt      time.Time       `gorm:"not null;index:idx_job_executions_job,priority:2" json:"executed_at"`
}

// TableName specifies the table name for JobExecution
func (JobExecution) TableName() string {
	return "job_executions"
}
