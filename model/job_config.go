package model

import (
	"time"
)

// JobPriority orders jobs in the admin listing
type JobPriority string

const (
	JobPriorityHigh   JobPriority = "HIGH"
	JobPriorityMedium JobPriority = "MEDIUM"
	JobPriorityLow    JobPriority = "LOW"
)

// JobConfig is the authoritative configuration row for one recurring job.
// Rows are seeded at deploy time and edited by admins; the scheduler reads
// them on every refresh and only registers jobs that are both implemented
// and enabled.
type JobConfig struct {
	JobID          string      `gorm:"primaryKey;type:varchar(50)" json:"job_id"`
	Name           string      `gorm:"type:varchar(100);not null" json:"name"`
	Description    string      `gorm:"type:varchar(500)" json:"description"`
	CronExpression string      `gorm:"type:varchar(100);not null" json:"cron_expression"`
	ScheduleText   string      `gorm:"type:varchar(50)" json:"schedule_text"`
	TargetEntity   string      `gorm:"type:varchar(50)" json:"target_entity"`
	Priority       JobPriority `gorm:"type:varchar(20);default:'MEDIUM'" json:"priority"`
	Enabled        bool        `gorm:"not null;default:true" json:"enabled"`
	Implemented    bool        `gorm:"not null;default:false" json:"implemented"`

	// Snapshot of the most recent run, denormalized for the admin listing.
	LastExecutedAt      *time.Time      `json:"last_executed_at"`
	LastResult          ExecutionResult `gorm:"type:varchar(20)" json:"last_result"`
	LastResultMessage   string          `gorm:"type:text" json:"last_result_message"`
	LastAffectedCount   int             `json:"last_affected_count"`
	LastExecutionTimeMs int64           `json:"last_execution_time_ms"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for JobConfig
func (JobConfig) TableName() string {
	return "job_configs"
}

// RecordExecution updates the last-run snapshot fields.
func (c *JobConfig) RecordExecution(result ExecutionResult, message string, affected int, durationMs int64) {
	now := time.Now()
	c.LastExecutedAt = &now
	c.LastResult = result
	c.LastResultMessage = message
	c.LastAffectedCount = affected
	c.LastExecutionTimeMs = durationMs
}
