package model

import (
	"time"
)

// AffectedAction is the kind of change a job applied to a song
type AffectedAction string

const (
	ActionDeactivated AffectedAction = "DEACTIVATED"
	ActionReactivated AffectedAction = "REACTIVATED"
)

// AffectedReason is the closed set of causes for a job deactivating a song
type AffectedReason string

const (
	ReasonDuplicateSong    AffectedReason = "DUPLICATE_SONG"
	ReasonVideoUnavailable AffectedReason = "VIDEO_UNAVAILABLE"
	ReasonEmbedDisabled    AffectedReason = "EMBED_DISABLED"
	ReasonFileMissing      AffectedReason = "FILE_MISSING"
)

// AffectedSong links a JobExecution to a song it deactivated, with enough
// detail to audit and undo the change. Invariant: Restored implies
// RestoredAt and RestoredBy are set; unrestored rows carry neither.
type AffectedSong struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ExecutionID  uint           `gorm:"not null;index:idx_affected_songs_execution" json:"execution_id"`
	JobID        string         `gorm:"type:varchar(50);not null;index:idx_affected_songs_job" json:"job_id"`
	SongID       uint           `gorm:"not null" json:"song_id"`
	Action       AffectedAction `gorm:"type:varchar(20);not null" json:"action"`
	Reason       AffectedReason `gorm:"type:varchar(30);not null" json:"reason"`
	ReasonDetail string         `gorm:"type:varchar(500)" json:"reason_detail"`
	Restored     bool           `gorm:"not null;default:false;index:idx_affected_songs_restored" json:"restored"`
	RestoredAt   *time.Time     `json:"restored_at"`
	RestoredBy   string         `gorm:"type:varchar(100)" json:"restored_by"`
	CreatedAt    time.Time      `json:"created_at"`

	Song Song `gorm:"foreignKey:SongID" json:"song"`
}

// TableName specifies the table name for AffectedSong
func (AffectedSong) TableName() string {
	return "affected_songs"
}

// MarkRestored flips the restore flag and stamps the actor and time.
func (a *AffectedSong) MarkRestored(actor string) {
	now := time.Now()
	a.Restored = true
	a.RestoredAt = &now
	a.RestoredBy = actor
}
