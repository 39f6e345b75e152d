package model

import (
	"time"
)

// ChallengeDifficulty scopes an artist challenge record
type ChallengeDifficulty string

const (
	DifficultyNormal   ChallengeDifficulty = "NORMAL"
	DifficultyHardcore ChallengeDifficulty = "HARDCORE"
)

// ChallengeRecord tracks one member's full-clear attempt for an artist's
// catalog. PerfectClear is the historical fact that the catalog was cleared
// at AchievedAt with TotalSongs songs; it survives later catalog growth and
// is revoked only when the artist's entire catalog disappears.
// CurrentPerfect is the live claim that the clear still covers today's
// catalog; any size change invalidates it until a fresh full clear.
//
// StageLevel, when set, marks a fixed-threshold stage record (20/25/30
// songs); those are exempt from size-based invalidation.
type ChallengeRecord struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	MemberID   uint                `gorm:"not null;uniqueIndex:uk_member_artist_difficulty,priority:1" json:"member_id"`
	Artist     string              `gorm:"type:varchar(100);not null;uniqueIndex:uk_member_artist_difficulty,priority:2" json:"artist"`
	Difficulty ChallengeDifficulty `gorm:"type:varchar(20);not null;default:'HARDCORE';uniqueIndex:uk_member_artist_difficulty,priority:3" json:"difficulty"`
	StageLevel *int                `json:"stage_level"`

	TotalSongs   int   `gorm:"not null" json:"total_songs"`
	CorrectCount int   `gorm:"not null;default:0" json:"correct_count"`
	BestTimeMs   int64 `json:"best_time_ms"`

	PerfectClear   bool `gorm:"not null;default:false" json:"perfect_clear"`
	CurrentPerfect bool `gorm:"not null;default:false" json:"current_perfect"`

	AchievedAt    *time.Time `json:"achieved_at"`
	LastCheckedAt *time.Time `json:"last_checked_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

// TableName specifies the table name for ChallengeRecord
func (ChallengeRecord) TableName() string {
	return "challenge_records"
}

// IsStageRecord reports whether this record targets a fixed stage threshold
// rather than the artist's whole catalog.
func (r *ChallengeRecord) IsStageRecord() bool {
	return r.StageLevel != nil && *r.StageLevel >= 1
}

// ClearRate returns the correct-answer percentage against the recorded total.
func (r *ChallengeRecord) ClearRate() float64 {
	if r.TotalSongs == 0 {
		return 0
	}
	return float64(r.CorrectCount) / float64(r.TotalSongs) * 100
}
