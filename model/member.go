package model

import (
	"gorm.io/gorm"
	"time"
)

// Member is the subset of a player profile the job layer reads and writes:
// competitive tier state, multiplayer counters and activity timestamps.
type Member struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Nickname string `gorm:"type:varchar(50);not null;uniqueIndex" json:"nickname"`

	Tier       Tier `gorm:"type:varchar(20);not null;default:'BRONZE'" json:"tier"`
	TierPoints int  `gorm:"not null;default:0" json:"tier_points"`

	MultiGames int `gorm:"not null;default:0" json:"multi_games"`
	MultiWins  int `gorm:"not null;default:0" json:"multi_wins"`
	MultiTop3  int `gorm:"not null;default:0" json:"multi_top3"`

	WeeklyScore int `gorm:"not null;default:0" json:"weekly_score"`

	LastMultiPlayedAt *time.Time `json:"last_multi_played_at"`
	TierUpdatedAt     *time.Time `json:"tier_updated_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for Member
func (Member) TableName() string {
	return "members"
}

// UpdateMultiRankStats bumps the per-game counters for one finished match.
func (m *Member) UpdateMultiRankStats(rank int) {
	m.MultiGames++
	if rank == 1 {
		m.MultiWins++
	}
	if rank <= 3 {
		m.MultiTop3++
	}
}
