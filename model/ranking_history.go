package model

import (
	"time"
)

// RankingPeriod is the reset cadence a snapshot belongs to
type RankingPeriod string

const (
	PeriodWeekly  RankingPeriod = "WEEKLY"
	PeriodMonthly RankingPeriod = "MONTHLY"
)

// RankingType identifies which leaderboard a snapshot row came from
type RankingType string

const (
	RankingWeeklyScore RankingType = "WEEKLY_SCORE"
	RankingMultiTier   RankingType = "MULTI_TIER"
	RankingMultiWins   RankingType = "MULTI_WINS"
)

// RankingHistory preserves a leaderboard position before the periodic reset
// wipes the live counters. One row per member per board per period.
type RankingHistory struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	PeriodType  RankingPeriod `gorm:"type:varchar(20);not null;index:idx_ranking_histories_period,priority:1" json:"period_type"`
	RankingType RankingType   `gorm:"type:varchar(30);not null;index:idx_ranking_histories_period,priority:2" json:"ranking_type"`
	PeriodStart time.Time     `gorm:"not null;index:idx_ranking_histories_period,priority:3" json:"period_start"`
	PeriodEnd   time.Time     `gorm:"not null" json:"period_end"`

	MemberID uint   `gorm:"not null" json:"member_id"`
	Nickname string `gorm:"type:varchar(50);not null" json:"nickname"`
	Rank     int    `gorm:"not null" json:"rank"`
	Score    int    `json:"score"`
	Tier     Tier   `gorm:"type:varchar(20)" json:"tier"`
	Points   int    `json:"points"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for RankingHistory
func (RankingHistory) TableName() string {
	return "ranking_histories"
}
