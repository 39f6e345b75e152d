package repository

import (
	"context"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"gorm.io/gorm"
)

// RankingHistoryStore archives leaderboard snapshots before periodic resets
type RankingHistoryStore interface {
	SnapshotExists(ctx context.Context, period model.RankingPeriod, rankingType model.RankingType, start, end time.Time) (bool, error)
	CreateBatch(ctx context.Context, entries []model.RankingHistory) error
}

type gormRankingHistoryStore struct {
	db *gorm.DB
}

// NewRankingHistoryStore creates a GORM-backed RankingHistoryStore
func NewRankingHistoryStore(db *gorm.DB) RankingHistoryStore {
	return &gormRankingHistoryStore{db: db}
}

func (s *gormRankingHistoryStore) SnapshotExists(ctx context.Context, period model.RankingPeriod, rankingType model.RankingType, start, end time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.RankingHistory{}).
		Where("period_type = ? AND ranking_type = ? AND period_start = ? AND period_end = ?",
			period, rankingType, start, end).
		Count(&count).Error
	return count > 0, err
}

func (s *gormRankingHistoryStore) CreateBatch(ctx context.Context, entries []model.RankingHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(entries, 100).Error
}
