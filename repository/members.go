package repository

import (
	"context"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"gorm.io/gorm"
)

// MemberStore exposes the profile reads and rating writes the jobs need
type MemberStore interface {
	FindIdleSince(ctx context.Context, threshold time.Time) ([]model.Member, error)
	Save(ctx context.Context, member *model.Member) error
	TopByWeeklyScore(ctx context.Context, limit int) ([]model.Member, error)
	TopByTier(ctx context.Context, limit int) ([]model.Member, error)
	TopByWins(ctx context.Context, limit int) ([]model.Member, error)
}

type gormMemberStore struct {
	db *gorm.DB
}

// NewMemberStore creates a GORM-backed MemberStore
func NewMemberStore(db *gorm.DB) MemberStore {
	return &gormMemberStore{db: db}
}

// FindIdleSince returns members whose last multiplayer game predates the
// threshold. Members who never played are not decay candidates.
func (s *gormMemberStore) FindIdleSince(ctx context.Context, threshold time.Time) ([]model.Member, error) {
	var members []model.Member
	err := s.db.WithContext(ctx).
		Where("last_multi_played_at IS NOT NULL AND last_multi_played_at < ?", threshold).
		Find(&members).Error
	return members, err
}

// Save writes the member row inside its own transaction; tier and points
// must never be subject to lost updates between concurrent jobs.
func (s *gormMemberStore) Save(ctx context.Context, member *model.Member) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(member).Error
	})
}

func (s *gormMemberStore) TopByWeeklyScore(ctx context.Context, limit int) ([]model.Member, error) {
	var members []model.Member
	err := s.db.WithContext(ctx).
		Where("weekly_score > 0").
		Order("weekly_score DESC").
		Limit(limit).
		Find(&members).Error
	return members, err
}

func (s *gormMemberStore) TopByTier(ctx context.Context, limit int) ([]model.Member, error) {
	var members []model.Member
	err := s.db.WithContext(ctx).
		Where("multi_games > 0").
		Order(`CASE tier
			WHEN 'CHALLENGER' THEN 6
			WHEN 'MASTER' THEN 5
			WHEN 'DIAMOND' THEN 4
			WHEN 'PLATINUM' THEN 3
			WHEN 'GOLD' THEN 2
			WHEN 'SILVER' THEN 1
			ELSE 0 END DESC, tier_points DESC`).
		Limit(limit).
		Find(&members).Error
	return members, err
}

func (s *gormMemberStore) TopByWins(ctx context.Context, limit int) ([]model.Member, error) {
	var members []model.Member
	err := s.db.WithContext(ctx).
		Where("multi_wins > 0").
		Order("multi_wins DESC").
		Limit(limit).
		Find(&members).Error
	return members, err
}
