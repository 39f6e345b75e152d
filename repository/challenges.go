package repository

import (
	"context"
	"errors"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"gorm.io/gorm"
)

// ChallengeStore holds the per-member artist challenge records
type ChallengeStore interface {
	FindAll(ctx context.Context) ([]model.ChallengeRecord, error)
	FindPerfects(ctx context.Context) ([]model.ChallengeRecord, error)
	FindByKey(ctx context.Context, memberID uint, artist string, difficulty model.ChallengeDifficulty) (*model.ChallengeRecord, error)
	Save(ctx context.Context, record *model.ChallengeRecord) error
}

type gormChallengeStore struct {
	db *gorm.DB
}

// NewChallengeStore creates a GORM-backed ChallengeStore
func NewChallengeStore(db *gorm.DB) ChallengeStore {
	return &gormChallengeStore{db: db}
}

func (s *gormChallengeStore) FindAll(ctx context.Context) ([]model.ChallengeRecord, error) {
	var records []model.ChallengeRecord
	err := s.db.WithContext(ctx).Find(&records).Error
	return records, err
}

func (s *gormChallengeStore) FindPerfects(ctx context.Context) ([]model.ChallengeRecord, error) {
	var records []model.ChallengeRecord
	err := s.db.WithContext(ctx).
		Where("perfect_clear = ? OR current_perfect = ?", true, true).
		Find(&records).Error
	return records, err
}

func (s *gormChallengeStore) FindByKey(ctx context.Context, memberID uint, artist string, difficulty model.ChallengeDifficulty) (*model.ChallengeRecord, error) {
	var record model.ChallengeRecord
	err := s.db.WithContext(ctx).
		Where("member_id = ? AND artist = ? AND difficulty = ?", memberID, artist, difficulty).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Save writes the record inside its own transaction so a scheduled re-check
// and a manual trigger racing on the same row cannot interleave flag writes.
func (s *gormChallengeStore) Save(ctx context.Context, record *model.ChallengeRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(record).Error
	})
}
