package repository

import (
	"context"
	"errors"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"gorm.io/gorm"
)

// AffectedSongFilter narrows the paginated affected-song listing
type AffectedSongFilter struct {
	JobID    string
	Restored *bool
	Keyword  string
	Page     int
	PerPage  int
}

// AffectedSongStore is the audit-plus-undo ledger for songs a job deactivated
type AffectedSongStore interface {
	Create(ctx context.Context, affected *model.AffectedSong) error
	FindByID(ctx context.Context, id uint) (*model.AffectedSong, error)
	FindByExecution(ctx context.Context, executionID uint) ([]model.AffectedSong, error)
	FindUnrestoredByJob(ctx context.Context, jobID string) ([]model.AffectedSong, error)
	Save(ctx context.Context, affected *model.AffectedSong) error
	Search(ctx context.Context, filter AffectedSongFilter) ([]model.AffectedSong, int64, error)
}

type gormAffectedSongStore struct {
	db *gorm.DB
}

// NewAffectedSongStore creates a GORM-backed AffectedSongStore
func NewAffectedSongStore(db *gorm.DB) AffectedSongStore {
	return &gormAffectedSongStore{db: db}
}

func (s *gormAffectedSongStore) Create(ctx context.Context, affected *model.AffectedSong) error {
	return s.db.WithContext(ctx).Create(affected).Error
}

func (s *gormAffectedSongStore) FindByID(ctx context.Context, id uint) (*model.AffectedSong, error) {
	var affected model.AffectedSong
	err := s.db.WithContext(ctx).Preload("Song").First(&affected, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &affected, nil
}

func (s *gormAffectedSongStore) FindByExecution(ctx context.Context, executionID uint) ([]model.AffectedSong, error) {
	var affected []model.AffectedSong
	err := s.db.WithContext(ctx).
		Where("execution_id = ?", executionID).
		Order("id DESC").
		Find(&affected).Error
	return affected, err
}

func (s *gormAffectedSongStore) FindUnrestoredByJob(ctx context.Context, jobID string) ([]model.AffectedSong, error) {
	var affected []model.AffectedSong
	err := s.db.WithContext(ctx).
		Where("job_id = ? AND restored = ?", jobID, false).
		Order("id DESC").
		Find(&affected).Error
	return affected, err
}

func (s *gormAffectedSongStore) Save(ctx context.Context, affected *model.AffectedSong) error {
	return s.db.WithContext(ctx).Save(affected).Error
}

func (s *gormAffectedSongStore) Search(ctx context.Context, filter AffectedSongFilter) ([]model.AffectedSong, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.AffectedSong{}).
		Joins("JOIN songs ON songs.id = affected_songs.song_id")

	if filter.JobID != "" {
		query = query.Where("affected_songs.job_id = ?", filter.JobID)
	}
	if filter.Restored != nil {
		query = query.Where("affected_songs.restored = ?", *filter.Restored)
	}
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("songs.artist ILIKE ? OR songs.title ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var affected []model.AffectedSong
	err := query.Preload("Song").
		Order("affected_songs.id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&affected).Error
	return affected, total, err
}
