package repository

import (
	"context"
	"errors"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"gorm.io/gorm"
)

// SongStore exposes the catalog reads and the activation writes jobs need
type SongStore interface {
	FindByID(ctx context.Context, id uint) (*model.Song, error)
	FindActiveWithVideo(ctx context.Context) ([]model.Song, error)
	FindActiveWithFile(ctx context.Context) ([]model.Song, error)
	FindDuplicateVideoIDs(ctx context.Context) ([]string, error)
	FindActiveByVideoID(ctx context.Context, videoID string) ([]model.Song, error)
	CountActiveByArtist(ctx context.Context) (map[string]int, error)
	SetActive(ctx context.Context, songID uint, active bool) error
}

type gormSongStore struct {
	db *gorm.DB
}

// NewSongStore creates a GORM-backed SongStore
func NewSongStore(db *gorm.DB) SongStore {
	return &gormSongStore{db: db}
}

func (s *gormSongStore) FindByID(ctx context.Context, id uint) (*model.Song, error) {
	var song model.Song
	err := s.db.WithContext(ctx).First(&song, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &song, nil
}

func (s *gormSongStore) FindActiveWithVideo(ctx context.Context) ([]model.Song, error) {
	var songs []model.Song
	err := s.db.WithContext(ctx).
		Where("active = ? AND youtube_video_id <> ''", true).
		Find(&songs).Error
	return songs, err
}

func (s *gormSongStore) FindActiveWithFile(ctx context.Context) ([]model.Song, error) {
	var songs []model.Song
	err := s.db.WithContext(ctx).
		Where("active = ? AND file_path <> ''", true).
		Find(&songs).Error
	return songs, err
}

// FindDuplicateVideoIDs returns video ids attached to more than one active
// song.
func (s *gormSongStore) FindDuplicateVideoIDs(ctx context.Context) ([]string, error) {
	var videoIDs []string
	err := s.db.WithContext(ctx).Model(&model.Song{}).
		Where("active = ? AND youtube_video_id <> ''", true).
		Select("youtube_video_id").
		Group("youtube_video_id").
		Having("COUNT(*) > 1").
		Pluck("youtube_video_id", &videoIDs).Error
	return videoIDs, err
}

func (s *gormSongStore) FindActiveByVideoID(ctx context.Context, videoID string) ([]model.Song, error) {
	var songs []model.Song
	err := s.db.WithContext(ctx).
		Where("active = ? AND youtube_video_id = ?", true, videoID).
		Order("id ASC").
		Find(&songs).Error
	return songs, err
}

func (s *gormSongStore) CountActiveByArtist(ctx context.Context) (map[string]int, error) {
	type row struct {
		Artist string
		Count  int
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&model.Song{}).
		Where("active = ?", true).
		Select("artist, COUNT(*) AS count").
		Group("artist").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Artist] = r.Count
	}
	return counts, nil
}

func (s *gormSongStore) SetActive(ctx context.Context, songID uint, active bool) error {
	return s.db.WithContext(ctx).Model(&model.Song{}).
		Where("id = ?", songID).
		Update("active", active).Error
}
