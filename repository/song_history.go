package repository

import (
	"context"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"gorm.io/gorm"
)

// SongHistoryStore is the append-only catalog event ledger
type SongHistoryStore interface {
	Append(ctx context.Context, entry *model.SongHistory) error
	FindBySong(ctx context.Context, songID uint) ([]model.SongHistory, error)
	FindByArtist(ctx context.Context, artist string) ([]model.SongHistory, error)
	ActiveCountAt(ctx context.Context, artist string, at time.Time) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type gormSongHistoryStore struct {
	db *gorm.DB
}

// NewSongHistoryStore creates a GORM-backed SongHistoryStore
func NewSongHistoryStore(db *gorm.DB) SongHistoryStore {
	return &gormSongHistoryStore{db: db}
}

func (s *gormSongHistoryStore) Append(ctx context.Context, entry *model.SongHistory) error {
	if entry.ActionAt.IsZero() {
		entry.ActionAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *gormSongHistoryStore) FindBySong(ctx context.Context, songID uint) ([]model.SongHistory, error) {
	var entries []model.SongHistory
	err := s.db.WithContext(ctx).
		Where("song_id = ?", songID).
		Order("action_at DESC").
		Find(&entries).Error
	return entries, err
}

func (s *gormSongHistoryStore) FindByArtist(ctx context.Context, artist string) ([]model.SongHistory, error) {
	var entries []model.SongHistory
	err := s.db.WithContext(ctx).
		Where("artist = ?", artist).
		Order("action_at DESC").
		Find(&entries).Error
	return entries, err
}

// ActiveCountAt counts the songs under artist that were active at the given
// instant: added at or before it, and whose most recent DELETED (if any) is
// followed by a RESTORED that is also at or before it. One indexed query, no
// in-memory replay; correct across repeated delete/restore cycles.
func (s *gormSongHistoryStore) ActiveCountAt(ctx context.Context, artist string, at time.Time) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT h1.song_id)
		FROM song_histories h1
		WHERE h1.artist = ?
		  AND h1.action = 'ADDED'
		  AND h1.action_at <= ?
		  AND NOT EXISTS (
		      SELECT 1 FROM song_histories h2
		      WHERE h2.song_id = h1.song_id
		        AND h2.action = 'DELETED'
		        AND h2.action_at <= ?
		        AND NOT EXISTS (
		            SELECT 1 FROM song_histories h3
		            WHERE h3.song_id = h2.song_id
		              AND h3.action = 'RESTORED'
		              AND h3.action_at > h2.action_at
		              AND h3.action_at <= ?
		        )
		  )`, artist, at, at, at).Scan(&count).Error
	return int(count), err
}

func (s *gormSongHistoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("action_at < ?", cutoff).
		Delete(&model.SongHistory{})
	return result.RowsAffected, result.Error
}
