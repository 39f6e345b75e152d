// Package history maintains the append-only song catalog ledger and answers
// point-in-time questions like "how many of this artist's songs were active
// when the record was set".
package history

import (
	"context"
	"sort"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
)

// Log wraps the SongHistoryStore with the recording and counting operations
// the catalog and the jobs use.
type Log struct {
	store repository.SongHistoryStore
}

// NewLog creates a catalog history log over the given store
func NewLog(store repository.SongHistoryStore) *Log {
	return &Log{store: store}
}

// RecordAdded appends an ADDED entry for the song.
func (l *Log) RecordAdded(ctx context.Context, song *model.Song, at time.Time) error {
	return l.append(ctx, song, model.HistoryAdded, at)
}

// RecordDeleted appends a DELETED entry for the song.
func (l *Log) RecordDeleted(ctx context.Context, song *model.Song, at time.Time) error {
	return l.append(ctx, song, model.HistoryDeleted, at)
}

// RecordRestored appends a RESTORED entry for the song.
func (l *Log) RecordRestored(ctx context.Context, song *model.Song, at time.Time) error {
	return l.append(ctx, song, model.HistoryRestored, at)
}

func (l *Log) append(ctx context.Context, song *model.Song, action model.HistoryAction, at time.Time) error {
	return l.store.Append(ctx, &model.SongHistory{
		SongID:   song.ID,
		Artist:   song.Artist,
		Title:    song.Title,
		Action:   action,
		ActionAt: at,
	})
}

// ActiveCountAt returns the number of the artist's songs active at the given
// instant, answered by a single indexed query against the ledger.
func (l *Log) ActiveCountAt(ctx context.Context, artist string, at time.Time) (int, error) {
	return l.store.ActiveCountAt(ctx, artist, at)
}

// PruneOlderThan deletes ledger entries past the retention window.
func (l *Log) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return l.store.DeleteOlderThan(ctx, cutoff)
}

// CountActive replays entries up to the given instant and counts songs whose
// most recent qualifying action is ADDED or RESTORED. It is the in-memory
// reference for the SQL in the store and backs the test fakes.
func CountActive(entries []model.SongHistory, at time.Time) int {
	sorted := make([]model.SongHistory, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ActionAt.Before(sorted[j].ActionAt)
	})

	active := make(map[uint]bool)
	for _, entry := range sorted {
		if entry.ActionAt.After(at) {
			break
		}
		switch entry.Action {
		case model.HistoryAdded, model.HistoryRestored:
			active[entry.SongID] = true
		case model.HistoryDeleted:
			active[entry.SongID] = false
		}
	}

	count := 0
	for _, isActive := range active {
		if isActive {
			count++
		}
	}
	return count
}
