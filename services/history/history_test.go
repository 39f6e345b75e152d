package history

import (
	"context"
	"testing"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return base.Add(time.Duration(hours) * time.Hour)
}

func entry(songID uint, action model.HistoryAction, hours int) model.SongHistory {
	return model.SongHistory{
		SongID:   songID,
		Artist:   "IU",
		Action:   action,
		ActionAt: at(hours),
	}
}

func TestCountActiveSingleLifecycle(t *testing.T) {
	entries := []model.SongHistory{
		entry(1, model.HistoryAdded, 0),
		entry(1, model.HistoryDeleted, 10),
		entry(1, model.HistoryRestored, 20),
	}

	assert.Equal(t, 0, CountActive(entries, at(-1)), "before the add")
	assert.Equal(t, 1, CountActive(entries, at(0)), "at the add instant")
	assert.Equal(t, 1, CountActive(entries, at(5)), "between add and delete")
	assert.Equal(t, 0, CountActive(entries, at(10)), "at the delete instant")
	assert.Equal(t, 0, CountActive(entries, at(15)), "between delete and restore")
	assert.Equal(t, 1, CountActive(entries, at(20)), "at the restore instant")
	assert.Equal(t, 1, CountActive(entries, at(100)), "long after")
}

func TestCountActiveRepeatedDeleteRestoreCycles(t *testing.T) {
	// One song deleted and restored twice: the most recent qualifying
	// action decides, however many cycles came before.
	entries := []model.SongHistory{
		entry(1, model.HistoryAdded, 0),
		entry(1, model.HistoryDeleted, 1),
		entry(1, model.HistoryRestored, 2),
		entry(1, model.HistoryDeleted, 3),
		entry(1, model.HistoryRestored, 4),
		entry(1, model.HistoryDeleted, 5),
	}

	want := []int{1, 0, 1, 0, 1, 0}
	for hours, expected := range want {
		assert.Equal(t, expected, CountActive(entries, at(hours)), "t=+%dh", hours)
	}
	assert.Equal(t, 0, CountActive(entries, at(6)))
}

func TestCountActiveMultipleSongs(t *testing.T) {
	entries := []model.SongHistory{
		entry(1, model.HistoryAdded, 0),
		entry(2, model.HistoryAdded, 1),
		entry(3, model.HistoryAdded, 2),
		entry(2, model.HistoryDeleted, 3),
		entry(3, model.HistoryDeleted, 4),
		entry(2, model.HistoryRestored, 5),
	}

	assert.Equal(t, 1, CountActive(entries, at(0)))
	assert.Equal(t, 3, CountActive(entries, at(2)))
	assert.Equal(t, 2, CountActive(entries, at(3)))
	assert.Equal(t, 1, CountActive(entries, at(4)))
	assert.Equal(t, 2, CountActive(entries, at(5)))
}

func TestCountActiveUnorderedInput(t *testing.T) {
	// The replay must not depend on insertion order.
	entries := []model.SongHistory{
		entry(1, model.HistoryRestored, 20),
		entry(1, model.HistoryAdded, 0),
		entry(1, model.HistoryDeleted, 10),
	}

	assert.Equal(t, 1, CountActive(entries, at(15).Add(6*time.Hour)))
	assert.Equal(t, 0, CountActive(entries, at(15)))
}

func TestCountActiveEmpty(t *testing.T) {
	assert.Equal(t, 0, CountActive(nil, at(0)))
}

type appendOnlyStore struct {
	entries []model.SongHistory
}

func (s *appendOnlyStore) Append(ctx context.Context, entry *model.SongHistory) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *appendOnlyStore) FindBySong(ctx context.Context, songID uint) ([]model.SongHistory, error) {
	return nil, nil
}

func (s *appendOnlyStore) FindByArtist(ctx context.Context, artist string) ([]model.SongHistory, error) {
	return s.entries, nil
}

func (s *appendOnlyStore) ActiveCountAt(ctx context.Context, artist string, atTime time.Time) (int, error) {
	return CountActive(s.entries, atTime), nil
}

func (s *appendOnlyStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestLogRecordAndCount(t *testing.T) {
	store := &appendOnlyStore{}
	log := NewLog(store)
	ctx := context.Background()
	song := &model.Song{ID: 7, Artist: "IU", Title: "Palette"}

	require.NoError(t, log.RecordAdded(ctx, song, at(0)))
	require.NoError(t, log.RecordDeleted(ctx, song, at(1)))
	require.NoError(t, log.RecordRestored(ctx, song, at(2)))

	require.Len(t, store.entries, 3)
	assert.Equal(t, model.HistoryAdded, store.entries[0].Action)
	assert.Equal(t, "IU", store.entries[0].Artist)
	assert.Equal(t, "Palette", store.entries[0].Title)

	count, err := log.ActiveCountAt(ctx, "IU", at(1))
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = log.ActiveCountAt(ctx, "IU", at(2))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
