package song

import (
	"context"
	"testing"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository/repositorytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsByArtistWithoutCache(t *testing.T) {
	songs := repositorytest.NewSongs(
		model.Song{ID: 1, Artist: "IU", Active: true},
		model.Song{ID: 2, Artist: "IU", Active: true},
		model.Song{ID: 3, Artist: "IU", Active: false},
		model.Song{ID: 4, Artist: "BTS", Active: true},
	)
	svc := NewService(songs, nil)

	counts, err := svc.CountsByArtist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts["IU"])
	assert.Equal(t, 1, counts["BTS"])
	assert.NotContains(t, counts, "missing")
}

func TestInvalidateCountsWithoutCacheIsNoop(t *testing.T) {
	svc := NewService(repositorytest.NewSongs(), nil)
	svc.InvalidateCounts(context.Background())
}
