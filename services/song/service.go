// Package song serves catalog lookups shared by the integrity jobs, with a
// Redis cache in front of the per-artist count aggregation.
package song

import (
	"context"
	"log"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/utils/cache"
)

const (
	artistCountsKey = "songs:artist_counts"
	artistCountsTTL = 10 * time.Minute
)

// Service answers catalog count queries for the challenge re-check jobs.
type Service struct {
	songs repository.SongStore
	cache *cache.RedisCache
}

// NewService creates a song service. The cache may be nil, in which case
// every query hits the database.
func NewService(songs repository.SongStore, redisCache *cache.RedisCache) *Service {
	return &Service{
		songs: songs,
		cache: redisCache,
	}
}

// CountsByArtist returns the live active-song count per artist, cached for a
// short window since the nightly jobs all ask the same question.
func (s *Service) CountsByArtist(ctx context.Context) (map[string]int, error) {
	if s.cache != nil {
		var counts map[string]int
		if err := s.cache.GetJSON(ctx, artistCountsKey, &counts); err == nil {
			return counts, nil
		}
	}

	counts, err := s.songs.CountActiveByArtist(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, artistCountsKey, counts, artistCountsTTL); err != nil {
			log.Printf("[SONG] Failed to cache artist counts: %v", err)
		}
	}

	return counts, nil
}

// InvalidateCounts drops the cached counts after a job changes song
// activation state.
func (s *Service) InvalidateCounts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, artistCountsKey); err != nil {
		log.Printf("[SONG] Failed to invalidate artist counts cache: %v", err)
	}
}
