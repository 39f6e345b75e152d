// Package challenge owns the artist-challenge achievement records and the
// integrity policy that keeps their two perfect flags honest against a
// moving song catalog.
//
// PerfectClear is the historical fact of a full clear and survives catalog
// growth; it is revoked only when the artist's catalog disappears entirely.
// CurrentPerfect claims the clear still covers today's catalog and dies on
// any size change, coming back only through a fresh full clear.
package challenge

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/services/history"
)

// CountProvider supplies live active-song counts per artist
type CountProvider interface {
	CountsByArtist(ctx context.Context) (map[string]int, error)
}

// Service manages challenge records and their periodic re-validation.
type Service struct {
	records repository.ChallengeStore
	counts  CountProvider
	log     *history.Log
}

// NewService creates a challenge service
func NewService(records repository.ChallengeStore, counts CountProvider, historyLog *history.Log) *Service {
	return &Service{
		records: records,
		counts:  counts,
		log:     historyLog,
	}
}

// ClearAttempt is one finished challenge run reported by the game layer
type ClearAttempt struct {
	MemberID     uint
	Artist       string
	Difficulty   model.ChallengeDifficulty
	StageLevel   *int
	TotalSongs   int
	CorrectCount int
	TimeMs       int64
}

// RecordClear upserts the record for the attempt's unique key. A full clear
// sets both perfect flags and re-anchors the recorded catalog total, which
// is the only way CurrentPerfect returns to true after an invalidation.
func (s *Service) RecordClear(ctx context.Context, attempt ClearAttempt) (*model.ChallengeRecord, error) {
	record, err := s.records.FindByKey(ctx, attempt.MemberID, attempt.Artist, attempt.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge record: %w", err)
	}
	if record == nil {
		record = &model.ChallengeRecord{
			MemberID:   attempt.MemberID,
			Artist:     attempt.Artist,
			Difficulty: attempt.Difficulty,
			StageLevel: attempt.StageLevel,
		}
	}

	record.TotalSongs = attempt.TotalSongs
	if attempt.CorrectCount > record.CorrectCount {
		record.CorrectCount = attempt.CorrectCount
	}
	if attempt.TimeMs > 0 && (record.BestTimeMs == 0 || attempt.TimeMs < record.BestTimeMs) {
		record.BestTimeMs = attempt.TimeMs
	}

	if attempt.TotalSongs > 0 && attempt.CorrectCount >= attempt.TotalSongs {
		now := time.Now()
		record.PerfectClear = true
		record.CurrentPerfect = true
		record.AchievedAt = &now
	}

	if err := s.records.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save challenge record: %w", err)
	}
	return record, nil
}

// RefreshStats summarizes one re-check pass
type RefreshStats struct {
	Processed   int
	Invalidated int
	AllDeleted  int
	Failed      int
}

// RefreshPerfects runs the full re-check policy over every record:
// an empty catalog revokes both flags, a changed catalog size revokes only
// CurrentPerfect, and an unchanged one just stamps the check time. Stage
// records are exempt from size-based invalidation. A single record's save
// failure is logged and skipped; the batch always finishes.
func (s *Service) RefreshPerfects(ctx context.Context) (RefreshStats, error) {
	var stats RefreshStats

	counts, err := s.counts.CountsByArtist(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load artist song counts: %w", err)
	}

	records, err := s.records.FindAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load challenge records: %w", err)
	}

	now := time.Now()
	for i := range records {
		record := &records[i]
		stats.Processed++

		liveCount := counts[record.Artist]

		switch {
		case liveCount == 0:
			if !record.PerfectClear && !record.CurrentPerfect {
				record.LastCheckedAt = &now
				s.save(ctx, record, &stats)
				continue
			}
			log.Printf("[CHALLENGE] Artist catalog gone, revoking perfect: artist=%s member=%d",
				record.Artist, record.MemberID)
			record.PerfectClear = false
			record.CurrentPerfect = false
			record.LastCheckedAt = &now
			if s.save(ctx, record, &stats) {
				stats.Invalidated++
				stats.AllDeleted++
			}

		case liveCount != record.TotalSongs && !record.IsStageRecord():
			if record.CurrentPerfect {
				log.Printf("[CHALLENGE] Catalog size changed, invalidating current perfect: artist=%s recorded=%d live=%d member=%d",
					record.Artist, record.TotalSongs, liveCount, record.MemberID)
				record.CurrentPerfect = false
				record.LastCheckedAt = &now
				if s.save(ctx, record, &stats) {
					stats.Invalidated++
				}
			} else {
				record.LastCheckedAt = &now
				s.save(ctx, record, &stats)
			}

		default:
			record.LastCheckedAt = &now
			s.save(ctx, record, &stats)
		}
	}

	return stats, nil
}

// CheckPerfects is the lighter daily pass over records that still hold a
// perfect flag, applying the same asymmetric policy.
func (s *Service) CheckPerfects(ctx context.Context) (RefreshStats, error) {
	var stats RefreshStats

	counts, err := s.counts.CountsByArtist(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load artist song counts: %w", err)
	}

	records, err := s.records.FindPerfects(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load perfect records: %w", err)
	}

	now := time.Now()
	for i := range records {
		record := &records[i]
		stats.Processed++

		liveCount := counts[record.Artist]

		switch {
		case liveCount == 0:
			record.PerfectClear = false
			record.CurrentPerfect = false
			record.LastCheckedAt = &now
			if s.save(ctx, record, &stats) {
				stats.Invalidated++
				stats.AllDeleted++
			}

		case liveCount != record.TotalSongs && !record.IsStageRecord() && record.CurrentPerfect:
			record.CurrentPerfect = false
			record.LastCheckedAt = &now
			if s.save(ctx, record, &stats) {
				stats.Invalidated++
			}

		default:
			// Verified unchanged; stamp the check so the daily and weekly
			// passes leave the same audit trail.
			record.LastCheckedAt = &now
			s.save(ctx, record, &stats)
		}
	}

	return stats, nil
}

// VerifyAchievedTotal checks the recorded catalog total against the history
// ledger as of the achievement instant. Used by the admin surface to audit
// suspicious records.
func (s *Service) VerifyAchievedTotal(ctx context.Context, record *model.ChallengeRecord) (bool, int, error) {
	if record.AchievedAt == nil {
		return false, 0, nil
	}
	countAtAchievement, err := s.log.ActiveCountAt(ctx, record.Artist, *record.AchievedAt)
	if err != nil {
		return false, 0, fmt.Errorf("failed to count songs at achievement time: %w", err)
	}
	return countAtAchievement == record.TotalSongs, countAtAchievement, nil
}

func (s *Service) save(ctx context.Context, record *model.ChallengeRecord, stats *RefreshStats) bool {
	if err := s.records.Save(ctx, record); err != nil {
		stats.Failed++
		log.Printf("[CHALLENGE] Failed to save record %d (artist=%s): %v", record.ID, record.Artist, err)
		return false
	}
	return true
}
