package batch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/services/history"
)

// CountInvalidator drops cached per-artist song counts after activation
// changes, so the integrity jobs never re-check against stale totals.
// Satisfied by song.Service.
type CountInvalidator interface {
	InvalidateCounts(ctx context.Context)
}

// Service is the ledger service jobs and the admin surface share: jobs call
// Deactivate to take songs out of rotation with an audit trail, admins call
// the restore and search operations to review and undo those changes.
type Service struct {
	affected   repository.AffectedSongStore
	executions repository.ExecutionStore
	songs      repository.SongStore
	history    *history.Log
	counts     CountInvalidator
}

// NewService creates the batch ledger service. counts may be nil when no
// cache is in front of the song counts.
func NewService(
	affected repository.AffectedSongStore,
	executions repository.ExecutionStore,
	songs repository.SongStore,
	historyLog *history.Log,
	counts CountInvalidator,
) *Service {
	return &Service{
		affected:   affected,
		executions: executions,
		songs:      songs,
		history:    historyLog,
		counts:     counts,
	}
}

func (s *Service) invalidateCounts(ctx context.Context) {
	if s.counts != nil {
		s.counts.InvalidateCounts(ctx)
	}
}

// Deactivate takes a song out of rotation, writes the affected-song ledger
// row under the given execution, and appends a DELETED history event.
func (s *Service) Deactivate(ctx context.Context, exec *model.JobExecution, song *model.Song, reason model.AffectedReason, detail string) error {
	if err := s.songs.SetActive(ctx, song.ID, false); err != nil {
		return fmt.Errorf("failed to deactivate song %d: %w", song.ID, err)
	}
	s.invalidateCounts(ctx)

	entry := &model.AffectedSong{
		ExecutionID:  exec.ID,
		JobID:        exec.JobID,
		SongID:       song.ID,
		Action:       model.ActionDeactivated,
		Reason:       reason,
		ReasonDetail: detail,
	}
	if err := s.affected.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record affected song %d: %w", song.ID, err)
	}

	if err := s.history.RecordDeleted(ctx, song, time.Now()); err != nil {
		// The ledger row already exists; a missing history event is
		// recoverable from it, so log and keep going.
		log.Printf("[BATCH] Failed to append history for song %d: %v", song.ID, err)
	}
	return nil
}

// RestoreSong undoes one affected-song entry: reactivates the song, marks
// the entry restored with the acting admin, and appends a RESTORED history
// event. Returns false without error for an unknown or already-restored
// entry, so repeated calls are safe; errors are reserved for storage
// failures.
func (s *Service) RestoreSong(ctx context.Context, affectedID uint, actor string) (bool, error) {
	entry, err := s.affected.FindByID(ctx, affectedID)
	if err != nil {
		return false, fmt.Errorf("failed to load affected song %d: %w", affectedID, err)
	}
	if entry == nil {
		log.Printf("[BATCH] Restore requested for unknown affected song %d", affectedID)
		return false, nil
	}
	return s.restore(ctx, entry, actor)
}

// RestoreAllByExecution restores every unrestored entry of one execution.
// Already-restored entries are skipped, so re-running after a partial
// failure resumes where the previous call stopped.
func (s *Service) RestoreAllByExecution(ctx context.Context, executionID uint, actor string) (int, error) {
	entries, err := s.affected.FindByExecution(ctx, executionID)
	if err != nil {
		return 0, fmt.Errorf("failed to load affected songs for execution %d: %w", executionID, err)
	}
	return s.restoreAll(ctx, entries, actor)
}

// RestoreAllByJob restores every unrestored entry the job ever created,
// across all of its executions.
func (s *Service) RestoreAllByJob(ctx context.Context, jobID string, actor string) (int, error) {
	entries, err := s.affected.FindUnrestoredByJob(ctx, jobID)
	if err != nil {
		return 0, fmt.Errorf("failed to load affected songs for job %s: %w", jobID, err)
	}
	return s.restoreAll(ctx, entries, actor)
}

func (s *Service) restoreAll(ctx context.Context, entries []model.AffectedSong, actor string) (int, error) {
	restored := 0
	for i := range entries {
		ok, err := s.restore(ctx, &entries[i], actor)
		if err != nil {
			return restored, err
		}
		if ok {
			restored++
		}
	}
	return restored, nil
}

func (s *Service) restore(ctx context.Context, entry *model.AffectedSong, actor string) (bool, error) {
	if entry.Restored {
		return false, nil
	}

	song, err := s.songs.FindByID(ctx, entry.SongID)
	if err != nil {
		return false, fmt.Errorf("failed to load song %d: %w", entry.SongID, err)
	}
	if song == nil {
		log.Printf("[BATCH] Song %d for affected entry %d no longer exists", entry.SongID, entry.ID)
		return false, nil
	}

	if err := s.songs.SetActive(ctx, song.ID, true); err != nil {
		return false, fmt.Errorf("failed to reactivate song %d: %w", song.ID, err)
	}
	s.invalidateCounts(ctx)

	entry.MarkRestored(actor)
	if err := s.affected.Save(ctx, entry); err != nil {
		return false, fmt.Errorf("failed to mark affected song %d restored: %w", entry.ID, err)
	}

	if err := s.history.RecordRestored(ctx, song, time.Now()); err != nil {
		log.Printf("[BATCH] Failed to append restore history for song %d: %v", song.ID, err)
	}

	log.Printf("[BATCH] Restored song %d (affected=%d) by %s", song.ID, entry.ID, actor)
	return true, nil
}

// SearchAffected pages through the affected-song ledger with optional
// job, restored-state, and keyword filters.
func (s *Service) SearchAffected(ctx context.Context, filter repository.AffectedSongFilter) ([]model.AffectedSong, int64, error) {
	return s.affected.Search(ctx, filter)
}

// RecentExecutions returns the newest executions of one job, newest first.
func (s *Service) RecentExecutions(ctx context.Context, jobID string, limit int) ([]model.JobExecution, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.executions.RecentByJob(ctx, jobID, limit)
}

// PruneExecutions deletes execution rows older than the cutoff.
func (s *Service) PruneExecutions(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.executions.DeleteOlderThan(ctx, cutoff)
}
