package batch

import (
	"context"
	"fmt"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
)

// DuplicateCheckJob finds active songs sharing a video id. The oldest song
// (lowest id) keeps the video, every later duplicate is deactivated with a
// pointer to the survivor in the audit detail.
type DuplicateCheckJob struct {
	songs  repository.SongStore
	ledger *Service
}

// NewDuplicateCheckJob creates the duplicate-video cleanup job
func NewDuplicateCheckJob(songs repository.SongStore, ledger *Service) *DuplicateCheckJob {
	return &DuplicateCheckJob{songs: songs, ledger: ledger}
}

func (j *DuplicateCheckJob) ID() string { return "duplicate_check" }

func (j *DuplicateCheckJob) Run(ctx context.Context, exec *model.JobExecution) (Result, error) {
	videoIDs, err := j.songs.FindDuplicateVideoIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to find duplicate video ids: %w", err)
	}

	affected := 0
	for _, videoID := range videoIDs {
		group, err := j.songs.FindActiveByVideoID(ctx, videoID)
		if err != nil {
			return Result{Affected: affected}, fmt.Errorf("failed to load songs for video %s: %w", videoID, err)
		}
		if len(group) < 2 {
			continue
		}

		original := group[0]
		for i := 1; i < len(group); i++ {
			song := &group[i]
			detail := fmt.Sprintf("duplicate of song %d (%s - %s)", original.ID, original.Artist, original.Title)
			if err := j.ledger.Deactivate(ctx, exec, song, model.ReasonDuplicateSong, detail); err != nil {
				return Result{Affected: affected}, err
			}
			affected++
		}
	}

	return Result{
		Affected: affected,
		Message:  fmt.Sprintf("found %d duplicated video ids, deactivated %d songs", len(videoIDs), affected),
	}, nil
}
