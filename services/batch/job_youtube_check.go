package batch

import (
	"context"
	"fmt"
	"log"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/services/media"
)

// YoutubeCheckJob verifies every active song's video id against the video
// checker and deactivates songs whose video is gone or no longer embeddable.
// A checker error for one song skips that song; only confirmed-invalid
// videos cause a deactivation.
type YoutubeCheckJob struct {
	songs   repository.SongStore
	checker media.VideoChecker
	ledger  *Service
}

// NewYoutubeCheckJob creates the daily video-availability job
func NewYoutubeCheckJob(songs repository.SongStore, checker media.VideoChecker, ledger *Service) *YoutubeCheckJob {
	return &YoutubeCheckJob{songs: songs, checker: checker, ledger: ledger}
}

func (j *YoutubeCheckJob) ID() string { return "youtube_check" }

func (j *YoutubeCheckJob) Run(ctx context.Context, exec *model.JobExecution) (Result, error) {
	songs, err := j.songs.FindActiveWithVideo(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load songs with videos: %w", err)
	}

	affected := 0
	skipped := 0
	for i := range songs {
		song := &songs[i]

		verdict, err := j.checker.Check(ctx, song.YoutubeVideoID)
		if err != nil {
			// Transient checker failure proves nothing about the video.
			log.Printf("[BATCH] Video check failed for song %d (%s): %v", song.ID, song.YoutubeVideoID, err)
			skipped++
			continue
		}
		if verdict.Valid() {
			continue
		}

		reason := model.ReasonVideoUnavailable
		if verdict.Kind == media.VerdictEmbedDisabled {
			reason = model.ReasonEmbedDisabled
		}
		if err := j.ledger.Deactivate(ctx, exec, song, reason, verdict.Detail); err != nil {
			return Result{Affected: affected}, err
		}
		affected++
	}

	return Result{
		Affected: affected,
		Message:  fmt.Sprintf("checked %d songs, deactivated %d, skipped %d", len(songs), affected, skipped),
	}, nil
}
