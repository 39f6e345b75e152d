package batch

import (
	"context"
	"fmt"
	"log"

	"github.com/hyeonwoo-dev/tunequiz-api/model"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/services/media"
)

// FileCheckJob deactivates active songs whose media file no longer exists
// in storage. Storage errors skip the song the same way video checker
// errors do.
type FileCheckJob struct {
	songs   repository.SongStore
	checker media.FileChecker
	ledger  *Service
}

// NewFileCheckJob creates the media-file integrity job
func NewFileCheckJob(songs repository.SongStore, checker media.FileChecker, ledger *Service) *FileCheckJob {
	return &FileCheckJob{songs: songs, checker: checker, ledger: ledger}
}

func (j *FileCheckJob) ID() string { return "file_check" }

func (j *FileCheckJob) Run(ctx context.Context, exec *model.JobExecution) (Result, error) {
	songs, err := j.songs.FindActiveWithFile(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load songs with files: %w", err)
	}

	affected := 0
	skipped := 0
	for i := range songs {
		song := &songs[i]

		exists, err := j.checker.Exists(ctx, song.FilePath)
		if err != nil {
			log.Printf("[BATCH] File check failed for song %d (%s): %v", song.ID, song.FilePath, err)
			skipped++
			continue
		}
		if exists {
			continue
		}

		detail := fmt.Sprintf("file not found: %s", song.FilePath)
		if err := j.ledger.Deactivate(ctx, exec, song, model.ReasonFileMissing, detail); err != nil {
			return Result{Affected: affected}, err
		}
		affected++
	}

	return Result{
		Affected: affected,
		Message:  fmt.Sprintf("checked %d files, deactivated %d, skipped %d", len(songs), affected, skipped),
	}, nil
}
