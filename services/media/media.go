// Package media holds the collaborator contracts the content integrity
// jobs depend on, plus the YouTube and filesystem implementations. Jobs
// only consume verdicts and never talk to the network themselves.
package media

import (
	"context"
)

// VerdictKind is the tri-state outcome of an external video check
type VerdictKind string

const (
	VerdictValid         VerdictKind = "VALID"
	VerdictUnavailable   VerdictKind = "UNAVAILABLE"
	VerdictEmbedDisabled VerdictKind = "EMBED_DISABLED"
)

// Verdict carries the check outcome plus human-readable detail for the
// affected-song audit trail.
type Verdict struct {
	Kind   VerdictKind
	Detail string
}

// Valid reports whether the video is playable and embeddable.
func (v Verdict) Valid() bool {
	return v.Kind == VerdictValid
}

// VideoChecker validates a hosted video by its external reference id.
// An error means the check itself could not run, not that the video is bad.
type VideoChecker interface {
	Check(ctx context.Context, videoID string) (Verdict, error)
}

// FileChecker reports whether a song's media file exists in storage.
type FileChecker interface {
	Exists(ctx context.Context, path string) (bool, error)
}
