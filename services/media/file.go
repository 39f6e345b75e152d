package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalFileChecker checks song media files under a storage root on disk.
type LocalFileChecker struct {
	root string
}

// NewLocalFileChecker creates a checker rooted at the given directory
func NewLocalFileChecker(root string) *LocalFileChecker {
	return &LocalFileChecker{root: root}
}

// Exists reports whether the file is present. A stat error other than
// not-exist is returned so the caller can skip the song instead of
// deactivating it on a flaky disk.
func (f *LocalFileChecker) Exists(ctx context.Context, path string) (bool, error) {
	full := filepath.Join(f.root, filepath.Clean("/"+path))
	_, err := os.Stat(full)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", full, err)
}
