// Package snapshot persists the published document. Writes are
// create-or-replace and atomic: readers either see the previous
// complete snapshot or the new one, never a partial file.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"newscards/pkg/domain"
)

// Writer writes snapshots to a fixed path
type Writer struct {
	path string
}

// NewWriter creates a writer for the given output path
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the output path of the published snapshot
func (w *Writer) Path() string {
	return w.path
}

// Write marshals the snapshot and replaces the published file in one
// rename. The temp file lives in the target directory so the rename
// stays on one filesystem.
func (w *Writer) Write(snap *domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".latest-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	// temp files are created 0600, published snapshot should be readable
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // public artifact
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, w.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
