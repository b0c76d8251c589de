package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/michael-i-mclean/toggle/internal/domain/entities"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/logger"
)

// FileStore persists toggle snapshots as a single JSON document. Writes go
// through a temp file in the target directory followed by a rename, so the
// file at Path always holds a complete snapshot from some finished save,
// never a torn one.
type FileStore struct {
	path   string
	logger *logger.Logger
}

// NewFileStore creates a file store writing to the given path.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: log,
	}
}

// Path returns the snapshot file path used by this store.
func (fs *FileStore) Path() string { return fs.path }

// Save atomically replaces the snapshot file with the given snapshot.
func (fs *FileStore) Save(ctx context.Context, snap entities.Snapshot) error {
	start := time.Now()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	// The temp file must live in the target directory: rename is only
	// atomic within a single filesystem.
	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	err = writeAndReplace(tmp, data, fs.path)
	if err != nil {
		// Best-effort removal of the leftover temp file. A cleanup
		// failure must not mask the write failure.
		os.Remove(tmp.Name())
	}

	fs.logger.LogSnapshotSave(fs.path, len(snap), float64(time.Since(start).Nanoseconds())/1000000, err)
	return err
}

func writeAndReplace(tmp *os.File, data []byte, path string) error {
	defer tmp.Close()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp snapshot: %w", err)
	}

	// Force the bytes to stable storage before the rename. The rename alone
	// is atomic but not durable: a power loss right after it could otherwise
	// surface an empty file.
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp snapshot: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	return nil
}

// Load reads the snapshot file back into memory. A missing file is the
// normal first-run condition and yields an empty snapshot. An unreadable or
// unparsable file also yields an empty snapshot with a logged warning; Load
// never propagates a failure.
func (fs *FileStore) Load(ctx context.Context) (entities.Snapshot, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entities.Snapshot{}, nil
		}
		fs.logger.Warnw("Snapshot unreadable, starting empty", "path", fs.path, "error", err)
		return entities.Snapshot{}, nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		fs.logger.Warnw("Snapshot corrupt, starting empty", "path", fs.path, "error", err)
		return entities.Snapshot{}, nil
	}

	snap := make(entities.Snapshot, len(raw))
	for k, v := range raw {
		snap[k] = truthy(v)
	}

	fs.logger.Debugw("Snapshot loaded", "path", fs.path, "entries", len(snap))
	return snap, nil
}

// truthy coerces an arbitrary decoded JSON value to a boolean, so snapshots
// written with permissive value types still load.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return false
	}
}
