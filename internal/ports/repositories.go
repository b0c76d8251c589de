package ports

import (
	"context"

	"github.com/michael-i-mclean/toggle/internal/domain/entities"
)

// ToggleRepository defines the interface for toggle data operations.
// Implementations own the in-memory identifier to state mapping and push a
// full snapshot to durable storage before any mutating call returns.
type ToggleRepository interface {
	// Create mints a toggle with a fresh identifier, state false, persists,
	// and returns it.
	Create(ctx context.Context) (*entities.Toggle, error)
	// Toggle flips the state of an existing toggle, persists, and returns
	// the new value. Returns entities.ErrToggleNotFound for unknown ids.
	Toggle(ctx context.Context, guid string) (*entities.Toggle, error)
	// Get returns the current state without mutating. Returns
	// entities.ErrToggleNotFound for unknown ids.
	Get(ctx context.Context, guid string) (*entities.Toggle, error)
	// Snapshot returns an independent copy of the entire mapping.
	Snapshot() entities.Snapshot
	// Replace wholesale-replaces the in-memory mapping. Startup load only.
	Replace(snap entities.Snapshot)
	// Len reports the number of toggles currently held.
	Len() int
	// Load populates the mapping from durable storage. Must complete before
	// the first request is admitted.
	Load(ctx context.Context) error
	// Flush persists the current mapping under the mutation lock. Used as
	// the final save at shutdown.
	Flush(ctx context.Context) error
}

// SnapshotStore defines the interface for durable snapshot storage.
// Save must replace the previous snapshot atomically so that a reader, or a
// crash at any instant, never observes a half-written file.
type SnapshotStore interface {
	Save(ctx context.Context, snap entities.Snapshot) error
	Load(ctx context.Context) (entities.Snapshot, error)
	Path() string
}
