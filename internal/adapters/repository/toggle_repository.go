package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/michael-i-mclean/toggle/internal/domain/entities"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/logger"
	"github.com/michael-i-mclean/toggle/internal/ports"
)

// ToggleRepositoryImpl implements the ToggleRepository interface with an
// in-memory map persisted through a SnapshotStore.
//
// Two locks with distinct jobs: mu serializes whole mutations, so the
// in-memory update and the snapshot write of one caller complete before the
// next mutator starts (two interleaved saves could otherwise persist a lost
// update). dataMu guards raw map access only, so Get reads stay consistent
// without ever waiting on persistence I/O held under mu.
type ToggleRepositoryImpl struct {
	store  ports.SnapshotStore
	logger *logger.Logger

	mu sync.Mutex

	dataMu  sync.RWMutex
	toggles entities.Snapshot
}

// NewToggleRepository creates a toggle repository backed by the given
// snapshot store. Call Load once before serving requests.
func NewToggleRepository(store ports.SnapshotStore, log *logger.Logger) ports.ToggleRepository {
	return &ToggleRepositoryImpl{
		store:   store,
		logger:  log.WithComponent("store"),
		toggles: entities.Snapshot{},
	}
}

func (r *ToggleRepositoryImpl) Create(ctx context.Context) (*entities.Toggle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := entities.NewToggle()

	r.dataMu.Lock()
	r.toggles[t.GUID] = t.State
	snap := r.toggles.Clone()
	r.dataMu.Unlock()

	// A save failure leaves the new toggle in memory; memory and disk may
	// diverge until the next successful save.
	if err := r.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("persist toggle create: %w", err)
	}

	return &t, nil
}

func (r *ToggleRepositoryImpl) Toggle(ctx context.Context, guid string) (*entities.Toggle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dataMu.Lock()
	state, ok := r.toggles[guid]
	if !ok {
		r.dataMu.Unlock()
		return nil, entities.ErrToggleNotFound
	}
	state = !state
	r.toggles[guid] = state
	snap := r.toggles.Clone()
	r.dataMu.Unlock()

	if err := r.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("persist toggle flip: %w", err)
	}

	return &entities.Toggle{GUID: guid, State: state}, nil
}

func (r *ToggleRepositoryImpl) Get(ctx context.Context, guid string) (*entities.Toggle, error) {
	r.dataMu.RLock()
	state, ok := r.toggles[guid]
	r.dataMu.RUnlock()

	if !ok {
		return nil, entities.ErrToggleNotFound
	}

	return &entities.Toggle{GUID: guid, State: state}, nil
}

// Snapshot returns an independent copy of the current mapping.
func (r *ToggleRepositoryImpl) Snapshot() entities.Snapshot {
	r.dataMu.RLock()
	defer r.dataMu.RUnlock()
	return r.toggles.Clone()
}

// Replace wholesale-replaces the in-memory mapping. Only the startup load
// path uses this; it does not persist.
func (r *ToggleRepositoryImpl) Replace(snap entities.Snapshot) {
	r.dataMu.Lock()
	defer r.dataMu.Unlock()
	r.toggles = snap.Clone()
}

func (r *ToggleRepositoryImpl) Len() int {
	r.dataMu.RLock()
	defer r.dataMu.RUnlock()
	return len(r.toggles)
}

// Load populates the mapping from the snapshot store. It holds the mutation
// lock so a load can never interleave with a mutation, though in practice it
// runs once before the first request is admitted.
func (r *ToggleRepositoryImpl) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	r.Replace(snap)
	r.logger.Infow("Toggle store loaded", "path", r.store.Path(), "toggles", len(snap))
	return nil
}

// Flush persists the current mapping under the same mutation lock as Create
// and Toggle. The shutdown path calls this exactly once, after the listener
// has drained, as the last operation to touch the store.
func (r *ToggleRepositoryImpl) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Save(ctx, r.Snapshot()); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}

	return nil
}
