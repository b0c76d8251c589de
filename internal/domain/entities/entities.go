package entities

import (
	"errors"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrToggleNotFound = errors.New("toggle not found")
	ErrInvalidGUID    = errors.New("invalid toggle guid")
)

// Toggle represents a single named boolean switch. The GUID is assigned
// by the service on creation and is the only handle clients ever hold.
type Toggle struct {
	GUID  string `json:"guid"`
	State bool   `json:"state"`
}

// NewToggle mints a toggle with a fresh random identifier. New toggles
// always start switched off.
func NewToggle() Toggle {
	return Toggle{
		GUID:  uuid.NewString(),
		State: false,
	}
}

// Flip inverts the toggle's state and returns the new value.
func (t *Toggle) Flip() bool {
	t.State = !t.State
	return t.State
}

// Snapshot is a point-in-time copy of every toggle keyed by GUID. It is
// the unit of persistence: the whole map is serialized and replaced on
// each save.
type Snapshot map[string]bool

// Clone returns an independent copy so the caller can hand the snapshot
// to slow consumers without holding any locks.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
