package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"taskflow/pkg/state"
	"taskflow/pkg/task"
)

// SnapshotVersion is the only snapshot shape this build understands
const SnapshotVersion = 1

// ErrIncompatibleSnapshot is returned when a stored snapshot does not match the expected shape
var ErrIncompatibleSnapshot = errors.New("incompatible snapshot")

// Snapshot is the persisted envelope around the application state
type Snapshot struct {
	Version int         `json:"version"`
	State   state.State `json:"state"`
}

// EncodeSnapshot serializes s for storage
func EncodeSnapshot(s state.State) ([]byte, error) {
	if s.Tasks == nil {
		s.Tasks = []task.Task{}
	}
	return json.Marshal(Snapshot{Version: SnapshotVersion, State: s})
}

// DecodeSnapshot parses and strictly validates a stored snapshot
func DecodeSnapshot(data []byte) (state.State, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return state.State{}, fmt.Errorf("%w: %v", ErrIncompatibleSnapshot, err)
	}
	if dec.More() {
		return state.State{}, fmt.Errorf("%w: trailing data", ErrIncompatibleSnapshot)
	}
	if snap.Version != SnapshotVersion {
		return state.State{}, fmt.Errorf("%w: version %d, want %d", ErrIncompatibleSnapshot, snap.Version, SnapshotVersion)
	}
	if snap.State.Tasks == nil {
		return state.State{}, fmt.Errorf("%w: missing tasks", ErrIncompatibleSnapshot)
	}
	if err := task.ValidateFilter(snap.State.Filter); err != nil {
		return state.State{}, fmt.Errorf("%w: filter: %v", ErrIncompatibleSnapshot, err)
	}

	seen := make(map[string]struct{}, len(snap.State.Tasks))
	for _, t := range snap.State.Tasks {
		if err := task.ValidateTask(t); err != nil {
			return state.State{}, fmt.Errorf("%w: %v", ErrIncompatibleSnapshot, err)
		}
		if _, dup := seen[t.ID]; dup {
			return state.State{}, fmt.Errorf("%w: duplicate task id %q", ErrIncompatibleSnapshot, t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	return snap.State, nil
}
