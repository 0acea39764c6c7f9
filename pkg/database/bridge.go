package database

import (
	"context"
	"errors"
	"time"

	"taskflow/pkg/state"
	"taskflow/pkg/task"
	"taskflow/pkg/utils"
)

// SnapshotKey is the key the application state is stored under
const SnapshotKey = "taskManagerState"

// Bridge mirrors the state store into a SnapshotStore
type Bridge struct {
	store   SnapshotStore
	key     string
	timeout time.Duration
	onError func(error)
}

// NewBridge creates a bridge persisting under SnapshotKey
func NewBridge(store SnapshotStore) *Bridge {
	return &Bridge{store: store, key: SnapshotKey, timeout: 5 * time.Second}
}

// OnSaveError registers a callback for save failures raised by Attach
func (b *Bridge) OnSaveError(fn func(error)) {
	b.onError = fn
}

// Load returns the stored state, or the initial state when nothing usable is stored
func (b *Bridge) Load(ctx context.Context) state.State {
	data, err := b.store.Get(ctx, b.key)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			utils.Log("Error loading snapshot, starting empty: %v", err)
		}
		return state.Initial()
	}

	s, err := DecodeSnapshot(data)
	if err != nil {
		utils.Log("Discarding stored snapshot: %v", err)
		return state.Initial()
	}

	utils.Log("Loaded %d task(s) from snapshot", len(s.Tasks))
	return s
}

// Save writes s to the store
func (b *Bridge) Save(ctx context.Context, s state.State) error {
	data, err := EncodeSnapshot(s)
	if err != nil {
		return err
	}
	return b.store.Set(ctx, b.key, data)
}

// Attach saves after every transition of st. Failures are logged and never block the store.
// The returned function detaches the bridge.
func (b *Bridge) Attach(st *state.Store) func() {
	return st.Subscribe(func(_, next state.State) {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		if err := b.Save(ctx, next); err != nil {
			utils.Log("Error saving snapshot: %v", err)
			if b.onError != nil {
				b.onError(err)
			}
		}
	})
}

// LiveTasks reads the stored task list on every call. Processes that share the
// database with another writer use it instead of their own store.
type LiveTasks struct {
	bridge *Bridge
	ctx    context.Context
}

// Live returns a task source backed by the stored snapshot
func (b *Bridge) Live(ctx context.Context) *LiveTasks {
	return &LiveTasks{bridge: b, ctx: ctx}
}

// Tasks loads the latest snapshot and returns its tasks
func (l *LiveTasks) Tasks() []task.Task {
	return l.bridge.Load(l.ctx).Tasks
}
