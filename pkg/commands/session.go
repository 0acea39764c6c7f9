package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"taskflow/pkg/database"
	"taskflow/pkg/state"
	"taskflow/pkg/task"
)

var timeNow = time.Now

// Session is an open task list backed by the database. Every dispatched
// action is persisted by the attached bridge.
type Session struct {
	DB      *sql.DB
	Dialect database.Dialect
	Store   *state.Store
	Bridge  *database.Bridge
	Blobs   *database.BlobStore
	Out     io.Writer
	In      io.Reader

	saveErr error
	detach  func()
}

// Open connects to dsn, loads the stored snapshot and attaches persistence
func Open(ctx context.Context, dsn string) (*Session, error) {
	db, dialect, err := database.ConnectDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	return NewSession(ctx, db, dialect), nil
}

// NewSession builds a session over an already prepared database
func NewSession(ctx context.Context, db *sql.DB, dialect database.Dialect) *Session {
	bridge := database.NewBridge(database.NewSQLStore(db, dialect))
	store := state.NewStore(state.NewReducer(), bridge.Load(ctx))

	s := &Session{
		DB:      db,
		Dialect: dialect,
		Store:   store,
		Bridge:  bridge,
		Blobs:   database.NewBlobStore(db, dialect),
		Out:     os.Stdout,
		In:      os.Stdin,
	}
	bridge.OnSaveError(func(err error) { s.saveErr = err })
	s.detach = bridge.Attach(store)
	return s
}

// Dispatch applies a and reports a persistence failure as an error
func (s *Session) Dispatch(a state.Action) error {
	s.saveErr = nil
	if err := s.Store.Dispatch(a); err != nil {
		return err
	}
	if s.saveErr != nil {
		return fmt.Errorf("save task list: %w", s.saveErr)
	}
	return nil
}

// Close detaches persistence and closes the database
func (s *Session) Close() error {
	if s.detach != nil {
		s.detach()
	}
	return s.DB.Close()
}

func (s *Session) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.Out, format, args...)
}

// ResolveID finds the task whose id starts with prefix
func (s *Session) ResolveID(prefix string) (task.Task, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return task.Task{}, &task.ValidationError{Field: "id", Message: "task id is required"}
	}

	var matches []task.Task
	for _, t := range s.Store.Tasks() {
		if t.ID == prefix {
			return t, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("task %q: %w", prefix, state.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return task.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", prefix, len(matches))
}

// shortID is the id prefix printed by list and add
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
