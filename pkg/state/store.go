package state

import (
	"strings"
	"sync"

	"taskflow/pkg/task"
	"taskflow/pkg/utils"
)

// Observer is notified after every successful transition
type Observer func(prev, next State)

// Store owns the current state. All mutations go through Dispatch.
type Store struct {
	dispatchMu sync.Mutex
	mu         sync.RWMutex
	state      State
	reducer    Reducer

	observers map[int]Observer
	order     []int
	nextObs   int
}

// NewStore creates a store holding initial
func NewStore(reducer Reducer, initial State) *Store {
	if initial.Tasks == nil {
		initial.Tasks = []task.Task{}
	}
	return &Store{
		state:     initial,
		reducer:   reducer,
		observers: make(map[int]Observer),
	}
}

// State returns the current snapshot. Callers must treat it as read-only.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Tasks returns the current task list in storage order
func (s *Store) Tasks() []task.Task {
	return s.State().Tasks
}

// Subscribe registers an observer and returns a function removing it.
// Observers run synchronously on the dispatching goroutine and must not call Dispatch.
func (s *Store) Subscribe(o Observer) func() {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	s.order = append(s.order, id)

	return func() {
		s.dispatchMu.Lock()
		defer s.dispatchMu.Unlock()
		delete(s.observers, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch validates a, reduces it into the current state and notifies observers.
// Validation failures return a *task.ValidationError; unknown ids return an error wrapping ErrNotFound.
func (s *Store) Dispatch(a Action) error {
	if err := validateAction(a); err != nil {
		utils.Log("Rejected %s: %v", Name(a), err)
		return err
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	prev := s.State()
	next, err := s.reducer.Reduce(prev, a)
	if err != nil {
		utils.Log("Action %s ignored: %v", Name(a), err)
		return err
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	for _, id := range s.order {
		s.observers[id](prev, next)
	}
	return nil
}

func validateAction(a Action) error {
	switch a := a.(type) {
	case AddTask:
		return task.ValidateNew(a.Task)
	case UpdateTask:
		return task.ValidatePatch(a.Patch)
	case AddSubtask:
		if strings.TrimSpace(a.Title) == "" {
			return &task.ValidationError{Field: "title", Message: "subtask title is required"}
		}
	case AddNote:
		if strings.TrimSpace(a.Text) == "" {
			return &task.ValidationError{Field: "text", Message: "note text is required"}
		}
	case AddAttachment:
		if strings.TrimSpace(a.Attachment.Name) == "" {
			return &task.ValidationError{Field: "name", Message: "attachment name is required"}
		}
		if a.Attachment.Size < 0 {
			return &task.ValidationError{Field: "size", Message: "attachment size cannot be negative"}
		}
	case LogTime:
		if a.Seconds < 0 {
			return &task.ValidationError{Field: "seconds", Message: "tracked time cannot be negative"}
		}
	case SetFilter:
		return task.ValidateFilterPatch(a.Patch)
	}
	return nil
}
