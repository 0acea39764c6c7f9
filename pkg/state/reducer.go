package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskflow/pkg/task"
)

// ErrNotFound is returned when an action references a task or nested item that does not exist.
// The state is left unchanged.
var ErrNotFound = errors.New("not found")

// ErrUnknownAction is returned for actions the reducer does not handle
var ErrUnknownAction = errors.New("unknown action")

// State is the whole application state
type State struct {
	Tasks    []task.Task `json:"tasks"`
	Filter   task.Filter `json:"filter"`
	DarkMode bool        `json:"darkMode"`
}

// Initial returns the empty state used at first start and when a snapshot cannot be loaded
func Initial() State {
	return State{
		Tasks:  []task.Task{},
		Filter: task.DefaultFilter(),
	}
}

// FindTask returns the task with the given id
func (s State) FindTask(id string) (task.Task, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Tasks[i], true
	}
	return task.Task{}, false
}

func (s State) indexOf(id string) int {
	for i, t := range s.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Reducer maps (state, action) to the next state. It never mutates its input.
type Reducer struct {
	Now   func() time.Time
	NewID func() string
}

// NewReducer returns a reducer using the wall clock and random UUIDs
func NewReducer() Reducer {
	return Reducer{Now: time.Now, NewID: uuid.NewString}
}

func (r Reducer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r Reducer) newID() string {
	if r.NewID == nil {
		return uuid.NewString()
	}
	return r.NewID()
}

// Reduce applies a to s. On error the returned state is s unchanged.
func (r Reducer) Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case AddTask:
		return r.addTask(s, a.Task), nil

	case UpdateTask:
		return r.mutateTask(s, a.ID, func(t *task.Task) error {
			applyPatch(t, a.Patch)
			return nil
		})

	case DeleteTask:
		i := s.indexOf(a.ID)
		if i < 0 {
			return s, notFound("task", a.ID)
		}
		tasks := make([]task.Task, 0, len(s.Tasks)-1)
		tasks = append(tasks, s.Tasks[:i]...)
		tasks = append(tasks, s.Tasks[i+1:]...)
		s.Tasks = tasks
		return s, nil

	case ToggleTask:
		return r.mutateTask(s, a.ID, func(t *task.Task) error {
			t.Completed = !t.Completed
			return nil
		})

	case AddSubtask:
		return r.mutateTask(s, a.TaskID, func(t *task.Task) error {
			subtasks := make([]task.Subtask, 0, len(t.Subtasks)+1)
			subtasks = append(subtasks, t.Subtasks...)
			t.Subtasks = append(subtasks, task.Subtask{
				ID:        r.newID(),
				Title:     a.Title,
				Completed: a.Completed,
				CreatedAt: r.now(),
			})
			return nil
		})

	case ToggleSubtask:
		return r.mutateTask(s, a.TaskID, func(t *task.Task) error {
			j := t.FindSubtask(a.SubtaskID)
			if j < 0 {
				return notFound("subtask", a.SubtaskID)
			}
			subtasks := append([]task.Subtask(nil), t.Subtasks...)
			subtasks[j].Completed = !subtasks[j].Completed
			t.Subtasks = subtasks
			return nil
		})

	case DeleteSubtask:
		return r.mutateTask(s, a.TaskID, func(t *task.Task) error {
			j := t.FindSubtask(a.SubtaskID)
			if j < 0 {
				return notFound("subtask", a.SubtaskID)
			}
			t.Subtasks = removeAt(t.Subtasks, j)
			return nil
		})

	case AddNote:
		return r.mutateTask(s, a.TaskID, func(t *task.Task) error {
			notes := make([]task.Note, 0, len(t.Notes)+1)
			notes = append(notes, t.Notes...)
			t.Notes = append(notes, task.Note{ID: r.newID(), Text: a.Text, CreatedAt: r.now()})
			return nil
		})

	case DeleteNote:
		return r.mutateTask(s, a.TaskID, func(t *task.Task) error {
			for j, n := range t.Notes {
				if n.ID == a.NoteID {
					t.Notes = removeAt(t.Notes, j)
					return nil
				}
			}
			return notFound("note", a.NoteID)
		})

	case AddAttachment:
		return r.mutateTask(s, a.TaskID, func(t *task.Task) error {
			att := a.Attachment
			att.ID = r.newID()
			att.UploadedAt = r.now()
			attachments := make([]task.Attachment, 0, len(t.Attachments)+1)
			attachments = append(attachments, t.Attachments...)
			t.Attachments = append(attachments, att)
			return nil
		})

	case DeleteAttachment:
		return r.mutateTask(s, a.TaskID, func(t *task.Task) error {
			for j, att := range t.Attachments {
				if att.ID == a.AttachmentID {
					t.Attachments = removeAt(t.Attachments, j)
					return nil
				}
			}
			return notFound("attachment", a.AttachmentID)
		})

	case LogTime:
		return r.mutateTask(s, a.TaskID, func(t *task.Task) error {
			t.TimeSpent += a.Seconds
			return nil
		})

	case SetFilter:
		s.Filter = a.Patch.Apply(s.Filter)
		return s, nil

	case ToggleDarkMode:
		s.DarkMode = !s.DarkMode
		return s, nil

	case ReorderTasks:
		from := s.indexOf(a.ActiveID)
		if from < 0 {
			return s, notFound("task", a.ActiveID)
		}
		to := s.indexOf(a.OverID)
		if to < 0 {
			return s, notFound("task", a.OverID)
		}
		if from == to {
			return s, nil
		}
		moved := s.Tasks[from]
		tasks := removeAt(s.Tasks, from)
		tasks = append(tasks, task.Task{})
		copy(tasks[to+1:], tasks[to:])
		tasks[to] = moved
		s.Tasks = tasks
		return s, nil

	case LoadState:
		next := a.State
		if next.Tasks == nil {
			next.Tasks = []task.Task{}
		}
		return next, nil
	}

	return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

func (r Reducer) addTask(s State, in task.NewTask) State {
	now := r.now()
	t := task.Task{
		ID:            r.newID(),
		Title:         in.Title,
		Description:   in.Description,
		Completed:     in.Completed,
		Priority:      in.Priority,
		Category:      in.Category,
		DueDate:       copyTime(in.DueDate),
		CreatedAt:     now,
		UpdatedAt:     now,
		Subtasks:      make([]task.Subtask, 0, len(in.Subtasks)),
		TimeSpent:     in.TimeSpent,
		Notes:         make([]task.Note, 0, len(in.Notes)),
		Attachments:   make([]task.Attachment, 0, len(in.Attachments)),
		Tags:          append([]string{}, in.Tags...),
		EstimatedTime: copyInt(in.EstimatedTime),
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if t.Category == "" {
		t.Category = task.DefaultCategory
	}
	for _, st := range in.Subtasks {
		if st.ID == "" {
			st.ID = r.newID()
		}
		if st.CreatedAt.IsZero() {
			st.CreatedAt = now
		}
		t.Subtasks = append(t.Subtasks, st)
	}
	for _, n := range in.Notes {
		if n.ID == "" {
			n.ID = r.newID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		t.Notes = append(t.Notes, n)
	}
	for _, att := range in.Attachments {
		if att.ID == "" {
			att.ID = r.newID()
		}
		if att.UploadedAt.IsZero() {
			att.UploadedAt = now
		}
		t.Attachments = append(t.Attachments, att)
	}

	tasks := make([]task.Task, 0, len(s.Tasks)+1)
	tasks = append(tasks, t)
	s.Tasks = append(tasks, s.Tasks...)
	return s
}

// mutateTask copies the task list, applies fn to a copy of the matching task and stamps updatedAt
func (r Reducer) mutateTask(s State, id string, fn func(t *task.Task) error) (State, error) {
	i := s.indexOf(id)
	if i < 0 {
		return s, notFound("task", id)
	}
	t := s.Tasks[i]
	if err := fn(&t); err != nil {
		return s, err
	}
	t.UpdatedAt = r.now()
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}

	tasks := append([]task.Task(nil), s.Tasks...)
	tasks[i] = t
	s.Tasks = tasks
	return s, nil
}

func applyPatch(t *task.Task, p task.Patch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		t.DueDate = copyTime(p.DueDate)
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.ClearEstimate {
		t.EstimatedTime = nil
	} else if p.EstimatedTime != nil {
		t.EstimatedTime = copyInt(p.EstimatedTime)
	}
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
