package state

import "taskflow/pkg/task"

// Action is a state transition request handled by the Reducer
type Action interface {
	actionName() string
}

// AddTask prepends a new task
type AddTask struct {
	Task task.NewTask
}

// UpdateTask merges a patch into an existing task
type UpdateTask struct {
	ID    string
	Patch task.Patch
}

// DeleteTask removes a task together with its subtasks, notes and attachments
type DeleteTask struct {
	ID string
}

// ToggleTask flips the completion of a task
type ToggleTask struct {
	ID string
}

// AddSubtask appends a subtask to a task
type AddSubtask struct {
	TaskID    string
	Title     string
	Completed bool
}

// ToggleSubtask flips the completion of a single subtask
type ToggleSubtask struct {
	TaskID    string
	SubtaskID string
}

// DeleteSubtask removes a subtask from its task
type DeleteSubtask struct {
	TaskID    string
	SubtaskID string
}

// AddNote appends a note to a task
type AddNote struct {
	TaskID string
	Text   string
}

// DeleteNote removes a note from its task
type DeleteNote struct {
	TaskID string
	NoteID string
}

// AddAttachment appends an attachment reference to a task.
// ID and UploadedAt are assigned by the reducer.
type AddAttachment struct {
	TaskID     string
	Attachment task.Attachment
}

// DeleteAttachment removes an attachment reference from its task
type DeleteAttachment struct {
	TaskID       string
	AttachmentID string
}

// LogTime adds tracked seconds to a task
type LogTime struct {
	TaskID  string
	Seconds int64
}

// SetFilter merges a partial filter into the current one
type SetFilter struct {
	Patch task.FilterPatch
}

// ToggleDarkMode flips the display theme
type ToggleDarkMode struct{}

// ReorderTasks moves the task ActiveID to the position currently held by OverID
type ReorderTasks struct {
	ActiveID string
	OverID   string
}

// LoadState replaces the whole state
type LoadState struct {
	State State
}

func (AddTask) actionName() string          { return "add_task" }
func (UpdateTask) actionName() string       { return "update_task" }
func (DeleteTask) actionName() string       { return "delete_task" }
func (ToggleTask) actionName() string       { return "toggle_task" }
func (AddSubtask) actionName() string       { return "add_subtask" }
func (ToggleSubtask) actionName() string    { return "toggle_subtask" }
func (DeleteSubtask) actionName() string    { return "delete_subtask" }
func (AddNote) actionName() string          { return "add_note" }
func (DeleteNote) actionName() string       { return "delete_note" }
func (AddAttachment) actionName() string    { return "add_attachment" }
func (DeleteAttachment) actionName() string { return "delete_attachment" }
func (LogTime) actionName() string          { return "log_time" }
func (SetFilter) actionName() string        { return "set_filter" }
func (ToggleDarkMode) actionName() string   { return "toggle_dark_mode" }
func (ReorderTasks) actionName() string     { return "reorder_tasks" }
func (LoadState) actionName() string        { return "load_state" }

// Name returns a stable identifier for the action, used in logs
func Name(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.actionName()
}
