package task

import (
	"time"
)

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Rank returns the sort ordinal of the priority (low=1 .. urgent=4), 0 if unknown
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// DefaultCategory is assigned to tasks created without a category
const DefaultCategory = "General"

// All is the sentinel used by filter fields that match everything
const All = "all"

// Task represents a single work item
type Task struct {
	ID            string       `json:"id" yaml:"id" validate:"required"`
	Title         string       `json:"title" yaml:"title" validate:"required"`
	Description   string       `json:"description" yaml:"description"`
	Completed     bool         `json:"completed" yaml:"completed"`
	Priority      Priority     `json:"priority" yaml:"priority" validate:"oneof=low medium high urgent"`
	Category      string       `json:"category" yaml:"category"`
	DueDate       *time.Time   `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	CreatedAt     time.Time    `json:"createdAt" yaml:"createdAt" validate:"required"`
	UpdatedAt     time.Time    `json:"updatedAt" yaml:"updatedAt" validate:"required,gtefield=CreatedAt"`
	Subtasks      []Subtask    `json:"subtasks" yaml:"subtasks" validate:"dive"`
	TimeSpent     int64        `json:"timeSpent" yaml:"timeSpent" validate:"gte=0"`
	Notes         []Note       `json:"notes" yaml:"notes" validate:"dive"`
	Attachments   []Attachment `json:"attachments" yaml:"attachments" validate:"dive"`
	Tags          []string     `json:"tags" yaml:"tags"`
	EstimatedTime *int         `json:"estimatedTime,omitempty" yaml:"estimatedTime,omitempty" validate:"omitempty,gt=0"`
}

// Subtask is a checklist item owned by a Task
type Subtask struct {
	ID        string    `json:"id" yaml:"id" validate:"required"`
	Title     string    `json:"title" yaml:"title"`
	Completed bool      `json:"completed" yaml:"completed"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Note is a free text comment owned by a Task
type Note struct {
	ID        string    `json:"id" yaml:"id" validate:"required"`
	Text      string    `json:"text" yaml:"text"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Attachment references a blob stored outside the task list.
// Data holds the blob reference, never the bytes.
type Attachment struct {
	ID         string    `json:"id" yaml:"id" validate:"required"`
	Name       string    `json:"name" yaml:"name"`
	Size       int64     `json:"size" yaml:"size" validate:"gte=0"`
	Type       string    `json:"type" yaml:"type"`
	Data       string    `json:"data" yaml:"data"`
	UploadedAt time.Time `json:"uploadedAt" yaml:"uploadedAt"`
}

// HasTag reports whether the task carries the given tag
func (t Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// FindSubtask returns the index of the subtask with the given id, or -1
func (t Task) FindSubtask(id string) int {
	for i, st := range t.Subtasks {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// NewTask holds the caller supplied fields of a task about to be created
type NewTask struct {
	Title         string `validate:"required"`
	Description   string
	Completed     bool
	Priority      Priority `validate:"omitempty,oneof=low medium high urgent"`
	Category      string
	DueDate       *time.Time
	Subtasks      []Subtask
	TimeSpent     int64 `validate:"gte=0"`
	Notes         []Note
	Attachments   []Attachment
	Tags          []string
	EstimatedTime *int `validate:"omitempty,gt=0"`
}

// Patch carries a partial task update. Nil fields are left untouched.
type Patch struct {
	Title         *string `validate:"omitempty,min=1"`
	Description   *string
	Completed     *bool
	Priority      *Priority `validate:"omitempty,oneof=low medium high urgent"`
	Category      *string
	DueDate       *time.Time
	ClearDueDate  bool
	Tags          *[]string
	EstimatedTime *int `validate:"omitempty,gt=0"`
	ClearEstimate bool
}

// Status selects tasks by completion
type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	return s == StatusAll || s == StatusPending || s == StatusCompleted
}

// SortBy is the key used to order tasks for display
type SortBy string

const (
	SortByCreated  SortBy = "created"
	SortByUpdated  SortBy = "updated"
	SortByPriority SortBy = "priority"
	SortByDueDate  SortBy = "dueDate"
)

// SortKeys lists the sort keys in the order the UI cycles through them
var SortKeys = []SortBy{SortByCreated, SortByUpdated, SortByPriority, SortByDueDate}

func (s SortBy) Valid() bool {
	switch s {
	case SortByCreated, SortByUpdated, SortByPriority, SortByDueDate:
		return true
	}
	return false
}

// SortOrder is the direction of the sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// Filter describes which tasks are displayed and in what order
type Filter struct {
	Status    Status    `json:"status" yaml:"status"`
	Priority  string    `json:"priority" yaml:"priority"`
	Category  string    `json:"category" yaml:"category"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	SortBy    SortBy    `json:"sortBy" yaml:"sortBy"`
	SortOrder SortOrder `json:"sortOrder" yaml:"sortOrder"`
}

// DefaultFilter shows every task, newest first
func DefaultFilter() Filter {
	return Filter{
		Status:    StatusAll,
		Priority:  All,
		Category:  All,
		SortBy:    SortByCreated,
		SortOrder: SortDesc,
	}
}

// FilterPatch carries a partial filter update. Nil fields are left untouched.
type FilterPatch struct {
	Status    *Status
	Priority  *string
	Category  *string
	Tags      *[]string
	SortBy    *SortBy
	SortOrder *SortOrder
}

// Apply merges the patch into f and returns the result
func (p FilterPatch) Apply(f Filter) Filter {
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Priority != nil {
		f.Priority = *p.Priority
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Tags != nil {
		f.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.SortBy != nil {
		f.SortBy = *p.SortBy
	}
	if p.SortOrder != nil {
		f.SortOrder = *p.SortOrder
	}
	return f
}
