package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskflow/pkg/task"
	"taskflow/pkg/utils"
)

const (
	DefaultInterval = time.Minute
	DefaultWindow   = 30 * time.Minute
)

// Reminder is the payload delivered for a task entering its reminder window
type Reminder struct {
	TaskID         string
	Title          string
	Description    string
	DueDate        time.Time
	Priority       task.Priority
	Category       string
	RecipientEmail string
}

// Notifier delivers a reminder. A nil error means confirmed delivery.
type Notifier interface {
	Send(ctx context.Context, r Reminder) error
}

// DesktopNotifier shows a best-effort local notification
type DesktopNotifier interface {
	Notify(title, body string) error
}

// TaskSource exposes the current task list
type TaskSource interface {
	Tasks() []task.Task
}

// State is the reminder lifecycle of a single task
type State int

const (
	NotYetDue State = iota
	InWindowUnsent
	InWindowSent
	PastWindowOrCompleted
)

func (s State) String() string {
	switch s {
	case NotYetDue:
		return "not-yet-due"
	case InWindowUnsent:
		return "in-window-unsent"
	case InWindowSent:
		return "in-window-sent"
	default:
		return "past-window-or-completed"
	}
}

// Scheduler periodically scans tasks and sends at most one reminder per task per session.
// The sent set lives in memory only.
type Scheduler struct {
	source    TaskSource
	notifier  Notifier
	desktop   DesktopNotifier
	interval  time.Duration
	window    time.Duration
	recipient string
	now       func() time.Time
	onSent    func(Reminder)

	mu       sync.Mutex
	sent     map[string]struct{}
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

// Option configures a Scheduler
type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithWindow(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.window = d
		}
	}
}

func WithRecipient(email string) Option {
	return func(s *Scheduler) { s.recipient = email }
}

func WithDesktop(d DesktopNotifier) Option {
	return func(s *Scheduler) { s.desktop = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithOnSent registers a hook called after each confirmed delivery
func WithOnSent(fn func(Reminder)) Option {
	return func(s *Scheduler) { s.onSent = fn }
}

// New creates a scheduler reading from source and delivering through notifier
func New(source TaskSource, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:   source,
		notifier: notifier,
		interval: DefaultInterval,
		window:   DefaultWindow,
		now:      time.Now,
		sent:     make(map[string]struct{}),
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InWindow reports whether now lies in [due-window, due]
func InWindow(now, due time.Time, window time.Duration) bool {
	return !now.Before(due.Add(-window)) && !now.After(due)
}

// Run scans immediately and then on every tick until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	utils.Log("Reminder scheduler started (interval %s, window %s)", s.interval, s.window)
	s.Scan(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Log("Reminder scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Scan(ctx)
		}
	}
}

// Scan runs a single pass and returns how many deliveries it started.
// Deliveries run asynchronously; use Wait to block until they finish.
func (s *Scheduler) Scan(ctx context.Context) int {
	now := s.now()
	started := 0

	for _, t := range s.source.Tasks() {
		if t.Completed || t.DueDate == nil || !InWindow(now, *t.DueDate, s.window) {
			continue
		}

		s.mu.Lock()
		_, done := s.sent[t.ID]
		_, busy := s.inflight[t.ID]
		if done || busy {
			s.mu.Unlock()
			continue
		}
		s.inflight[t.ID] = struct{}{}
		s.mu.Unlock()

		r := Reminder{
			TaskID:         t.ID,
			Title:          t.Title,
			Description:    t.Description,
			DueDate:        *t.DueDate,
			Priority:       t.Priority,
			Category:       t.Category,
			RecipientEmail: s.recipient,
		}

		s.wg.Add(1)
		go s.deliver(ctx, r)
		started++
	}

	return started
}

// Wait blocks until every delivery started so far has finished
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Sent reports whether a reminder for the task was confirmed this session
func (s *Scheduler) Sent(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sent[taskID]
	return ok
}

// StateOf classifies t at the given instant
func (s *Scheduler) StateOf(t task.Task, now time.Time) State {
	if t.Completed || t.DueDate == nil || now.After(*t.DueDate) {
		return PastWindowOrCompleted
	}
	if now.Before(t.DueDate.Add(-s.window)) {
		return NotYetDue
	}
	if s.Sent(t.ID) {
		return InWindowSent
	}
	return InWindowUnsent
}

func (s *Scheduler) deliver(ctx context.Context, r Reminder) {
	defer s.wg.Done()

	err := s.notifier.Send(ctx, r)

	s.mu.Lock()
	delete(s.inflight, r.TaskID)
	if err == nil {
		s.sent[r.TaskID] = struct{}{}
	}
	s.mu.Unlock()

	if err != nil {
		utils.Log("Reminder for task %s failed, will retry: %v", r.TaskID, err)
		return
	}

	utils.Log("Reminder sent for task %s", r.TaskID)

	if s.desktop != nil {
		title := fmt.Sprintf("Task Reminder: %s", r.Title)
		body := fmt.Sprintf("Due in %d minutes - %s", int(s.window.Minutes()), r.Description)
		if err := s.desktop.Notify(title, body); err != nil {
			utils.Log("Desktop notification skipped: %v", err)
		}
	}

	if s.onSent != nil {
		s.onSent(r)
	}
}
