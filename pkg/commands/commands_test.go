package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/pkg/database"
	"taskflow/pkg/reminder"
	"taskflow/pkg/state"
	"taskflow/pkg/task"
)

func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	db, dialect, err := database.ConnectDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.EnsureSchema(db, dialect))

	s := NewSession(context.Background(), db, dialect)
	out := &bytes.Buffer{}
	s.Out = out
	s.In = strings.NewReader("")
	t.Cleanup(func() { s.Close() })
	return s, out
}

func titles(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestHandleAddTaskExtractsMarkers(t *testing.T) {
	s, out := newTestSession(t)

	created, err := HandleAddTask(s, "Buy milk +groceries @Home !high", AddOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, task.PriorityHigh, created.Priority)
	assert.Equal(t, "Home", created.Category)
	assert.Equal(t, []string{"groceries"}, created.Tags)
	assert.Contains(t, out.String(), "Added task "+shortID(created.ID)+": Buy milk")
}

func TestHandleAddTaskFlagsWin(t *testing.T) {
	s, _ := newTestSession(t)

	created, err := HandleAddTask(s, "Renew passport !low @Errands +docs", AddOptions{
		Description: "  bring photos ",
		Priority:    "URGENT",
		Category:    "Travel",
		Due:         "2025-03-01",
		Tags:        []string{"gov", "docs"},
		Estimate:    45,
	})
	require.NoError(t, err)

	assert.Equal(t, "bring photos", created.Description)
	assert.Equal(t, task.PriorityUrgent, created.Priority)
	assert.Equal(t, "Travel", created.Category)
	assert.Equal(t, []string{"gov", "docs"}, created.Tags)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2025-03-01 00:00", created.DueDate.Local().Format("2006-01-02 15:04"))
	require.NotNil(t, created.EstimatedTime)
	assert.Equal(t, 45, *created.EstimatedTime)
}

func TestHandleAddTaskDefaultsAndErrors(t *testing.T) {
	s, _ := newTestSession(t)

	created, err := HandleAddTask(s, "Plain task", AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, task.PriorityMedium, created.Priority)
	assert.Equal(t, task.DefaultCategory, created.Category)
	assert.Empty(t, created.Tags)

	var verr *task.ValidationError
	_, err = HandleAddTask(s, "Bad date", AddOptions{Due: "next tuesday"})
	assert.True(t, errors.As(err, &verr))

	_, err = HandleAddTask(s, "+onlytag", AddOptions{})
	assert.True(t, errors.As(err, &verr), "title is required")

	_, err = HandleAddTask(s, "Weird priority", AddOptions{Priority: "critical"})
	assert.True(t, errors.As(err, &verr))

	assert.Len(t, s.Store.Tasks(), 1)
}

func TestSessionPersistsEveryChange(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := HandleAddTask(s, "Survives reopen", AddOptions{})
	require.NoError(t, err)

	reopened := NewSession(context.Background(), s.DB, s.Dialect)
	assert.Equal(t, []string{"Survives reopen"}, titles(reopened.Store.Tasks()))
}

func TestSessionReportsSaveFailure(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.DB.Close())

	err := s.Dispatch(state.AddTask{Task: task.NewTask{Title: "unsaved"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save task list")
	assert.Len(t, s.Store.Tasks(), 1, "in-memory state keeps the change")
}

func TestResolveID(t *testing.T) {
	s, _ := newTestSession(t)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	mk := func(id, title string) task.Task {
		return task.Task{ID: id, Title: title, Priority: task.PriorityMedium, Category: task.DefaultCategory, CreatedAt: now, UpdatedAt: now}
	}
	loaded := state.Initial()
	loaded.Tasks = []task.Task{mk("abc123", "first"), mk("abc456", "second"), mk("abc", "exact")}
	require.NoError(t, s.Dispatch(state.LoadState{State: loaded}))

	got, err := s.ResolveID("abc4")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)

	got, err = s.ResolveID("abc")
	require.NoError(t, err)
	assert.Equal(t, "exact", got.Title, "exact match wins over prefixes")

	_, err = s.ResolveID("ab")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = s.ResolveID("zzz")
	assert.ErrorIs(t, err, state.ErrNotFound)

	var verr *task.ValidationError
	_, err = s.ResolveID("  ")
	assert.True(t, errors.As(err, &verr))
}

func TestHandleList(t *testing.T) {
	s, out := newTestSession(t)

	_, err := HandleList(s, ListOptions{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No tasks found.")

	for _, text := range []string{"Write report !high @Work", "Water plants @Home", "Call bank !high +finance"} {
		_, err := HandleAddTask(s, text, AddOptions{})
		require.NoError(t, err)
	}
	out.Reset()

	listed, err := HandleList(s, ListOptions{Priority: "high", SortOrder: "asc"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Write report", "Call bank"}, titles(listed))

	printed := out.String()
	assert.Contains(t, printed, "ID")
	assert.Contains(t, printed, "TITLE")
	assert.Contains(t, printed, "Call bank")
	assert.Contains(t, printed, "finance")
	assert.NotContains(t, printed, "Water plants")
	assert.NotContains(t, printed, "\t")
	lines := strings.Split(strings.TrimRight(printed, "\n"), "\n")
	require.Len(t, lines, 3, "header plus two rows")
	assert.Equal(t, []string{"ID", "STATUS", "PRIORITY", "CATEGORY", "DUE", "TITLE", "TAGS"}, strings.Fields(lines[0]))
	for _, line := range lines[1:] {
		title := "Write report"
		if strings.Contains(line, "Call bank") {
			title = "Call bank"
		}
		assert.Equal(t, strings.Index(lines[0], "TITLE"), strings.Index(line, title), "titles start under their header")
	}

	listed, err = HandleList(s, ListOptions{Category: "Home"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Water plants"}, titles(listed))

	_, err = HandleList(s, ListOptions{Status: "maybe"})
	var verr *task.ValidationError
	assert.True(t, errors.As(err, &verr))

	assert.Equal(t, task.DefaultFilter(), s.Store.State().Filter, "list leaves the saved filter alone")
}

func TestHandleDoneAndDelete(t *testing.T) {
	s, out := newTestSession(t)

	created, err := HandleAddTask(s, "Finish me", AddOptions{})
	require.NoError(t, err)

	require.NoError(t, HandleDone(s, shortID(created.ID)))
	got, _ := s.Store.State().FindTask(created.ID)
	assert.True(t, got.Completed)

	require.NoError(t, HandleDone(s, created.ID))
	got, _ = s.Store.State().FindTask(created.ID)
	assert.True(t, got.Completed, "done does not toggle back")
	assert.Contains(t, out.String(), "already completed")

	require.NoError(t, HandleDelete(s, created.ID))
	assert.Empty(t, s.Store.Tasks())
	assert.ErrorIs(t, HandleDelete(s, created.ID), state.ErrNotFound)
}

func TestHandleStats(t *testing.T) {
	s, out := newTestSession(t)

	a, err := HandleAddTask(s, "one !urgent", AddOptions{})
	require.NoError(t, err)
	_, err = HandleAddTask(s, "two", AddOptions{})
	require.NoError(t, err)
	require.NoError(t, HandleDone(s, a.ID))

	stats := HandleStats(s)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Pending)
	assert.Contains(t, out.String(), "Total:")
	assert.Regexp(t, `(?m)^Completed:\s+1\s*$`, out.String())
}

// seedForExport adds tasks whose due date order differs from creation order
func seedForExport(t *testing.T, s *Session) {
	t.Helper()
	for _, tc := range []struct {
		text string
		due  string
	}{
		{"Undated chore", ""},
		{"Late deadline !urgent @Work +q1", "2025-06-20"},
		{"Early deadline !low +home +weekend", "2025-06-02"},
	} {
		_, err := HandleAddTask(s, tc.text, AddOptions{Due: tc.due})
		require.NoError(t, err)
	}
	late := s.Store.Tasks()[1]
	require.NoError(t, HandleDone(s, late.ID))
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, format := range []string{"json", "yaml", "txt"} {
		t.Run(format, func(t *testing.T) {
			src, srcOut := newTestSession(t)
			seedForExport(t, src)

			file := filepath.Join(t.TempDir(), "out", "tasks."+format)
			require.NoError(t, HandleExportCommand(src, file, format))
			assert.Contains(t, srcOut.String(), "Successfully exported 3 task(s)")

			dst, _ := newTestSession(t)
			added, err := HandleImportCommand(dst, file)
			require.NoError(t, err)
			assert.Equal(t, 3, added)

			imported := dst.Store.Tasks()
			require.Equal(t, []string{"Early deadline", "Late deadline", "Undated chore"}, titles(imported))

			early, late, undated := imported[0], imported[1], imported[2]
			assert.Equal(t, task.PriorityLow, early.Priority)
			assert.Equal(t, []string{"home", "weekend"}, early.Tags)
			assert.Equal(t, task.DefaultCategory, early.Category)
			require.NotNil(t, early.DueDate)
			assert.Equal(t, "2025-06-02", early.DueDate.Local().Format("2006-01-02"))

			assert.True(t, late.Completed)
			assert.Equal(t, task.PriorityUrgent, late.Priority)
			assert.Equal(t, "Work", late.Category)
			assert.Equal(t, []string{"q1"}, late.Tags)

			assert.Nil(t, undated.DueDate)
			assert.Equal(t, task.PriorityMedium, undated.Priority)

			for _, orig := range src.Store.Tasks() {
				_, clash := dst.Store.State().FindTask(orig.ID)
				assert.False(t, clash, "imported tasks get fresh ids")
			}
		})
	}
}

func TestExportTxtFormat(t *testing.T) {
	s, _ := newTestSession(t)
	seedForExport(t, s)

	file := filepath.Join(t.TempDir(), "tasks.txt")
	require.NoError(t, HandleExportCommand(s, file, "txt"))

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"02.06.2025:",
		"- [ ] Early deadline !low +home +weekend",
		"",
		"20.06.2025:",
		"- [x] Late deadline !urgent @Work +q1",
		"",
		"No due date:",
		"- [ ] Undated chore",
	}, "\n")+"\n", string(content))

	assert.Error(t, HandleExportCommand(s, file, "xml"))
}

func TestTxtExportLeavesOutUnmarkableValues(t *testing.T) {
	src, _ := newTestSession(t)
	_, err := HandleAddTask(src, "Write report", AddOptions{Category: "Client Work", Tags: []string{"q3", "big deal"}})
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "tasks.txt")
	require.NoError(t, HandleExportCommand(src, file, "txt"))
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "No due date:\n- [ ] Write report +q3\n", string(content))

	dst, _ := newTestSession(t)
	added, err := HandleImportCommand(dst, file)
	require.NoError(t, err)
	require.Equal(t, 1, added)

	got := dst.Store.Tasks()[0]
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, task.DefaultCategory, got.Category)
	assert.Equal(t, []string{"q3"}, got.Tags)
}

func TestImportTxtAcceptsIsoHeaders(t *testing.T) {
	s, _ := newTestSession(t)

	file := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(file, []byte("2025-01-05:\n- [x] Done thing\n- plain item @Ops\nnot a task line\n- [ ] \n"), 0644))

	added, err := HandleImportCommand(s, file)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	tasks := s.Store.Tasks()
	assert.Equal(t, []string{"Done thing", "plain item"}, titles(tasks))
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, "Ops", tasks[1].Category)
	require.NotNil(t, tasks[1].DueDate)
	assert.Equal(t, "2025-01-05", tasks[1].DueDate.Local().Format("2006-01-02"))
}

func TestImportReportsSkippedAttachments(t *testing.T) {
	s, out := newTestSession(t)

	file := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"title": "With files", "priority": "medium", "category": "General",
		 "attachments": [{"id": "a1", "name": "plan.pdf", "type": "application/pdf", "size": 10, "data": "r1"}]},
		{"title": "Plain", "priority": "medium", "category": "General"}
	]`), 0644))

	added, err := HandleImportCommand(s, file)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	assert.Contains(t, out.String(), "Skipping 1 attachment(s) of 'With files'")
	assert.NotContains(t, out.String(), "of 'Plain'")
	for _, got := range s.Store.Tasks() {
		assert.Empty(t, got.Attachments)
	}
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	s, _ := newTestSession(t)

	file := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(file, []byte("[{"), 0644))

	_, err := HandleImportCommand(s, file)
	assert.Error(t, err)
	assert.Empty(t, s.Store.Tasks())
}

func TestAttachSaveDetachPrune(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	created, err := HandleAddTask(s, "Read contract", AddOptions{})
	require.NoError(t, err)

	dir := t.TempDir()
	src := filepath.Join(dir, "contract.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello world"), 0644))

	att, err := HandleAttach(ctx, s, created.ID, src)
	require.NoError(t, err)
	assert.NotEmpty(t, att.ID)
	assert.Equal(t, "contract.txt", att.Name)
	assert.Equal(t, int64(11), att.Size)
	assert.True(t, strings.HasPrefix(att.Type, "text/plain"), att.Type)
	assert.NotEmpty(t, att.Data)

	dest := filepath.Join(dir, "copy.txt")
	require.NoError(t, HandleSaveAttachment(ctx, s, created.ID, "contract.txt", dest))
	saved, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(saved))

	removed, err := HandlePrune(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, removed, "referenced blobs are kept")

	require.NoError(t, HandleDetach(s, created.ID, att.ID))
	got, _ := s.Store.State().FindTask(created.ID)
	assert.Empty(t, got.Attachments)
	assert.ErrorIs(t, HandleDetach(s, created.ID, att.ID), state.ErrNotFound)

	removed, err = HandlePrune(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, _, err = s.Blobs.Get(ctx, att.Data)
	assert.ErrorIs(t, err, database.ErrBlobNotFound)
}

func TestAttachRejectsDirectories(t *testing.T) {
	s, _ := newTestSession(t)
	created, err := HandleAddTask(s, "Folder", AddOptions{})
	require.NoError(t, err)

	var verr *task.ValidationError
	_, err = HandleAttach(context.Background(), s, created.ID, t.TempDir())
	assert.True(t, errors.As(err, &verr))

	_, err = HandleAttach(context.Background(), s, created.ID, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestHandlePurge(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed purge removes done tasks and their blobs", func(t *testing.T) {
		s, _ := newTestSession(t)
		done, err := HandleAddTask(s, "Old work", AddOptions{})
		require.NoError(t, err)
		_, err = HandleAddTask(s, "Open work", AddOptions{})
		require.NoError(t, err)
		require.NoError(t, HandleDone(s, done.ID))

		file := filepath.Join(t.TempDir(), "scan.txt")
		require.NoError(t, os.WriteFile(file, []byte("receipt"), 0644))
		att, err := HandleAttach(ctx, s, done.ID, file)
		require.NoError(t, err)

		s.In = strings.NewReader("y\n")
		deleted, err := HandlePurge(ctx, s, PurgeOptions{DoneOnly: true})
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
		assert.Equal(t, []string{"Open work"}, titles(s.Store.Tasks()))

		_, _, err = s.Blobs.Get(ctx, att.Data)
		assert.ErrorIs(t, err, database.ErrBlobNotFound)
	})

	t.Run("declined purge keeps everything", func(t *testing.T) {
		s, out := newTestSession(t)
		_, err := HandleAddTask(s, "Keep me @Home", AddOptions{})
		require.NoError(t, err)

		s.In = strings.NewReader("n\n")
		deleted, err := HandlePurge(ctx, s, PurgeOptions{Category: "Home"})
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.Len(t, s.Store.Tasks(), 1)
		assert.Contains(t, out.String(), "Operation cancelled.")
	})

	t.Run("date filter with skip confirm", func(t *testing.T) {
		s, _ := newTestSession(t)
		_, err := HandleAddTask(s, "Dated", AddOptions{Due: "2025-05-05 14:00"})
		require.NoError(t, err)
		_, err = HandleAddTask(s, "Other day", AddOptions{Due: "2025-05-06"})
		require.NoError(t, err)

		deleted, err := HandlePurge(ctx, s, PurgeOptions{Date: "2025-05-05", SkipConfirm: true})
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
		assert.Equal(t, []string{"Other day"}, titles(s.Store.Tasks()))
	})

	t.Run("conflicting options", func(t *testing.T) {
		s, _ := newTestSession(t)
		var verr *task.ValidationError
		_, err := HandlePurge(ctx, s, PurgeOptions{DoneOnly: true, UndoneOnly: true})
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("unknown database command", func(t *testing.T) {
		s, _ := newTestSession(t)
		assert.Error(t, HandleDatabaseCommand(ctx, s, "vacuum", PurgeOptions{}))
	})
}

type countingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (n *countingNotifier) Send(_ context.Context, r reminder.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, r.Title)
	return nil
}

func TestLiveTasksSeeOtherSessions(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	watcher, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer watcher.Close()

	n := &countingNotifier{}
	sched := reminder.New(watcher.Bridge.Live(ctx), n, reminder.WithRecipient("me@example.com"))
	assert.Zero(t, sched.Scan(ctx))

	writer, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer writer.Close()

	due := time.Now().Add(20 * time.Minute)
	require.NoError(t, writer.Dispatch(state.AddTask{Task: task.NewTask{Title: "Standup", DueDate: &due}}))

	assert.Empty(t, watcher.Store.Tasks(), "the watcher's own store is not reloaded")
	assert.Equal(t, 1, sched.Scan(ctx))
	sched.Wait()
	assert.Equal(t, []string{"Standup"}, n.titles)

	assert.Zero(t, sched.Scan(ctx), "sent once per process")
}
