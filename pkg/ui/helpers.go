package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"taskflow/pkg/reminder"
	"taskflow/pkg/state"
	"taskflow/pkg/task"
	"taskflow/pkg/utils"
	"taskflow/pkg/view"
)

const dueLayout = "2006-01-02 15:04"

// refresh re-derives the displayed rows from the store
func (m *Model) refresh() {
	s := m.store.State()
	if s.DarkMode != m.dark {
		m.applyTheme(s.DarkMode)
	}

	projected := view.Project(s.Tasks, s.Filter)

	var groups []view.Group
	if m.groupByCategory {
		groups = view.GroupByCategory(projected)
	} else {
		groups = []view.Group{{Tasks: projected}}
	}

	// items follows display order so that neighbours on screen are neighbours here
	m.items = m.items[:0]
	m.rowTask = m.rowTask[:0]
	tableRows := []table.Row{}
	for _, group := range groups {
		// Add group header if grouping is enabled
		if m.groupByCategory {
			header := lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(m.styles.AccentColor)).
				Render(fmt.Sprintf("== %s (%d) ==", group.Name, len(group.Tasks)))
			tableRows = append(tableRows, table.Row{header})
			m.rowTask = append(m.rowTask, -1)
		}

		for _, t := range group.Tasks {
			tableRows = append(tableRows, table.Row{m.formatRow(t)})
			m.rowTask = append(m.rowTask, len(m.items))
			m.items = append(m.items, t)
		}
	}

	m.table.SetRows(tableRows)
	if c := m.table.Cursor(); c >= len(tableRows) && len(tableRows) > 0 {
		m.table.SetCursor(len(tableRows) - 1)
	}
}

// selectTask moves the cursor onto the row showing id
func (m *Model) selectTask(id string) {
	for row, idx := range m.rowTask {
		if idx >= 0 && m.items[idx].ID == id {
			m.table.SetCursor(row)
			return
		}
	}
}

// selected returns the task under the cursor and its position in display order
func (m *Model) selected() (task.Task, int, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rowTask) || m.rowTask[c] < 0 {
		return task.Task{}, -1, false
	}
	idx := m.rowTask[c]
	return m.items[idx], idx, true
}

// current returns the latest version of the task being edited or inspected
func (m *Model) current() (task.Task, bool) {
	return m.store.State().FindTask(m.editingID)
}

// dispatch sends a to the store. Missing ids are ignored silently.
func (m *Model) dispatch(a state.Action) error {
	err := m.store.Dispatch(a)
	switch {
	case err == nil:
		m.err = nil
	case errors.Is(err, state.ErrNotFound):
		err = nil
	default:
		m.err = err
	}
	m.refresh()
	return err
}

// formatRow renders a task as a single table line
func (m *Model) formatRow(t task.Task) string {
	status := "[ ]"
	if t.Completed {
		status = "[x]"
	}

	parts := []string{status, t.Title}

	priorityStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor))
	if t.Priority == task.PriorityUrgent {
		priorityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.UrgentColor)).Bold(true)
	}
	parts = append(parts, priorityStyle.Render("!"+string(t.Priority)))
	parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.CategoryColor)).Render("@"+t.Category))

	tagStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.TagColor))
	for _, tag := range t.Tags {
		parts = append(parts, tagStyle.Render("#"+tag))
	}

	if t.DueDate != nil {
		parts = append(parts, "due "+t.DueDate.Local().Format(dueLayout))
	}
	if p := view.SubtaskProgress(t); p.Total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", p.Completed, p.Total))
	}
	if t.TimeSpent > 0 {
		parts = append(parts, view.FormatDuration(t.TimeSpent))
	}
	if _, running := m.timers[t.ID]; running {
		parts = append(parts, "(tracking)")
	}
	if m.scheduler != nil && m.scheduler.StateOf(t, m.now()) == reminder.InWindowSent {
		parts = append(parts, "(reminded)")
	}

	return strings.Join(parts, " ")
}

// focusNextInput cycles through the form inputs
func (m *Model) focusNextInput() {
	m.focusInput((m.activeInput + 1) % fieldCount)
}

// focusPreviousInput cycles through the form inputs
func (m *Model) focusPreviousInput() {
	m.focusInput((m.activeInput - 1 + fieldCount) % fieldCount)
}

func (m *Model) focusInput(i int) {
	m.inputs[m.activeInput].Blur()
	m.activeInput = i
	m.inputs[i].Focus()
}

// fillForm populates the form with an existing task
func (m *Model) fillForm(t task.Task) {
	m.resetInputs()
	m.inputs[fieldTitle].SetValue(t.Title)
	m.inputs[fieldDescription].SetValue(t.Description)
	m.inputs[fieldPriority].SetValue(string(t.Priority))
	m.inputs[fieldCategory].SetValue(t.Category)
	if t.DueDate != nil {
		m.inputs[fieldDueDate].SetValue(t.DueDate.Local().Format(dueLayout))
	}
	m.inputs[fieldTags].SetValue(strings.Join(t.Tags, ", "))
	if t.EstimatedTime != nil {
		m.inputs[fieldEstimate].SetValue(strconv.Itoa(*t.EstimatedTime))
	}
}

// submitForm processes the form data based on the current mode.
// It returns false when the input was rejected and the form must stay open.
func (m *Model) submitForm() bool {
	title := strings.TrimSpace(m.inputs[fieldTitle].Value())
	desc := strings.TrimSpace(m.inputs[fieldDescription].Value())
	priority := task.Priority(strings.ToLower(strings.TrimSpace(m.inputs[fieldPriority].Value())))
	category := strings.TrimSpace(m.inputs[fieldCategory].Value())
	tags := ParseTags(m.inputs[fieldTags].Value())

	due, err := ParseDue(m.inputs[fieldDueDate].Value())
	if err != nil {
		m.err = err
		return false
	}
	estimate, err := ParseEstimate(m.inputs[fieldEstimate].Value())
	if err != nil {
		m.err = err
		return false
	}
	if category == "" {
		category = task.DefaultCategory
	}

	switch m.mode {
	case AddMode:
		err = m.dispatch(state.AddTask{Task: task.NewTask{
			Title:         title,
			Description:   desc,
			Priority:      priority,
			Category:      category,
			DueDate:       due,
			Tags:          tags,
			EstimatedTime: estimate,
		}})

	case EditMode:
		err = m.dispatch(state.UpdateTask{ID: m.editingID, Patch: task.Patch{
			Title:         &title,
			Description:   &desc,
			Priority:      &priority,
			Category:      &category,
			DueDate:       due,
			ClearDueDate:  due == nil,
			Tags:          &tags,
			EstimatedTime: estimate,
			ClearEstimate: estimate == nil,
		}})
	}
	if err != nil {
		utils.Log("Form rejected: %v", err)
		return false
	}

	// Reset state
	m.mode = NormalMode
	m.resetInputs()
	m.editingID = ""
	return true
}

// ParseDue accepts an empty string, a date, or a date with time in local time
func ParseDue(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{dueLayout, "2006-01-02T15:04", time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, &task.ValidationError{Field: "dueDate", Message: "invalid date format: use YYYY-MM-DD or YYYY-MM-DD HH:MM"}
}

// ParseEstimate accepts an empty string or a positive number of minutes
func ParseEstimate(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return nil, &task.ValidationError{Field: "estimatedTime", Message: "estimated time must be a positive number of minutes"}
	}
	return &n, nil
}

// ParseTags splits a comma separated list, dropping blanks and duplicates
func ParseTags(value string) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	for _, tag := range strings.Split(value, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// toggleTimer starts tracking the task or logs the elapsed seconds
func (m *Model) toggleTimer(id string) {
	start, running := m.timers[id]
	if !running {
		m.timers[id] = m.now()
		m.refresh()
		return
	}
	delete(m.timers, id)
	elapsed := int64(m.now().Sub(start) / time.Second)
	if elapsed > 0 {
		m.dispatch(state.LogTime{TaskID: id, Seconds: elapsed})
		return
	}
	m.refresh()
}

// nextStatus cycles all -> pending -> completed
func nextStatus(s task.Status) task.Status {
	switch s {
	case task.StatusAll:
		return task.StatusPending
	case task.StatusPending:
		return task.StatusCompleted
	}
	return task.StatusAll
}

// nextPriority cycles all -> low -> ... -> urgent -> all
func nextPriority(p string) string {
	if p == task.All {
		return string(task.Priorities[0])
	}
	for i, candidate := range task.Priorities {
		if string(candidate) == p && i+1 < len(task.Priorities) {
			return string(task.Priorities[i+1])
		}
	}
	return task.All
}

// nextOf cycles sentinel -> options... -> sentinel
func nextOf(current, sentinel string, options []string) string {
	if current == sentinel {
		if len(options) > 0 {
			return options[0]
		}
		return sentinel
	}
	for i, o := range options {
		if o == current && i+1 < len(options) {
			return options[i+1]
		}
	}
	return sentinel
}

// nextSortKey cycles through the sort keys
func nextSortKey(by task.SortBy) task.SortBy {
	for i, k := range task.SortKeys {
		if k == by {
			return task.SortKeys[(i+1)%len(task.SortKeys)]
		}
	}
	return task.SortKeys[0]
}
