package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"taskflow/pkg/task"
	"taskflow/pkg/view"
)

var fieldLabels = [fieldCount]string{
	"Title:",
	"Description:",
	"Priority:",
	"Category:",
	"Due Date:",
	"Tags:",
	"Estimate (minutes):",
}

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case NormalMode:
		// App Title Bar
		title := " Taskflow "
		if stats := view.ComputeStats(m.store.Tasks(), m.now()); stats.Total > 0 {
			title = fmt.Sprintf(" Taskflow - %d/%d done, %d overdue ", stats.Completed, stats.Total, stats.Overdue)
		}
		sb.WriteString(m.banner(title, m.styles.AccentColor))
		sb.WriteString("\n\n")

		// Table with tasks
		if len(m.items) == 0 {
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor)).Render("No tasks match the current filter."))
			sb.WriteString("\n")
		} else {
			sb.WriteString(m.table.View())
			sb.WriteString("\n")
		}

		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor)).Render(m.filterInfo()))
		sb.WriteString("\n")

		if m.status != "" {
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.AccentColor)).Render(m.status))
			sb.WriteString("\n")
		}

	case AddMode:
		sb.WriteString(m.banner(" Add New Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case EditMode:
		sb.WriteString(m.banner(" Edit Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case DetailMode, SubtaskInputMode, NoteInputMode:
		sb.WriteString(m.renderDetail())

	case DeleteConfirmMode:
		sb.WriteString(m.banner(" Delete Task ", m.styles.ErrorColor))
		sb.WriteString("\n\n")

		if t, ok := m.current(); ok {
			sb.WriteString("Are you sure you want to delete this task?\n\n")
			sb.WriteString(fmt.Sprintf("Title: %s\n", t.Title))
			sb.WriteString(fmt.Sprintf("Description: %s\n", t.Description))
			if n := len(t.Subtasks) + len(t.Notes) + len(t.Attachments); n > 0 {
				sb.WriteString(fmt.Sprintf("Also removes %d subtask(s), note(s) and attachment(s)\n", n))
			}
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
		}

	case HelpViewMode:
		sb.WriteString(m.renderHelp())
	}

	// Error message if any
	if m.err != nil {
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.ErrorColor)).Render(fmt.Sprintf("Error: %v", m.err)))
	}

	// Add help status bar at the bottom
	sb.WriteString("\n")
	sb.WriteString(m.helpBar())

	return sb.String()
}

func (m Model) banner(text, bg string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(text)
}

// filterInfo describes the active filter and ordering
func (m Model) filterInfo() string {
	f := m.store.State().Filter

	parts := []string{fmt.Sprintf("Showing %d task(s)", len(m.items))}
	if f.Status != task.StatusAll {
		parts = append(parts, fmt.Sprintf("status: %s", f.Status))
	}
	if f.Priority != task.All {
		parts = append(parts, fmt.Sprintf("priority: %s", f.Priority))
	}
	if f.Category != task.All {
		parts = append(parts, fmt.Sprintf("category: %s", f.Category))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, fmt.Sprintf("tags: %s", strings.Join(f.Tags, ", ")))
	}

	sortInfo := fmt.Sprintf("sorted by %s (%s)", f.SortBy, f.SortOrder)
	if m.groupByCategory {
		sortInfo += ", grouped by category"
	}
	parts = append(parts, sortInfo)

	return strings.Join(parts, " | ")
}

// renderForm renders the input form for adding/editing tasks
func (m Model) renderForm() string {
	var sb strings.Builder

	for i := range m.inputs {
		sb.WriteString(fieldLabels[i])
		sb.WriteString("\n")
		sb.WriteString(m.inputs[i].View())
		if i < len(m.inputs)-1 {
			sb.WriteString("\n\n")
		}
	}

	return sb.String()
}

// renderDetail shows a single task with its subtasks, notes and attachments
func (m Model) renderDetail() string {
	var sb strings.Builder

	t, ok := m.current()
	if !ok {
		return "Task no longer exists."
	}

	sb.WriteString(m.banner(" "+t.Title+" ", m.styles.AccentColor))
	sb.WriteString("\n\n")

	label := lipgloss.NewStyle().Bold(true)
	status := "pending"
	if t.Completed {
		status = "completed"
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Status:"), status))
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Priority:"), t.Priority))
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Category:"), t.Category))
	if t.DueDate != nil {
		sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Due:"), t.DueDate.Local().Format(dueLayout)))
	}
	if len(t.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Tags:"), strings.Join(t.Tags, ", ")))
	}
	tracked := view.FormatDuration(t.TimeSpent)
	if t.EstimatedTime != nil {
		tracked += fmt.Sprintf(" of %s estimated", view.FormatDuration(int64(*t.EstimatedTime)*60))
	}
	if _, running := m.timers[t.ID]; running {
		tracked += " (tracking)"
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Time:"), tracked))
	if t.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(t.Description)
		sb.WriteString("\n")
	}

	p := view.SubtaskProgress(t)
	sb.WriteString("\n")
	sb.WriteString(label.Render(fmt.Sprintf("Subtasks (%d/%d, %d%%)", p.Completed, p.Total, p.Percent)))
	sb.WriteString("\n")
	selected := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(m.styles.SelectedBgColor))
	for i, st := range t.Subtasks {
		check := "[ ]"
		if st.Completed {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s", check, st.Title)
		if i == m.detailCursor && m.mode == DetailMode {
			line = selected.Render(line)
		}
		sb.WriteString("  " + line + "\n")
	}

	if len(t.Notes) > 0 {
		sb.WriteString("\n")
		sb.WriteString(label.Render("Notes"))
		sb.WriteString("\n")
		for i, n := range t.Notes {
			line := fmt.Sprintf("%s  %s", n.CreatedAt.Local().Format(dueLayout), n.Text)
			if len(t.Subtasks)+i == m.detailCursor && m.mode == DetailMode {
				line = selected.Render(line)
			}
			sb.WriteString("  " + line + "\n")
		}
	}

	if len(t.Attachments) > 0 {
		sb.WriteString("\n")
		sb.WriteString(label.Render("Attachments"))
		sb.WriteString("\n")
		for _, a := range t.Attachments {
			sb.WriteString(fmt.Sprintf("  %s (%s, %d bytes)\n", a.Name, a.Type, a.Size))
		}
	}

	switch m.mode {
	case SubtaskInputMode:
		sb.WriteString("\nNew subtask:\n")
		sb.WriteString(m.lineInput.View())
	case NoteInputMode:
		sb.WriteString("\nNew note:\n")
		sb.WriteString(m.lineInput.View())
	}

	return sb.String()
}

// renderHelp renders the fullscreen commands view
func (m Model) renderHelp() string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Commands"))
	sb.WriteString("\n\n")

	// Define a style for command keys
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)

	// Define a style for command descriptions
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))

	addCommand := func(binding key.Binding) {
		sb.WriteString(fmt.Sprintf("%s: %s\n",
			descStyle.Render(binding.Help().Desc),
			keyStyle.Render(binding.Help().Key)))
	}

	addCommand(m.keyMap.QuitApp)
	addCommand(m.keyMap.ShowHelp)
	addCommand(m.keyMap.ToggleStatus)
	addCommand(m.keyMap.AddTask)
	addCommand(m.keyMap.EditTask)
	addCommand(m.keyMap.DeleteTask)
	addCommand(m.keyMap.ShowDetail)
	addCommand(m.keyMap.ToggleTimer)
	addCommand(m.keyMap.ToggleDarkMode)

	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Filter and Sort"))
	sb.WriteString("\n\n")
	addCommand(m.keyMap.CycleStatus)
	addCommand(m.keyMap.CyclePriority)
	addCommand(m.keyMap.CycleCategory)
	addCommand(m.keyMap.CycleTag)
	addCommand(m.keyMap.ToggleSortBy)
	addCommand(m.keyMap.ToggleSortOrder)
	addCommand(m.keyMap.ToggleGroupBy)
	addCommand(m.keyMap.MoveUp)
	addCommand(m.keyMap.MoveDown)

	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Task Details"))
	sb.WriteString("\n\n")
	addCommand(m.keyMap.AddSubtask)
	addCommand(m.keyMap.ToggleSubtask)
	addCommand(m.keyMap.DeleteSubtask)
	addCommand(m.keyMap.AddNote)
	addCommand(m.keyMap.DeleteNote)

	return sb.String()
}

// helpBar renders a sleek status bar with available actions
func (m Model) helpBar() string {
	var actions []string

	// Define styles for keys and descriptions
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))
	separatorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.BorderColor))

	separator := separatorStyle.Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), descStyle.Render(desc)))
	}
	addBinding := func(b key.Binding, desc string) {
		addAction(b.Help().Key, desc)
	}

	switch m.mode {
	case NormalMode:
		addBinding(m.keyMap.AddTask, "add")
		addBinding(m.keyMap.EditTask, "edit")
		addBinding(m.keyMap.DeleteTask, "del")
		addBinding(m.keyMap.ToggleStatus, "toggle")
		addBinding(m.keyMap.ShowDetail, "open")
		addAction("f/p/c/#", "filter")
		addAction("s/o/g", "sort/ord/grp")
		addBinding(m.keyMap.ShowHelp, "help")
		addBinding(m.keyMap.QuitApp, "quit")

	case AddMode, EditMode:
		addAction("tab", "next field")
		addAction("enter", "save")
		addAction("esc", "cancel")

	case DetailMode:
		addAction("↑/↓", "select")
		addBinding(m.keyMap.ToggleSubtask, "toggle")
		addBinding(m.keyMap.DeleteSubtask, "del")
		addBinding(m.keyMap.AddSubtask, "add subtask")
		addBinding(m.keyMap.AddNote, "note")
		addBinding(m.keyMap.DeleteNote, "del note")
		addBinding(m.keyMap.ToggleTimer, "timer")
		addAction("esc", "back")

	case SubtaskInputMode, NoteInputMode:
		addAction("enter", "save")
		addAction("esc", "cancel")

	case DeleteConfirmMode:
		addAction("y", "confirm")
		addAction("n", "cancel")

	case HelpViewMode:
		addAction("esc", "back")
		addBinding(m.keyMap.QuitApp, "quit")
	}

	return strings.Join(actions, separator)
}
