package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"taskflow/pkg/state"
	"taskflow/pkg/task"
	"taskflow/pkg/utils"
	"taskflow/pkg/view"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case StateChangedMsg:
		m.refresh()
		return m, nil

	case ReminderSentMsg:
		m.status = fmt.Sprintf("Reminder sent: %s", msg.Reminder.Title)
		m.refresh()
		return m, nil

	case SaveFailedMsg:
		m.err = fmt.Errorf("changes not saved: %w", msg.Err)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case NormalMode:
			if quit := m.handleNormalKey(msg); quit {
				return m, tea.Quit
			}

		case AddMode, EditMode:
			switch msg.String() {
			case "esc":
				m.mode = NormalMode
				m.resetInputs()
				m.editingID = ""
				m.err = nil
				return m, nil

			case "tab", "down":
				m.focusNextInput()
				return m, nil

			case "shift+tab", "up":
				m.focusPreviousInput()
				return m, nil

			case "enter":
				// Submit on enter from the last field
				if m.activeInput == fieldCount-1 {
					m.submitForm()
				} else {
					m.focusNextInput()
				}
				return m, nil
			}

			// Handle input updates
			m.inputs[m.activeInput], cmd = m.inputs[m.activeInput].Update(msg)
			cmds = append(cmds, cmd)

		case DetailMode:
			m.handleDetailKey(msg)

		case SubtaskInputMode, NoteInputMode:
			switch msg.String() {
			case "esc":
				m.mode = DetailMode
				m.lineInput.Reset()
				m.lineInput.Blur()
				return m, nil

			case "enter":
				text := strings.TrimSpace(m.lineInput.Value())
				var err error
				if m.mode == SubtaskInputMode {
					err = m.dispatch(state.AddSubtask{TaskID: m.editingID, Title: text})
				} else {
					err = m.dispatch(state.AddNote{TaskID: m.editingID, Text: text})
				}
				if err == nil {
					m.mode = DetailMode
					m.lineInput.Reset()
					m.lineInput.Blur()
				}
				return m, nil
			}

			m.lineInput, cmd = m.lineInput.Update(msg)
			cmds = append(cmds, cmd)

		case DeleteConfirmMode:
			// Handle delete confirmation
			switch msg.String() {
			case "y", "Y":
				if m.editingID != "" {
					utils.Log("Deleting task ID: %s", m.editingID)
					delete(m.timers, m.editingID)
					m.dispatch(state.DeleteTask{ID: m.editingID})
				}
				m.mode = NormalMode
				m.editingID = ""

			case "n", "N", "esc":
				m.mode = NormalMode
				m.editingID = ""
			}

		case HelpViewMode:
			switch {
			case msg.String() == "esc", key.Matches(msg, m.keyMap.ShowHelp):
				m.mode = NormalMode
			case key.Matches(msg, m.keyMap.QuitApp):
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width - 4)
		m.table.SetHeight(msg.Height - 6)
	}

	// Only update table in normal mode
	if m.mode == NormalMode {
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleNormalKey processes a key in the task list. It reports whether the app should quit.
func (m *Model) handleNormalKey(msg tea.KeyMsg) bool {
	filter := m.store.State().Filter

	switch {
	case key.Matches(msg, m.keyMap.ShowHelp):
		m.mode = HelpViewMode

	case key.Matches(msg, m.keyMap.QuitApp):
		return true

	case key.Matches(msg, m.keyMap.ToggleStatus):
		if t, _, ok := m.selected(); ok {
			m.dispatch(state.ToggleTask{ID: t.ID})
		}

	case key.Matches(msg, m.keyMap.AddTask):
		m.mode = AddMode
		m.err = nil
		m.resetInputs()

	case key.Matches(msg, m.keyMap.EditTask):
		if t, _, ok := m.selected(); ok {
			m.openEdit(t)
		}

	case key.Matches(msg, m.keyMap.DeleteTask):
		if t, _, ok := m.selected(); ok {
			m.mode = DeleteConfirmMode
			m.editingID = t.ID
		}

	case key.Matches(msg, m.keyMap.ShowDetail):
		if t, _, ok := m.selected(); ok {
			m.mode = DetailMode
			m.editingID = t.ID
			m.detailCursor = 0
		}

	case key.Matches(msg, m.keyMap.ToggleTimer):
		if t, _, ok := m.selected(); ok {
			m.toggleTimer(t.ID)
		}

	case key.Matches(msg, m.keyMap.CycleStatus):
		status := nextStatus(filter.Status)
		m.dispatch(state.SetFilter{Patch: task.FilterPatch{Status: &status}})

	case key.Matches(msg, m.keyMap.CyclePriority):
		priority := nextPriority(filter.Priority)
		m.dispatch(state.SetFilter{Patch: task.FilterPatch{Priority: &priority}})

	case key.Matches(msg, m.keyMap.CycleCategory):
		category := nextOf(filter.Category, task.All, view.Categories(m.store.Tasks()))
		m.dispatch(state.SetFilter{Patch: task.FilterPatch{Category: &category}})

	case key.Matches(msg, m.keyMap.CycleTag):
		current := ""
		if len(filter.Tags) > 0 {
			current = filter.Tags[0]
		}
		tags := []string{}
		if next := nextOf(current, "", view.Tags(m.store.Tasks())); next != "" {
			tags = append(tags, next)
		}
		m.dispatch(state.SetFilter{Patch: task.FilterPatch{Tags: &tags}})

	case key.Matches(msg, m.keyMap.ToggleSortBy):
		by := nextSortKey(filter.SortBy)
		m.dispatch(state.SetFilter{Patch: task.FilterPatch{SortBy: &by}})

	case key.Matches(msg, m.keyMap.ToggleSortOrder):
		order := task.SortAsc
		if filter.SortOrder == task.SortAsc {
			order = task.SortDesc
		}
		m.dispatch(state.SetFilter{Patch: task.FilterPatch{SortOrder: &order}})

	case key.Matches(msg, m.keyMap.ToggleGroupBy):
		m.groupByCategory = !m.groupByCategory
		m.refresh()

	case key.Matches(msg, m.keyMap.MoveUp):
		m.move(-1)

	case key.Matches(msg, m.keyMap.MoveDown):
		m.move(1)

	case key.Matches(msg, m.keyMap.ToggleDarkMode):
		m.dispatch(state.ToggleDarkMode{})
	}
	return false
}

// move swaps the selected task with its on-screen neighbour
func (m *Model) move(delta int) {
	t, idx, ok := m.selected()
	if !ok {
		return
	}
	over := idx + delta
	if over < 0 || over >= len(m.items) {
		return
	}
	if err := m.dispatch(state.ReorderTasks{ActiveID: t.ID, OverID: m.items[over].ID}); err == nil {
		m.selectTask(t.ID)
	}
}

func (m *Model) openEdit(t task.Task) {
	m.mode = EditMode
	m.editingID = t.ID
	m.err = nil
	m.fillForm(t)
}

// handleDetailKey processes a key while a single task is open
func (m *Model) handleDetailKey(msg tea.KeyMsg) {
	t, ok := m.current()
	if !ok {
		// The task was removed while open
		m.mode = NormalMode
		m.editingID = ""
		return
	}

	switch {
	case msg.String() == "esc", key.Matches(msg, m.keyMap.ShowDetail):
		m.mode = NormalMode
		m.editingID = ""

	case msg.String() == "up", msg.String() == "k":
		if m.detailCursor > 0 {
			m.detailCursor--
		}

	case msg.String() == "down", msg.String() == "j":
		if m.detailCursor < len(t.Subtasks)+len(t.Notes)-1 {
			m.detailCursor++
		}

	case key.Matches(msg, m.keyMap.ToggleSubtask):
		if m.detailCursor < len(t.Subtasks) {
			m.dispatch(state.ToggleSubtask{TaskID: t.ID, SubtaskID: t.Subtasks[m.detailCursor].ID})
		}

	case key.Matches(msg, m.keyMap.DeleteSubtask):
		if m.detailCursor < len(t.Subtasks) {
			m.dispatch(state.DeleteSubtask{TaskID: t.ID, SubtaskID: t.Subtasks[m.detailCursor].ID})
			m.clampDetailCursor(len(t.Subtasks) + len(t.Notes) - 1)
		}

	case key.Matches(msg, m.keyMap.DeleteNote):
		// Notes follow the subtasks under the cursor
		if i := m.detailCursor - len(t.Subtasks); i >= 0 && i < len(t.Notes) {
			m.dispatch(state.DeleteNote{TaskID: t.ID, NoteID: t.Notes[i].ID})
			m.clampDetailCursor(len(t.Subtasks) + len(t.Notes) - 1)
		}

	case key.Matches(msg, m.keyMap.AddSubtask):
		m.mode = SubtaskInputMode
		m.lineInput.Placeholder = "Subtask title"
		m.lineInput.Reset()
		m.lineInput.Focus()

	case key.Matches(msg, m.keyMap.AddNote):
		m.mode = NoteInputMode
		m.lineInput.Placeholder = "Note"
		m.lineInput.Reset()
		m.lineInput.Focus()

	case key.Matches(msg, m.keyMap.ToggleStatus):
		m.dispatch(state.ToggleTask{ID: t.ID})

	case key.Matches(msg, m.keyMap.ToggleTimer):
		m.toggleTimer(t.ID)

	case key.Matches(msg, m.keyMap.EditTask):
		m.openEdit(t)
	}
}

func (m *Model) clampDetailCursor(items int) {
	if m.detailCursor >= items {
		m.detailCursor = items - 1
	}
	if m.detailCursor < 0 {
		m.detailCursor = 0
	}
}
