package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskflow/pkg/config"
	"taskflow/pkg/keymaps"
	"taskflow/pkg/reminder"
	"taskflow/pkg/state"
	"taskflow/pkg/task"
)

// InputMode represents the current input mode
type InputMode int

const (
	NormalMode InputMode = iota
	AddMode
	EditMode
	DeleteConfirmMode
	DetailMode
	SubtaskInputMode
	NoteInputMode
	HelpViewMode
)

// Form field indexes
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldCategory
	fieldDueDate
	fieldTags
	fieldEstimate
	fieldCount
)

// StateChangedMsg tells the UI that the store moved to a new state
type StateChangedMsg struct{}

// ReminderSentMsg reports a confirmed reminder
type ReminderSentMsg struct {
	Reminder reminder.Reminder
}

// SaveFailedMsg reports a persistence failure; the in-memory state stays authoritative
type SaveFailedMsg struct {
	Err error
}

// Model represents the application state
type Model struct {
	table         table.Model
	items         []task.Task
	rowTask       []int // table row -> index in items, -1 for group headers
	store         *state.Store
	scheduler     *reminder.Scheduler
	width, height int
	err           error
	status        string

	// Configuration
	config config.Config
	styles config.Styles
	dark   bool
	keyMap keymaps.KeyMap

	// View state
	groupByCategory bool

	// Form state
	mode        InputMode
	inputs      []textinput.Model
	lineInput   textinput.Model
	activeInput int

	// Edit/delete/detail state
	editingID    string
	detailCursor int

	// Running time trackers by task id
	timers map[string]time.Time
	now    func() time.Time
}

// NewModel creates a new UI model bound to store
func NewModel(store *state.Store, cfg config.Config, scheduler *reminder.Scheduler) Model {
	// Create an empty column - the title will be empty to avoid showing a header
	columns := []table.Column{
		{Title: "", Width: 90},
	}

	// Letters and space belong to the task actions, the table only gets navigation keys
	tableKeys := table.DefaultKeyMap()
	tableKeys.PageUp = key.NewBinding(key.WithKeys("pgup"))
	tableKeys.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	tableKeys.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))
	tableKeys.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	tableKeys.GotoTop = key.NewBinding(key.WithKeys("home"))
	tableKeys.GotoBottom = key.NewBinding(key.WithKeys("end"))

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
		table.WithKeyMap(tableKeys),
	)

	placeholders := []string{
		"Title (required)",
		"Description",
		"Priority: low, medium, high, urgent",
		"Category",
		"Due (YYYY-MM-DD or YYYY-MM-DD HH:MM, optional)",
		"Tags, comma separated",
		"Estimated minutes (optional)",
	}
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Width = 50
		inputs[i] = in
	}

	lineInput := textinput.New()
	lineInput.Width = 50

	m := Model{
		table:     t,
		store:     store,
		scheduler: scheduler,
		config:    cfg,
		keyMap:    keymaps.BuildKeyMap(cfg.KeyMap),
		mode:      NormalMode,
		inputs:    inputs,
		lineInput: lineInput,
		timers:    make(map[string]time.Time),
		now:       time.Now,
	}
	m.applyTheme(store.State().DarkMode)
	m.refresh()

	return m
}

// Init initializes the model (required by Bubble Tea Model interface)
func (m Model) Init() tea.Cmd {
	return nil
}

// applyTheme switches the palette and table styles
func (m *Model) applyTheme(dark bool) {
	m.dark = dark
	m.styles = m.config.Palette(dark)

	s := table.DefaultStyles()
	// Remove the header border and styling to make it invisible
	s.Header = s.Header.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderBottom(false).
		Bold(false).
		Foreground(lipgloss.NoColor{})

	s.Selected = s.Selected.
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(m.styles.SelectedBgColor)).
		Bold(true)
	m.table.SetStyles(s)
}

// resetInputs clears all form inputs
func (m *Model) resetInputs() {
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.inputs[fieldPriority].SetValue(string(task.PriorityMedium))
	m.inputs[fieldCategory].SetValue(task.DefaultCategory)

	m.activeInput = 0
	m.inputs[0].Focus()
}
