package keymaps

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":        {"?", "show/hide commands"},
	"QuitApp":         {"q,ctrl+c", "quit"},
	"ToggleStatus":    {"space", "toggle completed"},
	"AddTask":         {"a", "add task"},
	"EditTask":        {"e", "edit task"},
	"DeleteTask":      {"d", "delete task"},
	"ShowDetail":      {"enter", "open task details"},
	"AddSubtask":      {"n", "add subtask"},
	"ToggleSubtask":   {"x", "toggle subtask"},
	"DeleteSubtask":   {"X", "delete subtask"},
	"AddNote":         {"m", "add note"},
	"DeleteNote":      {"M", "delete note"},
	"ToggleTimer":     {"t", "start/stop time tracking"},
	"CycleStatus":     {"f", "cycle status filter"},
	"CyclePriority":   {"p", "cycle priority filter"},
	"CycleCategory":   {"c", "cycle category filter"},
	"CycleTag":        {"#", "cycle tag filter"},
	"ToggleSortBy":    {"s", "cycle sort by"},
	"ToggleSortOrder": {"o", "toggle sort order"},
	"ToggleGroupBy":   {"g", "group by category"},
	"MoveUp":          {"K,shift+up", "move task up"},
	"MoveDown":        {"J,shift+down", "move task down"},
	"ToggleDarkMode":  {"ctrl+t", "toggle dark mode"},
}

type KeyMap struct {
	ShowHelp        key.Binding
	QuitApp         key.Binding
	ToggleStatus    key.Binding
	AddTask         key.Binding
	EditTask        key.Binding
	DeleteTask      key.Binding
	ShowDetail      key.Binding
	AddSubtask      key.Binding
	ToggleSubtask   key.Binding
	DeleteSubtask   key.Binding
	AddNote         key.Binding
	DeleteNote      key.Binding
	ToggleTimer     key.Binding
	CycleStatus     key.Binding
	CyclePriority   key.Binding
	CycleCategory   key.Binding
	CycleTag        key.Binding
	ToggleSortBy    key.Binding
	ToggleSortOrder key.Binding
	ToggleGroupBy   key.Binding
	MoveUp          key.Binding
	MoveDown        key.Binding
	ToggleDarkMode  key.Binding
}

func (km *KeyMap) slots() map[string]*key.Binding {
	return map[string]*key.Binding{
		"ShowHelp":        &km.ShowHelp,
		"QuitApp":         &km.QuitApp,
		"ToggleStatus":    &km.ToggleStatus,
		"AddTask":         &km.AddTask,
		"EditTask":        &km.EditTask,
		"DeleteTask":      &km.DeleteTask,
		"ShowDetail":      &km.ShowDetail,
		"AddSubtask":      &km.AddSubtask,
		"ToggleSubtask":   &km.ToggleSubtask,
		"DeleteSubtask":   &km.DeleteSubtask,
		"AddNote":         &km.AddNote,
		"DeleteNote":      &km.DeleteNote,
		"ToggleTimer":     &km.ToggleTimer,
		"CycleStatus":     &km.CycleStatus,
		"CyclePriority":   &km.CyclePriority,
		"CycleCategory":   &km.CycleCategory,
		"CycleTag":        &km.CycleTag,
		"ToggleSortBy":    &km.ToggleSortBy,
		"ToggleSortOrder": &km.ToggleSortOrder,
		"ToggleGroupBy":   &km.ToggleGroupBy,
		"MoveUp":          &km.MoveUp,
		"MoveDown":        &km.MoveDown,
		"ToggleDarkMode":  &km.ToggleDarkMode,
	}
}

// BuildKeyMap creates the key bindings, applying overrides from the config.
// Override names are matched case-insensitively since viper lowercases map keys.
func BuildKeyMap(configOverrides map[string]string) KeyMap {
	overrides := make(map[string]string, len(configOverrides))
	for action, keys := range configOverrides {
		overrides[strings.ToLower(action)] = keys
	}

	km := KeyMap{}
	slots := km.slots()
	for action, def := range KeyDefinitions {
		keyStr := def.DefaultKey
		if override, exists := overrides[strings.ToLower(action)]; exists && override != "" {
			keyStr = override
		}
		*slots[action] = parseKeyBinding(keyStr, def.DefaultKey, def.Help)
	}
	return km
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if keyStr == "" {
		keyStr = defaultKey
	}

	// Handle multiple keys separated by commas
	keys := strings.Split(keyStr, ",")
	for i, k := range keys {
		keys[i] = strings.TrimSpace(k)
	}
	helpKey := keys[0]

	// bubbletea reports the space bar as " "
	for i, k := range keys {
		if k == "space" {
			keys[i] = " "
		}
	}

	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(helpKey, helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}
