package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"taskflow/pkg/task"
	"taskflow/pkg/utils"
	"taskflow/pkg/view"
)

const txtDateLayout = "02.01.2006"

// HandleExportCommand writes all tasks to filename as json, yaml or txt
func HandleExportCommand(s *Session, filename, exportType string) error {
	// Export in due date order so the txt sections come out grouped
	tasks := view.SortTasks(s.Store.Tasks(), task.SortByDueDate, task.SortAsc)

	content, err := encodeTasks(tasks, exportType)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}

	s.printf("Successfully exported %d task(s) to %s\n", len(tasks), filename)
	return nil
}

func encodeTasks(tasks []task.Task, exportType string) ([]byte, error) {
	switch exportType {
	case "json":
		content, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal tasks to JSON: %w", err)
		}
		return content, nil

	case "yaml", "yml":
		content, err := yaml.Marshal(tasks)
		if err != nil {
			return nil, fmt.Errorf("marshal tasks to YAML: %w", err)
		}
		return content, nil

	case "txt":
		var lines []string
		lastDate := ""
		for _, t := range tasks {
			dateStr := "none"
			if t.DueDate != nil {
				dateStr = t.DueDate.Local().Format(txtDateLayout)
			}
			if dateStr != lastDate {
				if dateStr == "none" {
					lines = append(lines, "\nNo due date:")
				} else {
					lines = append(lines, fmt.Sprintf("\n%s:", dateStr))
				}
				lastDate = dateStr
			}
			lines = append(lines, "- "+formatTxtLine(t))
		}
		return []byte(strings.TrimSpace(strings.Join(lines, "\n")) + "\n"), nil
	}
	return nil, fmt.Errorf("unknown export type: %s", exportType)
}

// formatTxtLine renders a task in the same marker syntax the add command accepts.
// Categories and tags a marker cannot carry, such as values with spaces, are left out.
func formatTxtLine(t task.Task) string {
	status := " "
	if t.Completed {
		status = "x"
	}
	parts := []string{fmt.Sprintf("[%s]", status), t.Title}
	if t.Priority != task.PriorityMedium {
		parts = append(parts, "!"+string(t.Priority))
	}
	if t.Category != task.DefaultCategory {
		if markerValueRe.MatchString(t.Category) {
			parts = append(parts, "@"+t.Category)
		} else {
			utils.Log("Txt export drops category %q of task %s", t.Category, t.ID)
		}
	}
	for _, tag := range t.Tags {
		if markerValueRe.MatchString(tag) {
			parts = append(parts, "+"+tag)
		} else {
			utils.Log("Txt export drops tag %q of task %s", tag, t.ID)
		}
	}
	return strings.Join(parts, " ")
}
