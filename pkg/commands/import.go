package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"taskflow/pkg/state"
	"taskflow/pkg/task"
	"taskflow/pkg/utils"
)

var dateLineRe = regexp.MustCompile(`^(?:(\d{2})\.(\d{2})\.(\d{4})|(\d{4})-(\d{2})-(\d{2})):?$`)

// HandleImportCommand adds the tasks found in filename. The format follows the
// extension: .json and .yaml hold exported task lists, anything else is read as txt.
// Imported tasks get fresh ids.
func HandleImportCommand(s *Session, filename string) (int, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filename, err)
	}

	var tasks []task.NewTask
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		var decoded []task.Task
		if err := json.Unmarshal(content, &decoded); err != nil {
			return 0, fmt.Errorf("parse %s: %w", filename, err)
		}
		tasks = fromTasks(s, decoded)
	case ".yaml", ".yml":
		var decoded []task.Task
		if err := yaml.Unmarshal(content, &decoded); err != nil {
			return 0, fmt.Errorf("parse %s: %w", filename, err)
		}
		tasks = fromTasks(s, decoded)
	default:
		tasks = parseTxt(string(content))
	}

	// Dispatch oldest first so the file order survives prepending
	added := 0
	for i := len(tasks) - 1; i >= 0; i-- {
		if err := s.Dispatch(state.AddTask{Task: tasks[i]}); err != nil {
			utils.Log("Skipping imported task %q: %v", tasks[i].Title, err)
			s.printf("Error adding task '%s': %v\n", tasks[i].Title, err)
			continue
		}
		added++
	}

	s.printf("Successfully imported %d task(s) from %s\n", added, filename)
	return added, nil
}

// fromTasks turns exported tasks into new ones. Attachment bodies live in the
// blob store and are not part of an export, so attachments are reported and skipped.
func fromTasks(s *Session, tasks []task.Task) []task.NewTask {
	out := make([]task.NewTask, 0, len(tasks))
	for _, t := range tasks {
		if n := len(t.Attachments); n > 0 {
			utils.Log("Import skips %d attachment(s) of %q", n, t.Title)
			s.printf("Skipping %d attachment(s) of '%s': attachment contents are not part of exports\n", n, t.Title)
		}
		out = append(out, task.NewTask{
			Title:         t.Title,
			Description:   t.Description,
			Completed:     t.Completed,
			Priority:      t.Priority,
			Category:      t.Category,
			DueDate:       t.DueDate,
			Subtasks:      t.Subtasks,
			TimeSpent:     t.TimeSpent,
			Notes:         t.Notes,
			Tags:          t.Tags,
			EstimatedTime: t.EstimatedTime,
		})
	}
	return out
}

// parseTxt reads the txt export format: date header lines followed by "- [x] title" items
func parseTxt(content string) []task.NewTask {
	var tasks []task.NewTask
	var currentDate *time.Time

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.EqualFold(line, "No due date:") {
			currentDate = nil
			continue
		}

		// Check if line is a date (DD.MM.YYYY: or YYYY-MM-DD: format)
		if dateMatch := dateLineRe.FindStringSubmatch(line); dateMatch != nil {
			var day, month, year int
			if dateMatch[1] != "" {
				day, _ = strconv.Atoi(dateMatch[1])
				month, _ = strconv.Atoi(dateMatch[2])
				year, _ = strconv.Atoi(dateMatch[3])
			} else {
				year, _ = strconv.Atoi(dateMatch[4])
				month, _ = strconv.Atoi(dateMatch[5])
				day, _ = strconv.Atoi(dateMatch[6])
			}
			d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
			currentDate = &d
			continue
		}

		// Check if line is a task (starts with -)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		text := strings.TrimSpace(strings.TrimPrefix(line, "- "))

		completed := false
		if strings.HasPrefix(text, "[x]") {
			completed = true
			text = strings.TrimSpace(strings.TrimPrefix(text, "[x]"))
		} else if strings.HasPrefix(text, "[ ]") {
			text = strings.TrimSpace(strings.TrimPrefix(text, "[ ]"))
		}
		if text == "" {
			continue
		}

		nt := task.NewTask{
			Title:     removeMarkers(text),
			Completed: completed,
			Priority:  extractPriority(text),
			Category:  extractCategory(text),
			Tags:      mergeTags(extractTags(text)),
		}
		if currentDate != nil {
			d := *currentDate
			nt.DueDate = &d
		}
		tasks = append(tasks, nt)
	}
	return tasks
}
