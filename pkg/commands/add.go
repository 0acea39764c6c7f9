package commands

import (
	"regexp"
	"strings"
	"time"

	"taskflow/pkg/state"
	"taskflow/pkg/task"
	"taskflow/pkg/utils"
)

var (
	tagRe      = regexp.MustCompile(`\+([\w-]+)`)
	categoryRe = regexp.MustCompile(`@([\w-]+)`)
	priorityRe = regexp.MustCompile(`!(low|medium|high|urgent)\b`)
	markerRe   = regexp.MustCompile(`\s*(?:[+@][\w-]+|!(?:low|medium|high|urgent)\b)\s*`)

	// markerValueRe matches the category and tag values a marker can carry
	markerValueRe = regexp.MustCompile(`^[\w-]+$`)
)

// AddOptions are the flags of the add command
type AddOptions struct {
	Description string
	Priority    string
	Category    string
	Due         string
	Tags        []string
	Estimate    int
}

// HandleAddTask creates a task from text. Inline +tag, @category and !priority markers
// are extracted from the text and merged with the flags.
func HandleAddTask(s *Session, text string, opts AddOptions) (task.Task, error) {
	in := task.NewTask{
		Title:       removeMarkers(text),
		Description: strings.TrimSpace(opts.Description),
		Priority:    task.Priority(strings.ToLower(strings.TrimSpace(opts.Priority))),
		Category:    strings.TrimSpace(opts.Category),
		Tags:        mergeTags(opts.Tags, extractTags(text)),
	}

	if in.Category == "" {
		in.Category = extractCategory(text)
	}
	if in.Priority == "" {
		in.Priority = extractPriority(text)
	}

	if opts.Due != "" {
		due, err := parseDate(opts.Due)
		if err != nil {
			return task.Task{}, err
		}
		in.DueDate = &due
	}

	if opts.Estimate != 0 {
		estimate := opts.Estimate
		in.EstimatedTime = &estimate
	}

	if err := s.Dispatch(state.AddTask{Task: in}); err != nil {
		return task.Task{}, err
	}

	// New tasks are prepended
	created := s.Store.Tasks()[0]
	utils.Log("Added task %s: %s", created.ID, created.Title)
	s.printf("Added task %s: %s\n", shortID(created.ID), created.Title)
	return created, nil
}

// extractTags finds all +tag markers in text
func extractTags(text string) []string {
	var tags []string
	for _, match := range tagRe.FindAllStringSubmatch(text, -1) {
		tags = append(tags, match[1])
	}
	return tags
}

// extractCategory returns the first @category marker in text
func extractCategory(text string) string {
	if match := categoryRe.FindStringSubmatch(text); match != nil {
		return match[1]
	}
	return ""
}

// extractPriority returns the first !priority marker in text
func extractPriority(text string) task.Priority {
	if match := priorityRe.FindStringSubmatch(text); match != nil {
		return task.Priority(match[1])
	}
	return ""
}

// removeMarkers removes +tag, @category and !priority markers from text for a clean title
func removeMarkers(text string) string {
	return strings.TrimSpace(markerRe.ReplaceAllString(text, " "))
}

func mergeTags(lists ...[]string) []string {
	seen := make(map[string]struct{})
	merged := []string{}
	for _, list := range lists {
		for _, tag := range list {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			merged = append(merged, tag)
		}
	}
	return merged
}

// parseDate accepts a date or a date with time, in local time
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(value), time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &task.ValidationError{Field: "dueDate", Message: "invalid date format: use YYYY-MM-DD or YYYY-MM-DD HH:MM"}
}
