package view

import (
	"sort"
	"time"

	"taskflow/pkg/task"
)

// Project filters tasks by f and orders the survivors by f.SortBy and f.SortOrder.
// The input slice is never modified.
func Project(tasks []task.Task, f task.Filter) []task.Task {
	return SortTasks(FilterTasks(tasks, f), f.SortBy, f.SortOrder)
}

// FilterTasks applies status, priority, category and tag filters in that order.
// Tags match when the task carries at least one of the filter tags.
func FilterTasks(tasks []task.Task, f task.Filter) []task.Task {
	filtered := make([]task.Task, 0, len(tasks))

	for _, t := range tasks {
		switch f.Status {
		case task.StatusCompleted:
			if !t.Completed {
				continue
			}
		case task.StatusPending:
			if t.Completed {
				continue
			}
		}

		if f.Priority != "" && f.Priority != task.All && string(t.Priority) != f.Priority {
			continue
		}

		if f.Category != "" && f.Category != task.All && t.Category != f.Category {
			continue
		}

		if len(f.Tags) > 0 && !hasAnyTag(t, f.Tags) {
			continue
		}

		filtered = append(filtered, t)
	}

	return filtered
}

// SortTasks returns a stably sorted copy of tasks.
// Tasks without a due date always come last when sorting by due date, in both directions.
func SortTasks(tasks []task.Task, by task.SortBy, order task.SortOrder) []task.Task {
	sortedTasks := make([]task.Task, len(tasks))
	copy(sortedTasks, tasks)

	desc := order == task.SortDesc

	sort.SliceStable(sortedTasks, func(i, j int) bool {
		a, b := sortedTasks[i], sortedTasks[j]

		var cmp int
		switch by {
		case task.SortByCreated:
			cmp = compareTime(a.CreatedAt, b.CreatedAt)
		case task.SortByUpdated:
			cmp = compareTime(a.UpdatedAt, b.UpdatedAt)
		case task.SortByPriority:
			cmp = a.Priority.Rank() - b.Priority.Rank()
		case task.SortByDueDate:
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return false
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			}
			cmp = compareTime(*a.DueDate, *b.DueDate)
		default:
			return false
		}

		if desc {
			return cmp > 0
		}
		return cmp < 0
	})

	return sortedTasks
}

// Group is a named run of tasks
type Group struct {
	Name  string
	Tasks []task.Task
}

// GroupByCategory splits already ordered tasks by category, groups sorted by name.
// Order inside each group is preserved.
func GroupByCategory(tasks []task.Task) []Group {
	groups := make(map[string][]task.Task)
	for _, t := range tasks {
		groups[t.Category] = append(groups[t.Category], t)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Group, 0, len(names))
	for _, name := range names {
		result = append(result, Group{Name: name, Tasks: groups[name]})
	}
	return result
}

// Categories returns the distinct task categories in alphabetical order, without the "all" sentinel
func Categories(tasks []task.Task) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, t := range tasks {
		if t.Category == task.All {
			continue
		}
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		categories = append(categories, t.Category)
	}
	sort.Strings(categories)
	return categories
}

// Tags returns the distinct tags across all tasks in alphabetical order
func Tags(tasks []task.Task) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, t := range tasks {
		for _, tag := range t.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

func hasAnyTag(t task.Task, tags []string) bool {
	for _, tag := range tags {
		if t.HasTag(tag) {
			return true
		}
	}
	return false
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
