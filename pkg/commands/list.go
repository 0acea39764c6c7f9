package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"taskflow/pkg/state"
	"taskflow/pkg/task"
	"taskflow/pkg/view"
)

// ListOptions are the flags of the list command. Empty fields keep the saved filter.
type ListOptions struct {
	Status    string
	Priority  string
	Category  string
	Tags      []string
	SortBy    string
	SortOrder string
}

// filter merges the options into base and validates the result
func (o ListOptions) filter(base task.Filter) (task.Filter, error) {
	var p task.FilterPatch
	if o.Status != "" {
		status := task.Status(o.Status)
		p.Status = &status
	}
	if o.Priority != "" {
		p.Priority = &o.Priority
	}
	if o.Category != "" {
		p.Category = &o.Category
	}
	if len(o.Tags) > 0 {
		p.Tags = &o.Tags
	}
	if o.SortBy != "" {
		by := task.SortBy(o.SortBy)
		p.SortBy = &by
	}
	if o.SortOrder != "" {
		order := task.SortOrder(o.SortOrder)
		p.SortOrder = &order
	}

	f := p.Apply(base)
	if err := task.ValidateFilter(f); err != nil {
		return task.Filter{}, err
	}
	return f, nil
}

// HandleList prints the tasks matching the options. The saved filter is not changed.
func HandleList(s *Session, opts ListOptions) ([]task.Task, error) {
	f, err := opts.filter(s.Store.State().Filter)
	if err != nil {
		return nil, err
	}

	tasks := view.Project(s.Store.Tasks(), f)
	if len(tasks) == 0 {
		s.printf("No tasks found.\n")
		return tasks, nil
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		status := "[ ]"
		if t.Completed {
			status = "[x]"
		}
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			shortID(t.ID), status, string(t.Priority), t.Category, due, t.Title, strings.Join(t.Tags, ","),
		})
	}

	tbl := plainTable().
		Headers("ID", "STATUS", "PRIORITY", "CATEGORY", "DUE", "TITLE", "TAGS").
		Rows(rows...)
	fmt.Fprintln(s.Out, tbl.Render())
	return tasks, nil
}

// HandleDone marks a task completed. Completed tasks are left untouched.
func HandleDone(s *Session, id string) error {
	t, err := s.ResolveID(id)
	if err != nil {
		return err
	}
	if t.Completed {
		s.printf("Task %s is already completed\n", shortID(t.ID))
		return nil
	}
	if err := s.Dispatch(state.ToggleTask{ID: t.ID}); err != nil {
		return err
	}
	s.printf("Completed task %s: %s\n", shortID(t.ID), t.Title)
	return nil
}

// HandleDelete removes a task with its subtasks, notes and attachments
func HandleDelete(s *Session, id string) error {
	t, err := s.ResolveID(id)
	if err != nil {
		return err
	}
	if err := s.Dispatch(state.DeleteTask{ID: t.ID}); err != nil {
		return err
	}
	s.printf("Deleted task %s: %s\n", shortID(t.ID), t.Title)
	return nil
}

// HandleStats prints summary counters of the task list
func HandleStats(s *Session) view.Stats {
	stats := view.ComputeStats(s.Store.Tasks(), timeNow())

	tbl := plainTable().Rows(
		[]string{"Total:", fmt.Sprint(stats.Total)},
		[]string{"Completed:", fmt.Sprint(stats.Completed)},
		[]string{"Pending:", fmt.Sprint(stats.Pending)},
		[]string{"Urgent:", fmt.Sprint(stats.Urgent)},
		[]string{"Overdue:", fmt.Sprint(stats.Overdue)},
		[]string{"Time spent:", view.FormatDuration(stats.TotalTimeSpent)},
		[]string{"Avg per completed task:", view.FormatDuration(stats.AverageCompletionTime)},
	)
	fmt.Fprintln(s.Out, tbl.Render())

	return stats
}

// plainTable is a borderless table for terminal and piped output.
// lipgloss drops the header styling when the output is not a terminal.
func plainTable() *table.Table {
	cell := lipgloss.NewStyle().PaddingRight(1)
	header := cell.Copy().Bold(true)

	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}
