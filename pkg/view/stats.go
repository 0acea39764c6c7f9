package view

import (
	"fmt"
	"time"

	"taskflow/pkg/task"
)

// Stats summarizes a task list
type Stats struct {
	Total                 int
	Completed             int
	Pending               int
	Urgent                int // urgent and not completed
	Overdue               int
	TotalTimeSpent        int64
	AverageCompletionTime int64 // seconds, over completed tasks with tracked time
}

// ComputeStats counts tasks relative to now
func ComputeStats(tasks []task.Task, now time.Time) Stats {
	var st Stats
	var trackedDone int64
	var trackedDoneCount int64

	for _, t := range tasks {
		st.Total++
		st.TotalTimeSpent += t.TimeSpent

		if t.Completed {
			st.Completed++
			if t.TimeSpent > 0 {
				trackedDone += t.TimeSpent
				trackedDoneCount++
			}
			continue
		}

		st.Pending++
		if t.Priority == task.PriorityUrgent {
			st.Urgent++
		}
		if t.DueDate != nil && t.DueDate.Before(now) {
			st.Overdue++
		}
	}

	if trackedDoneCount > 0 {
		// round half up
		st.AverageCompletionTime = (trackedDone*2 + trackedDoneCount) / (trackedDoneCount * 2)
	}
	return st
}

// Progress is the subtask completion of a single task
type Progress struct {
	Completed int
	Total     int
	Percent   int
}

// SubtaskProgress reports how many subtasks of t are done
func SubtaskProgress(t task.Task) Progress {
	p := Progress{Total: len(t.Subtasks)}
	for _, st := range t.Subtasks {
		if st.Completed {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = (p.Completed*200 + p.Total) / (p.Total * 2)
	}
	return p
}

// FormatDuration renders seconds as "1h 5m" or "5m"
func FormatDuration(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
