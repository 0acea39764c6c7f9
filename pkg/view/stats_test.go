package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskflow/pkg/task"
)

func TestComputeStats(t *testing.T) {
	now := base.AddDate(0, 0, 2)
	tasks := []task.Task{
		{ID: "1", Completed: true, TimeSpent: 100},
		{ID: "2", Completed: true, TimeSpent: 201},
		{ID: "3", Completed: true},
		{ID: "4", Priority: task.PriorityUrgent, DueDate: at(1), TimeSpent: 60},
		{ID: "5", Priority: task.PriorityUrgent, Completed: true, DueDate: at(1)},
		{ID: "6", DueDate: at(5)},
	}

	got := ComputeStats(tasks, now)
	assert.Equal(t, Stats{
		Total:                 6,
		Completed:             4,
		Pending:               2,
		Urgent:                1,
		Overdue:               1,
		TotalTimeSpent:        361,
		AverageCompletionTime: 151,
	}, got)
}

func TestComputeStatsEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil, time.Now()))
}

func TestSubtaskProgress(t *testing.T) {
	tk := task.Task{Subtasks: []task.Subtask{
		{ID: "a", Completed: true},
		{ID: "b"},
		{ID: "c"},
	}}
	assert.Equal(t, Progress{Completed: 1, Total: 3, Percent: 33}, SubtaskProgress(tk))

	tk.Subtasks[1].Completed = true
	assert.Equal(t, 67, SubtaskProgress(tk).Percent)

	assert.Equal(t, Progress{}, SubtaskProgress(task.Task{}))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m", FormatDuration(0))
	assert.Equal(t, "5m", FormatDuration(5*60+59))
	assert.Equal(t, "1h 5m", FormatDuration(3600+5*60))
	assert.Equal(t, "26h 0m", FormatDuration(26*3600))
}
