package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/pkg/task"
)

var base = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

func at(days int) *time.Time {
	t := base.AddDate(0, 0, days)
	return &t
}

func ids(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func fixture() []task.Task {
	return []task.Task{
		{ID: "a", Priority: task.PriorityLow, Category: "Work", Tags: []string{"q1"}, DueDate: at(3), CreatedAt: base, UpdatedAt: base.Add(5 * time.Hour)},
		{ID: "b", Priority: task.PriorityUrgent, Category: "Home", Completed: true, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)},
		{ID: "c", Priority: task.PriorityMedium, Category: "Work", Tags: []string{"q2", "later"}, DueDate: at(1), CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "d", Priority: task.PriorityMedium, Category: "Home", CreatedAt: base.Add(3 * time.Hour), UpdatedAt: base.Add(4 * time.Hour)},
		{ID: "e", Priority: task.PriorityHigh, Category: "Work", Tags: []string{"q1"}, DueDate: at(2), CreatedAt: base.Add(4 * time.Hour), UpdatedAt: base.Add(4 * time.Hour)},
	}
}

func filter(fn func(f *task.Filter)) task.Filter {
	f := task.DefaultFilter()
	if fn != nil {
		fn(&f)
	}
	return f
}

func TestFilterTasks(t *testing.T) {
	tests := []struct {
		name string
		f    task.Filter
		want []string
	}{
		{"all", filter(nil), []string{"a", "b", "c", "d", "e"}},
		{"pending", filter(func(f *task.Filter) { f.Status = task.StatusPending }), []string{"a", "c", "d", "e"}},
		{"completed", filter(func(f *task.Filter) { f.Status = task.StatusCompleted }), []string{"b"}},
		{"priority", filter(func(f *task.Filter) { f.Priority = "medium" }), []string{"c", "d"}},
		{"category", filter(func(f *task.Filter) { f.Category = "Home" }), []string{"b", "d"}},
		{"tags are OR", filter(func(f *task.Filter) { f.Tags = []string{"q1", "later"} }), []string{"a", "c", "e"}},
		{"combined", filter(func(f *task.Filter) {
			f.Status = task.StatusPending
			f.Category = "Work"
			f.Tags = []string{"q1"}
		}), []string{"a", "e"}},
		{"no match", filter(func(f *task.Filter) { f.Category = "Garden" }), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterTasks(fixture(), tt.f)))
		})
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	f := filter(func(f *task.Filter) {
		f.Status = task.StatusPending
		f.Tags = []string{"q1", "q2"}
	})
	once := FilterTasks(fixture(), f)
	twice := FilterTasks(once, f)
	assert.Equal(t, once, twice)
}

func TestSortByDueDatePutsUndatedLast(t *testing.T) {
	asc := SortTasks(fixture(), task.SortByDueDate, task.SortAsc)
	assert.Equal(t, []string{"c", "e", "a", "b", "d"}, ids(asc))

	desc := SortTasks(fixture(), task.SortByDueDate, task.SortDesc)
	assert.Equal(t, []string{"a", "e", "c", "b", "d"}, ids(desc))
}

func TestSortDescIsReverseOfAscForDistinctKeys(t *testing.T) {
	for _, by := range []task.SortBy{task.SortByCreated, task.SortByPriority} {
		t.Run(string(by), func(t *testing.T) {
			// priorities collide on c and d, drop d so keys are distinct
			tasks := fixture()[:3]
			tasks = append(tasks, fixture()[4])

			asc := ids(SortTasks(tasks, by, task.SortAsc))
			desc := ids(SortTasks(tasks, by, task.SortDesc))

			reversed := make([]string, len(asc))
			for i, id := range asc {
				reversed[len(asc)-1-i] = id
			}
			assert.Equal(t, reversed, desc)
		})
	}
}

func TestSortIsStable(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Priority: task.PriorityHigh},
		{ID: "2", Priority: task.PriorityLow},
		{ID: "3", Priority: task.PriorityHigh},
		{ID: "4", Priority: task.PriorityLow},
	}

	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(SortTasks(tasks, task.SortByPriority, task.SortAsc)))
	assert.Equal(t, []string{"1", "3", "2", "4"}, ids(SortTasks(tasks, task.SortByPriority, task.SortDesc)))
}

func TestSortByUpdated(t *testing.T) {
	got := SortTasks(fixture(), task.SortByUpdated, task.SortDesc)
	assert.Equal(t, []string{"a", "d", "e", "c", "b"}, ids(got))
}

func TestSortDoesNotModifyInput(t *testing.T) {
	tasks := fixture()
	_ = Project(tasks, filter(func(f *task.Filter) { f.SortBy = task.SortByPriority }))
	assert.Equal(t, fixture(), tasks)
}

func TestPriorityScenario(t *testing.T) {
	tasks := []task.Task{
		{ID: "id1", Priority: task.PriorityLow, DueDate: at(9)},
		{ID: "id2", Priority: task.PriorityUrgent},
	}
	f := filter(func(f *task.Filter) {
		f.SortBy = task.SortByPriority
		f.SortOrder = task.SortDesc
	})
	assert.Equal(t, []string{"id2", "id1"}, ids(Project(tasks, f)))
}

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory(SortTasks(fixture(), task.SortByDueDate, task.SortAsc))

	require.Len(t, groups, 2)
	assert.Equal(t, "Home", groups[0].Name)
	assert.Equal(t, []string{"b", "d"}, ids(groups[0].Tasks))
	assert.Equal(t, "Work", groups[1].Name)
	assert.Equal(t, []string{"c", "e", "a"}, ids(groups[1].Tasks))
}

func TestCategoriesAndTags(t *testing.T) {
	tasks := append(fixture(), task.Task{ID: "f", Category: task.All})

	assert.Equal(t, []string{"Home", "Work"}, Categories(tasks))
	assert.Equal(t, []string{"later", "q1", "q2"}, Tags(tasks))
}
