package views

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dohr-michael/taskflow/internal/tasks"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func snapshot(list ...tasks.Task) tasks.Snapshot {
	return tasks.NewSnapshot(list, tasks.SeedStages())
}

func TestBoardColumnsFollowStageOrder(t *testing.T) {
	stages := []tasks.Stage{
		{ID: "done", Title: "Done", Order: 3},
		{ID: "todo", Title: "To Do", Order: 0},
	}
	s := tasks.NewSnapshot([]tasks.Task{
		{ID: "a", Stage: "done"},
		{ID: "b", Stage: "todo"},
		{ID: "c", Stage: "todo"},
		{ID: "orphan", Stage: "archived"},
	}, stages)

	cols := Board(s)
	if len(cols) != 2 || cols[0].Stage.ID != "todo" || cols[1].Stage.ID != "done" {
		t.Fatalf("columns: %+v", cols)
	}
	if len(cols[0].Tasks) != 2 || cols[0].Tasks[0].ID != "b" || cols[0].Tasks[1].ID != "c" {
		t.Errorf("todo tasks: %+v", cols[0].Tasks)
	}
	total := 0
	for _, c := range cols {
		total += len(c.Tasks)
	}
	if total != 3 {
		t.Errorf("dangling stage task should not appear: total %d", total)
	}
}

func TestBoardEmptyColumnHasEmptySlice(t *testing.T) {
	for _, col := range Board(snapshot()) {
		if col.Tasks == nil {
			t.Errorf("column %s: nil tasks", col.Stage.ID)
		}
	}
}

func TestFilter(t *testing.T) {
	s := snapshot(
		tasks.Task{ID: "1", Title: "Write API docs", Priority: tasks.PriorityMedium, Stage: "todo"},
		tasks.Task{ID: "2", Title: "Schema", Description: "design the DATABASE", Priority: tasks.PriorityHigh, Stage: "in-progress"},
		tasks.Task{ID: "3", Title: "Deps", Priority: tasks.PriorityLow, Stage: "done"},
	)

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"all", Query{}, []string{"1", "2", "3"}},
		{"search title", Query{Search: "api"}, []string{"1"}},
		{"search description", Query{Search: "database"}, []string{"2"}},
		{"priority", Query{Priority: tasks.PriorityLow}, []string{"3"}},
		{"stage", Query{Stage: "in-progress"}, []string{"2"}},
		{"combined miss", Query{Search: "api", Stage: "done"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(s, tt.q)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tasks, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("task %d: got %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestCalendarGrid(t *testing.T) {
	s := snapshot(
		tasks.Task{ID: "a", DueDate: date(2025, time.January, 15)},
		tasks.Task{ID: "b", DueDate: date(2025, time.January, 15)},
		tasks.Task{ID: "c", DueDate: date(2025, time.February, 1)},
		tasks.Task{ID: "none"},
	)

	grid := Calendar(s, date(2025, time.January, 20), date(2025, time.January, 12))
	if len(grid) != CalendarWeeks {
		t.Fatalf("weeks: got %d", len(grid))
	}
	// 1 Jan 2025 is a Wednesday, so the grid starts on Sunday 29 Dec 2024.
	if got := grid[0][0].Date; got != date(2024, time.December, 29) {
		t.Errorf("first cell: got %s", got)
	}
	if grid[0][0].InMonth || !grid[0][3].InMonth {
		t.Error("InMonth flags wrong in first week")
	}

	var jan15, feb1, today Day
	for _, week := range grid {
		for _, d := range week {
			switch d.Date {
			case date(2025, time.January, 15):
				jan15 = d
			case date(2025, time.February, 1):
				feb1 = d
			case date(2025, time.January, 12):
				today = d
			}
		}
	}
	if len(jan15.Tasks) != 2 {
		t.Errorf("Jan 15 tasks: got %d, want 2", len(jan15.Tasks))
	}
	if len(feb1.Tasks) != 1 || feb1.InMonth {
		t.Errorf("Feb 1: %+v", feb1)
	}
	if !today.Today {
		t.Error("today not flagged")
	}
}

func TestDashboard(t *testing.T) {
	today := date(2025, time.January, 13)
	s := snapshot(tasks.SeedTasks()...)

	st := Dashboard(s, today)
	if st.Total != 5 {
		t.Errorf("Total: got %d, want 5", st.Total)
	}
	if st.Completed != 1 {
		t.Errorf("Completed: got %d, want 1", st.Completed)
	}
	// Only task 2 (due 12 Jan, in progress) is overdue on 13 Jan.
	if st.Overdue != 1 {
		t.Errorf("Overdue: got %d, want 1", st.Overdue)
	}
	if st.HighPriority != 3 {
		t.Errorf("HighPriority: got %d, want 3", st.HighPriority)
	}
	if len(st.ByStage) != 4 || st.ByStage[0].StageID != "todo" || st.ByStage[0].Count != 2 {
		t.Errorf("ByStage: %+v", st.ByStage)
	}
	if len(st.ByPriority) != 3 || st.ByPriority[0].Priority != tasks.PriorityHigh {
		t.Errorf("ByPriority: %+v", st.ByPriority)
	}
}

func TestDashboardOmitsEmptyPriorities(t *testing.T) {
	s := snapshot(tasks.Task{ID: "a", Priority: tasks.PriorityLow, Stage: "todo"})
	st := Dashboard(s, date(2025, time.January, 1))
	if len(st.ByPriority) != 1 || st.ByPriority[0].Priority != tasks.PriorityLow {
		t.Errorf("ByPriority: %+v", st.ByPriority)
	}
}
