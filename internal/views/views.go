// Package views derives the board, calendar, dashboard and table projections
// from a task snapshot. Nothing here mutates state.
package views

import (
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dohr-michael/taskflow/internal/tasks"
)

// Column is one stage of the board with its tasks in display order.
type Column struct {
	Stage tasks.Stage  `json:"stage"`
	Tasks []tasks.Task `json:"tasks"`
}

// Board groups tasks by stage, columns ordered by Stage.Order. Tasks whose
// stage matches no column are left out.
func Board(s tasks.Snapshot) []Column {
	stages := s.Stages()
	slices.SortStableFunc(stages, func(a, b tasks.Stage) int { return a.Order - b.Order })

	cols := make([]Column, len(stages))
	for i, st := range stages {
		cols[i] = Column{Stage: st, Tasks: s.ByStage(st.ID)}
		if cols[i].Tasks == nil {
			cols[i].Tasks = []tasks.Task{}
		}
	}
	return cols
}

// Query filters the task table. Empty fields match everything.
type Query struct {
	Search   string
	Priority tasks.Priority
	Stage    string
}

// Filter returns the tasks matching q in snapshot order. Search is a
// case-insensitive substring match on title or description.
func Filter(s tasks.Snapshot, q Query) []tasks.Task {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := []tasks.Task{}
	for _, t := range s.Tasks() {
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		if q.Stage != "" && t.Stage != q.Stage {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Day is one cell of the calendar grid.
type Day struct {
	Date    civil.Date   `json:"date"`
	InMonth bool         `json:"in_month"`
	Today   bool         `json:"today"`
	Tasks   []tasks.Task `json:"tasks"`
}

// CalendarWeeks is the fixed number of rows in a month grid.
const CalendarWeeks = 6

// Calendar lays out the month containing month as a 6x7 grid beginning on
// the Sunday on or before the first of the month.
func Calendar(s tasks.Snapshot, month, today civil.Date) [][]Day {
	first := civil.Date{Year: month.Year, Month: month.Month, Day: 1}
	start := first.AddDays(-int(first.In(time.UTC).Weekday()))

	due := map[civil.Date][]tasks.Task{}
	for _, t := range s.Tasks() {
		if t.HasDueDate() {
			due[t.DueDate] = append(due[t.DueDate], t)
		}
	}

	grid := make([][]Day, CalendarWeeks)
	d := start
	for w := range grid {
		grid[w] = make([]Day, 7)
		for i := range grid[w] {
			grid[w][i] = Day{
				Date:    d,
				InMonth: d.Month == first.Month && d.Year == first.Year,
				Today:   d == today,
				Tasks:   due[d],
			}
			d = d.AddDays(1)
		}
	}
	return grid
}

// StageCount is the number of tasks in one stage.
type StageCount struct {
	StageID string `json:"stage_id"`
	Title   string `json:"title"`
	Count   int    `json:"count"`
}

// PriorityCount is the number of tasks at one priority.
type PriorityCount struct {
	Priority tasks.Priority `json:"priority"`
	Count    int            `json:"count"`
}

// Stats summarises a snapshot for the dashboard.
type Stats struct {
	Total        int             `json:"total"`
	Completed    int             `json:"completed"`
	Overdue      int             `json:"overdue"`
	HighPriority int             `json:"high_priority"`
	ByStage      []StageCount    `json:"by_stage"`
	ByPriority   []PriorityCount `json:"by_priority"`
}

// Dashboard computes the dashboard counters. A task is overdue when its due
// date is before today and it is not done. Priorities with no tasks are
// omitted from ByPriority.
func Dashboard(s tasks.Snapshot, today civil.Date) Stats {
	all := s.Tasks()
	st := Stats{Total: len(all)}

	perPriority := map[tasks.Priority]int{}
	for _, t := range all {
		done := t.Stage == tasks.StageDone
		if done {
			st.Completed++
		}
		if t.HasDueDate() && t.DueDate.Before(today) && !done {
			st.Overdue++
		}
		if t.Priority == tasks.PriorityHigh {
			st.HighPriority++
		}
		perPriority[t.Priority]++
	}

	for _, col := range Board(s) {
		st.ByStage = append(st.ByStage, StageCount{StageID: col.Stage.ID, Title: col.Stage.Title, Count: len(col.Tasks)})
	}
	for _, p := range tasks.Priorities {
		if n := perPriority[p]; n > 0 {
			st.ByPriority = append(st.ByPriority, PriorityCount{Priority: p, Count: n})
		}
	}
	return st
}
