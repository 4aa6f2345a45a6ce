package tasks

import (
	"time"

	"cloud.google.com/go/civil"
)

// SeedStages are the fixed workflow columns, created once at startup.
func SeedStages() []Stage {
	return []Stage{
		{ID: "todo", Title: "To Do", Color: "slate", Order: 0},
		{ID: "in-progress", Title: "In Progress", Color: "blue", Order: 1},
		{ID: "review", Title: "Review", Color: "yellow", Order: 2},
		{ID: "done", Title: "Done", Color: "green", Order: 3},
	}
}

// StageDone is the stage counted as completed work.
const StageDone = "done"

// SeedTasks is the deterministic dataset used when storage holds nothing usable.
func SeedTasks() []Task {
	at := func(hour int) time.Time {
		return time.Date(2025, time.January, 10, hour, 0, 0, 0, time.UTC)
	}
	day := func(d int) civil.Date {
		return civil.Date{Year: 2025, Month: time.January, Day: d}
	}
	return []Task{
		{
			ID:          "1",
			Title:       "Design landing page mockups",
			Description: "Create wireframes and high-fidelity mockups for the new landing page",
			Priority:    PriorityHigh,
			Stage:       "todo",
			DueDate:     day(15),
			CreatedAt:   at(10),
			UpdatedAt:   at(10),
		},
		{
			ID:          "2",
			Title:       "Set up database schema",
			Description: "Design and implement the database structure for user management",
			Priority:    PriorityHigh,
			Stage:       "in-progress",
			DueDate:     day(12),
			CreatedAt:   at(11),
			UpdatedAt:   at(11),
		},
		{
			ID:          "3",
			Title:       "Write API documentation",
			Description: "Document all REST endpoints with examples and response formats",
			Priority:    PriorityMedium,
			Stage:       "todo",
			DueDate:     day(20),
			CreatedAt:   at(12),
			UpdatedAt:   at(12),
		},
		{
			ID:          "4",
			Title:       "Implement user authentication",
			Description: "Add login, signup, and password reset functionality",
			Priority:    PriorityHigh,
			Stage:       "review",
			DueDate:     day(14),
			CreatedAt:   at(13),
			UpdatedAt:   at(13),
		},
		{
			ID:          "5",
			Title:       "Update project dependencies",
			Description: "Review and update all npm packages to latest stable versions",
			Priority:    PriorityLow,
			Stage:       "done",
			CreatedAt:   at(14),
			UpdatedAt:   at(14),
		},
	}
}
