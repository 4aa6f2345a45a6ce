// Package tasks holds the task/stage state manager: the immutable snapshot,
// the transitions that produce new snapshots, the Store that applies them and
// the adapter that keeps them in durable key-value storage.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle      = errors.New("task title is empty")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrIndexOutOfRange = errors.New("reorder index out of range")
)

// Priority ranks a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority, highest first.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ParsePriority accepts a priority name in any case.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Stage is a fixed workflow column. Tasks reference it by ID only.
type Stage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

// Task is a unit of work. ID and CreatedAt are assigned by the store and never change.
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Stage       string
	DueDate     civil.Date // zero value means no due date
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasDueDate reports whether the task carries a due date.
func (t Task) HasDueDate() bool {
	return t.DueDate != (civil.Date{})
}

// taskRecord is the persisted shape of a Task.
type taskRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Stage       string    `json:"stage"`
	DueDate     *string   `json:"dueDate,omitempty"` // YYYY-MM-DD; "" means none
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MarshalJSON writes the storage record format, omitting unset optional fields.
func (t Task) MarshalJSON() ([]byte, error) {
	rec := taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Stage:       t.Stage,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.HasDueDate() {
		due := t.DueDate.String()
		rec.DueDate = &due
	}
	return json.Marshal(rec)
}

// UnmarshalJSON reads the storage record format. An empty dueDate means the
// task has no due date.
func (t *Task) UnmarshalJSON(data []byte) error {
	var rec taskRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*t = Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Priority:    rec.Priority,
		Stage:       rec.Stage,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.DueDate != nil && *rec.DueDate != "" {
		due, err := civil.ParseDate(*rec.DueDate)
		if err != nil {
			return fmt.Errorf("task %s: dueDate: %w", rec.ID, err)
		}
		t.DueDate = due
	}
	return nil
}

// Draft is a task as submitted by a caller, before the store assigns identity.
type Draft struct {
	Title       string
	Description string
	Priority    Priority
	Stage       string
	DueDate     civil.Date
}

// Validate checks the fields a caller is responsible for.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if !d.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Stage        *string
	DueDate      *civil.Date
	ClearDueDate bool
}

// Validate checks the fields the patch sets.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Stage == nil && p.DueDate == nil && !p.ClearDueDate
}

func (p Patch) applyTo(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Stage != nil {
		t.Stage = *p.Stage
	}
	if p.ClearDueDate {
		t.DueDate = civil.Date{}
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	return t
}

// NewTaskID creates a short random task identifier.
func NewTaskID() string {
	return "task_" + uuid.New().String()[:8]
}

// fields names the fields the patch sets, in storage record spelling.
func (p Patch) fields() []string {
	var out []string
	if p.Title != nil {
		out = append(out, "title")
	}
	if p.Description != nil {
		out = append(out, "description")
	}
	if p.Priority != nil {
		out = append(out, "priority")
	}
	if p.Stage != nil {
		out = append(out, "stage")
	}
	if p.DueDate != nil || p.ClearDueDate {
		out = append(out, "dueDate")
	}
	return out
}
