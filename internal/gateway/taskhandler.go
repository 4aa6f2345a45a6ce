package gateway

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/dohr-michael/taskflow/internal/gateway/ws"
	"github.com/dohr-michael/taskflow/internal/tasks"
	"github.com/dohr-michael/taskflow/internal/views"
)

var (
	// ErrTaskNotFound is returned when a request names a task the snapshot does not hold.
	ErrTaskNotFound = errors.New("task not found")
	// ErrBadRequest wraps malformed request input.
	ErrBadRequest = errors.New("bad request")
)

// TaskHandler translates wire requests into Store calls. It serves both the
// HTTP routes and the WebSocket hub.
type TaskHandler struct {
	store *tasks.Store
}

// NewTaskHandler creates a task handler over store.
func NewTaskHandler(store *tasks.Store) *TaskHandler {
	return &TaskHandler{store: store}
}

// snapshotView is the wire shape of a Snapshot.
type snapshotView struct {
	Version uint64        `json:"version"`
	Stages  []tasks.Stage `json:"stages"`
	Tasks   []tasks.Task  `json:"tasks"`
}

func newSnapshotView(s tasks.Snapshot) snapshotView {
	v := snapshotView{Version: s.Version(), Stages: s.Stages(), Tasks: s.Tasks()}
	if v.Tasks == nil {
		v.Tasks = []tasks.Task{}
	}
	return v
}

// Snapshot returns the current snapshot in wire form.
func (h *TaskHandler) Snapshot() any {
	return newSnapshotView(h.store.Snapshot())
}

// AddTask creates a task. Stage defaults to the first stage and priority to medium.
func (h *TaskHandler) AddTask(p ws.TaskParams) (any, error) {
	d := tasks.Draft{Priority: tasks.PriorityMedium, Stage: tasks.SeedStages()[0].ID}
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Priority != nil {
		d.Priority = tasks.Priority(strings.ToLower(*p.Priority))
	}
	if p.Stage != nil && *p.Stage != "" {
		d.Stage = *p.Stage
	}
	if p.DueDate != nil && *p.DueDate != "" {
		due, err := parseDate(*p.DueDate)
		if err != nil {
			return nil, err
		}
		d.DueDate = due
	}
	return h.store.AddTask(d)
}

// UpdateTask patches the fields set in p.
func (h *TaskHandler) UpdateTask(p ws.UpdateTaskParams) (any, error) {
	if _, ok := h.store.Snapshot().Task(p.ID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, p.ID)
	}
	patch, err := patchFrom(p.TaskParams)
	if err != nil {
		return nil, err
	}
	snap, err := h.store.UpdateTask(p.ID, patch)
	if err != nil {
		return nil, err
	}
	return lookup(snap, p.ID)
}

// DeleteTask removes a task.
func (h *TaskHandler) DeleteTask(p ws.DeleteTaskParams) (any, error) {
	if _, ok := h.store.Snapshot().Task(p.ID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, p.ID)
	}
	h.store.DeleteTask(p.ID)
	return map[string]string{"deleted": p.ID}, nil
}

// MoveTask puts a task in another stage.
func (h *TaskHandler) MoveTask(p ws.MoveTaskParams) (any, error) {
	if p.Stage == "" {
		return nil, fmt.Errorf("%w: stage is required", ErrBadRequest)
	}
	if _, ok := h.store.Snapshot().Task(p.ID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, p.ID)
	}
	return lookup(h.store.MoveTask(p.ID, p.Stage), p.ID)
}

// ReorderTasks repositions a task within a stage and returns the stage's new order.
func (h *TaskHandler) ReorderTasks(p ws.ReorderTasksParams) (any, error) {
	snap, err := h.store.ReorderTasks(p.StartIndex, p.EndIndex, p.StageID)
	if err != nil {
		return nil, err
	}
	col := views.Column{Tasks: snap.ByStage(p.StageID)}
	if st, ok := snap.Stage(p.StageID); ok {
		col.Stage = st
	} else {
		col.Stage = tasks.Stage{ID: p.StageID}
	}
	return col, nil
}

func patchFrom(p ws.TaskParams) (tasks.Patch, error) {
	patch := tasks.Patch{
		Title:       p.Title,
		Description: p.Description,
		Stage:       p.Stage,
	}
	if p.Priority != nil {
		pr := tasks.Priority(strings.ToLower(*p.Priority))
		patch.Priority = &pr
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			patch.ClearDueDate = true
		} else {
			due, err := parseDate(*p.DueDate)
			if err != nil {
				return tasks.Patch{}, err
			}
			patch.DueDate = &due
		}
	}
	return patch, nil
}

func parseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: due date %q: want YYYY-MM-DD", ErrBadRequest, s)
	}
	return d, nil
}

func lookup(s tasks.Snapshot, id string) (tasks.Task, error) {
	t, ok := s.Task(id)
	if !ok {
		return tasks.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t, nil
}
