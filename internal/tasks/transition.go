package tasks

import (
	"fmt"
	"slices"
	"time"
)

// Env supplies the impure inputs of transitions.
type Env struct {
	Now   func() time.Time
	NewID func() string
}

// DefaultEnv uses the wall clock in UTC and random task IDs.
func DefaultEnv() Env {
	return Env{
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: NewTaskID,
	}
}

// Apply computes the snapshot that results from a on s. It never modifies s.
// Unknown task IDs leave s unchanged and are not an error.
func Apply(s Snapshot, a Action, env Env) (Snapshot, error) {
	switch a := a.(type) {
	case SetAll:
		return applySetAll(s, a), nil
	case Add:
		return applyAdd(s, a, env), nil
	case Update:
		return applyUpdate(s, a, env), nil
	case Delete:
		return applyDelete(s, a), nil
	case Move:
		return applyMove(s, a, env), nil
	case Reorder:
		return applyReorder(s, a, env)
	default:
		return s, fmt.Errorf("unknown action %T", a)
	}
}

func applySetAll(s Snapshot, a SetAll) Snapshot {
	return s.withTasks(slices.Clone(a.Tasks))
}

func applyAdd(s Snapshot, a Add, env Env) Snapshot {
	id := env.NewID()
	for s.indexOf(id) >= 0 {
		id = env.NewID()
	}
	now := env.Now()
	t := Task{
		ID:          id,
		Title:       a.Draft.Title,
		Description: a.Draft.Description,
		Priority:    a.Draft.Priority,
		Stage:       a.Draft.Stage,
		DueDate:     a.Draft.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	next := make([]Task, 0, len(s.tasks)+1)
	next = append(next, s.tasks...)
	return s.withTasks(append(next, t))
}

// mapTask rewrites the task with the given ID, or returns s unchanged.
func mapTask(s Snapshot, id string, fn func(Task) Task) Snapshot {
	i := s.indexOf(id)
	if i < 0 {
		return s
	}
	next := slices.Clone(s.tasks)
	next[i] = fn(next[i])
	return s.withTasks(next)
}

func applyUpdate(s Snapshot, a Update, env Env) Snapshot {
	return mapTask(s, a.ID, func(t Task) Task {
		t = a.Patch.applyTo(t)
		t.UpdatedAt = env.Now()
		return t
	})
}

func applyDelete(s Snapshot, a Delete) Snapshot {
	i := s.indexOf(a.ID)
	if i < 0 {
		return s
	}
	return s.withTasks(slices.Delete(slices.Clone(s.tasks), i, i+1))
}

func applyMove(s Snapshot, a Move, env Env) Snapshot {
	return mapTask(s, a.ID, func(t Task) Task {
		t.Stage = a.Stage
		t.UpdatedAt = env.Now()
		return t
	})
}

// applyReorder splices one task inside the stage projection, then rebuilds the
// global sequence as every other task in its original order followed by the
// reordered stage. Stage display order must therefore come from filtering,
// never from raw positions.
func applyReorder(s Snapshot, a Reorder, env Env) (Snapshot, error) {
	var stage, others []Task
	for _, t := range s.tasks {
		if t.Stage == a.StageID {
			stage = append(stage, t)
		} else {
			others = append(others, t)
		}
	}
	n := len(stage)
	if a.Start < 0 || a.Start >= n || a.End < 0 || a.End >= n {
		return s, fmt.Errorf("%w: move %d to %d in stage %q of %d tasks",
			ErrIndexOutOfRange, a.Start, a.End, a.StageID, n)
	}

	moved := stage[a.Start]
	moved.UpdatedAt = env.Now()
	stage = slices.Delete(stage, a.Start, a.Start+1)
	stage = slices.Insert(stage, a.End, moved)

	next := make([]Task, 0, len(s.tasks))
	next = append(next, others...)
	next = append(next, stage...)
	return s.withTasks(next), nil
}
