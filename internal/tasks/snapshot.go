package tasks

import (
	"slices"
)

// Snapshot is the complete store state at one instant. It is never mutated
// after construction; accessors hand out copies.
type Snapshot struct {
	tasks   []Task
	stages  []Stage
	version uint64
}

// NewSnapshot builds a snapshot from the given tasks and stages.
func NewSnapshot(tasks []Task, stages []Stage) Snapshot {
	return Snapshot{tasks: slices.Clone(tasks), stages: slices.Clone(stages)}
}

// Version counts the transitions applied since the store was created.
func (s Snapshot) Version() uint64 { return s.version }

// Len returns the number of tasks.
func (s Snapshot) Len() int { return len(s.tasks) }

// Tasks returns the global task sequence.
func (s Snapshot) Tasks() []Task { return slices.Clone(s.tasks) }

// Stages returns the stages in their seeded order.
func (s Snapshot) Stages() []Stage { return slices.Clone(s.stages) }

// Task looks up a task by ID.
func (s Snapshot) Task(id string) (Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Stage looks up a stage by ID.
func (s Snapshot) Stage(id string) (Stage, bool) {
	for _, st := range s.stages {
		if st.ID == id {
			return st, true
		}
	}
	return Stage{}, false
}

// ByStage returns the tasks of one stage in display order, which is their
// relative order in the global sequence.
func (s Snapshot) ByStage(stageID string) []Task {
	var out []Task
	for _, t := range s.tasks {
		if t.Stage == stageID {
			out = append(out, t)
		}
	}
	return out
}

func (s Snapshot) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

// withTasks derives the next snapshot. tasks must not be shared with s.
func (s Snapshot) withTasks(tasks []Task) Snapshot {
	return Snapshot{tasks: tasks, stages: s.stages, version: s.version + 1}
}
