package tasks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dohr-michael/taskflow/internal/storage/kv"
)

// TasksKey is the storage key holding the task collection.
const TasksKey = "taskflow-tasks"

// Persister translates between the task collection and a key-value store.
type Persister struct {
	store kv.Store
	key   string
}

// NewPersister creates a Persister writing under key (TasksKey when empty).
func NewPersister(store kv.Store, key string) *Persister {
	if key == "" {
		key = TasksKey
	}
	return &Persister{store: store, key: key}
}

// LoadResult describes what Load found.
type LoadResult struct {
	Tasks  []Task
	Seeded bool   // true when the seed dataset was used
	Reason string // why the seed dataset was used
}

// Load reads the persisted task collection. Absent, unreadable or malformed
// data is discarded in favour of the seed dataset; Load never fails.
func (p *Persister) Load() LoadResult {
	data, err := p.store.Get(p.key)
	if errors.Is(err, kv.ErrNotFound) {
		return LoadResult{Tasks: SeedTasks(), Seeded: true, Reason: "no saved tasks"}
	}
	if err != nil {
		slog.Error("read saved tasks", "key", p.key, "error", err)
		return LoadResult{Tasks: SeedTasks(), Seeded: true, Reason: "storage read failed"}
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		slog.Warn("discarding malformed saved tasks", "key", p.key, "error", err)
		return LoadResult{Tasks: SeedTasks(), Seeded: true, Reason: "malformed saved tasks"}
	}
	return LoadResult{Tasks: tasks}
}

// Save writes the full task collection under the persister's key.
func (p *Persister) Save(tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	if err := p.store.Set(p.key, data); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return nil
}

func decodeTasks(data []byte) ([]Task, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("saved value is not a task list")
	}
	var tasks []Task
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return nil, err
	}
	return uniqueTasks(tasks)
}

// uniqueTasks drops records without an ID and every record after the first
// one of each ID. A non-empty list left with no usable record is an error.
func uniqueTasks(in []Task) ([]Task, error) {
	out := make([]Task, 0, len(in))
	seen := make(map[string]bool, len(in))
	for i, t := range in {
		switch {
		case t.ID == "":
			slog.Warn("dropping saved task without id", "index", i)
		case seen[t.ID]:
			slog.Warn("dropping saved task with duplicate id", "id", t.ID, "index", i)
		default:
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	if len(out) == 0 && len(in) > 0 {
		return nil, errors.New("no saved task has an id")
	}
	return out, nil
}
