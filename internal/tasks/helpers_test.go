package tasks

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dohr-michael/taskflow/internal/storage/kv"
)

var t0 = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func testEnv(clock *fakeClock) Env {
	return Env{Now: clock.Now, NewID: seqIDs("task_")}
}

// fixture builds tasks from "id:stage" pairs.
func fixture(specs ...string) []Task {
	var out []Task
	for _, spec := range specs {
		id, stage, _ := strings.Cut(spec, ":")
		out = append(out, Task{
			ID:        id,
			Title:     "Task " + id,
			Priority:  PriorityMedium,
			Stage:     stage,
			CreatedAt: t0,
			UpdatedAt: t0,
		})
	}
	return out
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equalIDs(got []Task, want ...string) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

// newTestStore returns a store over an in-memory kv seeded with tasks.
func newTestStore(t *testing.T, clock *fakeClock, tasks []Task) (*Store, *kv.MemStore) {
	t.Helper()
	mem := kv.NewMemStore()
	p := NewPersister(mem, "")
	if tasks != nil {
		if err := p.Save(tasks); err != nil {
			t.Fatalf("seed save: %v", err)
		}
	}
	return NewStore(StoreConfig{Persister: p, Env: testEnv(clock)}), mem
}

func newMem(t *testing.T, tasks []Task) *kv.MemStore {
	t.Helper()
	mem := kv.NewMemStore()
	if err := NewPersister(mem, "").Save(tasks); err != nil {
		t.Fatalf("seed save: %v", err)
	}
	return mem
}
