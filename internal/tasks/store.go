package tasks

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dohr-michael/taskflow/internal/events"
)

// Saver receives the task collection after every applied transition.
type Saver interface {
	Save(tasks []Task) error
}

// StoreConfig wires a Store.
type StoreConfig struct {
	Persister *Persister
	Bus       *events.Bus // optional
	Env       Env         // zero value means DefaultEnv
	Stages    []Stage     // nil means SeedStages
}

// Store owns the current snapshot. Writers are applied one at a time; readers
// load the current snapshot without blocking.
type Store struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Snapshot]
	env     Env
	saver   Saver
	bus     *events.Bus
	saveErr atomic.Pointer[error]
}

// NewStore loads the persisted tasks (or the seed dataset) and returns a
// ready Store.
func NewStore(cfg StoreConfig) *Store {
	env := cfg.Env
	if env.Now == nil || env.NewID == nil {
		def := DefaultEnv()
		if env.Now == nil {
			env.Now = def.Now
		}
		if env.NewID == nil {
			env.NewID = def.NewID
		}
	}
	stages := cfg.Stages
	if stages == nil {
		stages = SeedStages()
	}

	s := &Store{env: env, saver: cfg.Persister, bus: cfg.Bus}
	initial := NewSnapshot(nil, stages)
	s.current.Store(&initial)

	loaded := cfg.Persister.Load()
	s.dispatch(SetAll{Tasks: loaded.Tasks})
	s.publish(events.TasksLoadedPayload{Count: len(loaded.Tasks), Seeded: loaded.Seeded, Reason: loaded.Reason})
	slog.Debug("tasks loaded", "count", len(loaded.Tasks), "seeded", loaded.Seeded)
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	return *s.current.Load()
}

// LastSaveError returns the most recent persistence failure, or nil if the
// last save succeeded.
func (s *Store) LastSaveError() error {
	if p := s.saveErr.Load(); p != nil {
		return *p
	}
	return nil
}

// AddTask creates a task from d and returns it with its assigned ID and timestamps.
func (s *Store) AddTask(d Draft) (Task, error) {
	if err := d.Validate(); err != nil {
		return Task{}, err
	}
	snap, err := s.dispatch(Add{Draft: d})
	if err != nil {
		return Task{}, err
	}
	return snap.tasks[len(snap.tasks)-1], nil
}

// UpdateTask merges p into the task with the given ID. Unknown IDs are a no-op.
func (s *Store) UpdateTask(id string, p Patch) (Snapshot, error) {
	if err := p.Validate(); err != nil {
		return s.Snapshot(), err
	}
	return s.dispatch(Update{ID: id, Patch: p})
}

// DeleteTask removes the task with the given ID. Unknown IDs are a no-op.
func (s *Store) DeleteTask(id string) Snapshot {
	snap, _ := s.dispatch(Delete{ID: id})
	return snap
}

// MoveTask puts the task in another stage. The stage key is not validated.
func (s *Store) MoveTask(id, stage string) Snapshot {
	snap, _ := s.dispatch(Move{ID: id, Stage: stage})
	return snap
}

// ReorderTasks moves the task at startIndex of stageID's display order to
// endIndex. Indices outside the stage fail with ErrIndexOutOfRange.
func (s *Store) ReorderTasks(startIndex, endIndex int, stageID string) (Snapshot, error) {
	return s.dispatch(Reorder{StageID: stageID, Start: startIndex, End: endIndex})
}

// dispatch applies a to the current snapshot, persists the result and
// announces it. Failed or no-op transitions return the current snapshot.
func (s *Store) dispatch(a Action) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := *s.current.Load()
	next, err := Apply(prev, a, s.env)
	if err != nil {
		return prev, err
	}
	if next.version == prev.version {
		return prev, nil
	}
	s.current.Store(&next)

	if err := s.saver.Save(next.tasks); err != nil {
		slog.Error("save tasks", "action", ActionName(a), "version", next.version, "error", err)
		s.saveErr.Store(&err)
		s.publish(events.SaveFailedPayload{Action: ActionName(a), Version: next.version, Error: err.Error()})
	} else {
		s.saveErr.Store(nil)
	}

	if p := describe(prev, next, a); p != nil {
		s.publish(p)
	}
	return next, nil
}

func (s *Store) publish(p events.EventPayload) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.NewTypedEvent(events.SourceStore, p))
}

// describe builds the event payload announcing a.
func describe(prev, next Snapshot, a Action) events.EventPayload {
	switch a := a.(type) {
	case SetAll:
		return nil
	case Add:
		t := next.tasks[len(next.tasks)-1]
		return events.TaskAddedPayload{TaskID: t.ID, Title: t.Title, Stage: t.Stage}
	case Update:
		return events.TaskUpdatedPayload{TaskID: a.ID, Fields: a.Patch.fields()}
	case Delete:
		return events.TaskDeletedPayload{TaskID: a.ID}
	case Move:
		from := ""
		if t, ok := prev.Task(a.ID); ok {
			from = t.Stage
		}
		return events.TaskMovedPayload{TaskID: a.ID, From: from, To: a.Stage}
	case Reorder:
		id := ""
		if stage := prev.ByStage(a.StageID); a.Start >= 0 && a.Start < len(stage) {
			id = stage[a.Start].ID
		}
		return events.TasksReorderedPayload{StageID: a.StageID, TaskID: id, From: a.Start, To: a.End}
	}
	return nil
}
