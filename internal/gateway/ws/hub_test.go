package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/dohr-michael/taskflow/internal/events"
)

type fakeTasks struct {
	mu    sync.Mutex
	moved []MoveTaskParams
}

func (f *fakeTasks) Snapshot() any { return map[string]int{"version": 7} }
func (f *fakeTasks) AddTask(p TaskParams) (any, error) {
	return map[string]string{"id": "task_1"}, nil
}
func (f *fakeTasks) UpdateTask(p UpdateTaskParams) (any, error) { return nil, errors.New("task not found") }
func (f *fakeTasks) DeleteTask(p DeleteTaskParams) (any, error) { return nil, nil }
func (f *fakeTasks) MoveTask(p MoveTaskParams) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moved = append(f.moved, p)
	return map[string]string{"id": p.ID, "stage": p.Stage}, nil
}
func (f *fakeTasks) ReorderTasks(p ReorderTasksParams) (any, error) { return nil, nil }

func dialHub(t *testing.T, hub *Hub) (*websocket.Conn, context.Context) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

func request(t *testing.T, ctx context.Context, conn *websocket.Conn, id string, method Method, params any) {
	t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := MarshalFrame(Frame{Type: FrameTypeRequest, ID: id, Method: string(method), Params: raw})
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil reads frames until match returns true.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, match func(Frame) bool) Frame {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		f, err := UnmarshalFrame(data)
		if err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if match(f) {
			return f
		}
	}
}

func response(id string) func(Frame) bool {
	return func(f Frame) bool { return f.Type == FrameTypeResponse && f.ID == id }
}

func TestHub_RequestDispatch(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()
	fake := &fakeTasks{}
	hub := NewHub(bus, fake)
	defer hub.Close()

	conn, ctx := dialHub(t, hub)

	request(t, ctx, conn, "r1", MethodMoveTask, MoveTaskParams{ID: "2", Stage: "done"})
	f := readUntil(t, ctx, conn, response("r1"))
	if f.OK == nil || !*f.OK {
		t.Fatalf("expected ok response, got error %q", f.Error)
	}
	fake.mu.Lock()
	moved := fake.moved
	fake.mu.Unlock()
	if len(moved) != 1 || moved[0].Stage != "done" {
		t.Fatalf("expected one move to done, got %+v", moved)
	}

	request(t, ctx, conn, "r2", MethodUpdateTask, UpdateTaskParams{ID: "x"})
	f = readUntil(t, ctx, conn, response("r2"))
	if f.OK == nil || *f.OK || f.Error != "task not found" {
		t.Fatalf("expected task not found error, got ok=%v err=%q", f.OK, f.Error)
	}

	request(t, ctx, conn, "r3", Method("archive_task"), map[string]string{})
	f = readUntil(t, ctx, conn, response("r3"))
	if !strings.Contains(f.Error, "unknown method") {
		t.Fatalf("expected unknown method error, got %q", f.Error)
	}
}

func TestHub_MissingParams(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()
	hub := NewHub(bus, &fakeTasks{})
	defer hub.Close()

	conn, ctx := dialHub(t, hub)

	data, _ := MarshalFrame(Frame{Type: FrameTypeRequest, ID: "r1", Method: string(MethodAddTask)})
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatal(err)
	}
	f := readUntil(t, ctx, conn, response("r1"))
	if f.Error != "invalid params" {
		t.Fatalf("expected invalid params, got %q", f.Error)
	}
}

func TestHub_BroadcastsBusEvents(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()
	hub := NewHub(bus, &fakeTasks{})
	defer hub.Close()

	conn, ctx := dialHub(t, hub)

	// The snapshot round trip guarantees the client is registered.
	request(t, ctx, conn, "r1", MethodSnapshot, struct{}{})
	readUntil(t, ctx, conn, response("r1"))

	bus.Publish(events.NewTypedEvent(events.SourceStore, events.TaskDeletedPayload{TaskID: "4"}))

	f := readUntil(t, ctx, conn, func(f Frame) bool { return f.Type == FrameTypeEvent })
	if f.Event != string(events.EventTaskDeleted) {
		t.Fatalf("expected event %q, got %q", events.EventTaskDeleted, f.Event)
	}
	var e events.Event
	if err := json.Unmarshal(f.Payload, &e); err != nil {
		t.Fatal(err)
	}
	if e.Payload["task_id"] != "4" {
		t.Fatalf("expected task_id 4, got %v", e.Payload["task_id"])
	}
}
