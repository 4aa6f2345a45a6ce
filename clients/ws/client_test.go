package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dohr-michael/taskflow/internal/events"
	"github.com/dohr-michael/taskflow/internal/gateway"
	wsprotocol "github.com/dohr-michael/taskflow/internal/gateway/ws"
	"github.com/dohr-michael/taskflow/internal/prefs"
	"github.com/dohr-michael/taskflow/internal/storage/kv"
	"github.com/dohr-michael/taskflow/internal/tasks"
)

func dialGateway(t *testing.T) (*Client, *tasks.Store) {
	t.Helper()
	bus := events.NewBus(64)
	t.Cleanup(bus.Close)

	mem := kv.NewMemStore()
	store := tasks.NewStore(tasks.StoreConfig{Persister: tasks.NewPersister(mem, tasks.TasksKey), Bus: bus})
	srv := gateway.NewServer(bus, store, prefs.New(mem, "", bus), "localhost", 0)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	c, err := Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, store
}

func TestClient_AddThenDelete(t *testing.T) {
	c, store := dialGateway(t)

	title := "Plan sprint"
	var added tasks.Task
	if err := c.Call(wsprotocol.MethodAddTask, wsprotocol.TaskParams{Title: &title}, &added); err != nil {
		t.Fatalf("add_task: %v", err)
	}
	if added.ID == "" || added.Title != title {
		t.Fatalf("unexpected task %+v", added)
	}
	if store.Snapshot().Len() != 6 {
		t.Fatalf("expected 6 tasks, got %d", store.Snapshot().Len())
	}

	if err := c.Call(wsprotocol.MethodDeleteTask, wsprotocol.DeleteTaskParams{ID: added.ID}, nil); err != nil {
		t.Fatalf("delete_task: %v", err)
	}
	if _, ok := store.Snapshot().Task(added.ID); ok {
		t.Fatal("expected task removed")
	}
}

func TestClient_ReorderOutOfRange(t *testing.T) {
	c, _ := dialGateway(t)

	err := c.Call(wsprotocol.MethodReorderTasks, wsprotocol.ReorderTasksParams{StageID: "todo", StartIndex: 0, EndIndex: 9}, nil)
	if err == nil || !strings.Contains(err.Error(), tasks.ErrIndexOutOfRange.Error()) {
		t.Fatalf("expected out of range error, got %v", err)
	}
}

func TestClient_ReceivesEvents(t *testing.T) {
	c, _ := dialGateway(t)

	if _, err := c.Send(wsprotocol.MethodMoveTask, wsprotocol.MoveTaskParams{ID: "1", Stage: "review"}); err != nil {
		t.Fatalf("move_task: %v", err)
	}
	for {
		f, err := c.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if f.Type == wsprotocol.FrameTypeEvent && f.Event == string(events.EventTaskMoved) {
			return
		}
	}
}
