package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/dohr-michael/taskflow/internal/events"
)

var errInvalidParams = errors.New("invalid params")

// TaskHandler executes task requests received over WebSocket.
type TaskHandler interface {
	Snapshot() any
	AddTask(p TaskParams) (any, error)
	UpdateTask(p UpdateTaskParams) (any, error)
	DeleteTask(p DeleteTaskParams) (any, error)
	MoveTask(p MoveTaskParams) (any, error)
	ReorderTasks(p ReorderTasksParams) (any, error)
}

// Client represents a connected WebSocket client.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub manages WebSocket clients and bridges them to the event bus.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*Client]struct{}
	bus         *events.Bus
	tasks       TaskHandler
	unsubscribe func()
}

// NewHub creates a new WebSocket hub connected to an event bus.
func NewHub(bus *events.Bus, tasks TaskHandler) *Hub {
	h := &Hub{
		clients: make(map[*Client]struct{}),
		bus:     bus,
		tasks:   tasks,
	}

	// Subscribe to all events and bridge to WS clients
	h.unsubscribe = bus.Subscribe(func(e events.Event) {
		frame, err := NewEventFrame(string(e.Type), e)
		if err != nil {
			slog.Error("marshal event frame", "error", err)
			return
		}
		data, err := MarshalFrame(frame)
		if err != nil {
			slog.Error("marshal frame", "error", err)
			return
		}
		h.broadcast(data)
	})

	return h
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast sends data to all connected clients.
func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client too slow, skip
		}
	}
}

// register adds a client to the hub.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	slog.Info("ws client connected", "clients", len(h.clients))
}

// unregister removes a client from the hub.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		slog.Info("ws client disconnected", "clients", len(h.clients))
	}
}

// ServeWS handles a WebSocket upgrade and manages the client lifecycle.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // local board, any origin
	})
	if err != nil {
		slog.Error("ws accept", "error", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	h.register(client)

	ctx := r.Context()
	go client.writePump(ctx)
	client.readPump(ctx)
}

// readPump reads frames from the WS connection and dispatches them.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("ws read closed", "status", websocket.CloseStatus(err))
			} else {
				slog.Debug("ws read error", "error", err)
			}
			return
		}

		frame, err := UnmarshalFrame(data)
		if err != nil {
			slog.Error("ws unmarshal frame", "error", err)
			continue
		}

		if frame.Type != FrameTypeRequest {
			slog.Debug("ws unknown frame type", "type", frame.Type)
			continue
		}
		c.handleRequest(frame)
	}
}

// handleRequest dispatches a request frame to the task handler and queues
// the response.
func (c *Client) handleRequest(frame Frame) {
	if c.hub.tasks == nil {
		c.sendError(frame.ID, "task handler not available")
		return
	}

	var (
		result any
		err    error
	)
	switch Method(frame.Method) {
	case MethodSnapshot:
		result = c.hub.tasks.Snapshot()
	case MethodAddTask:
		var p TaskParams
		if err = decodeParams(frame.Params, &p); err == nil {
			result, err = c.hub.tasks.AddTask(p)
		}
	case MethodUpdateTask:
		var p UpdateTaskParams
		if err = decodeParams(frame.Params, &p); err == nil {
			result, err = c.hub.tasks.UpdateTask(p)
		}
	case MethodDeleteTask:
		var p DeleteTaskParams
		if err = decodeParams(frame.Params, &p); err == nil {
			result, err = c.hub.tasks.DeleteTask(p)
		}
	case MethodMoveTask:
		var p MoveTaskParams
		if err = decodeParams(frame.Params, &p); err == nil {
			result, err = c.hub.tasks.MoveTask(p)
		}
	case MethodReorderTasks:
		var p ReorderTasksParams
		if err = decodeParams(frame.Params, &p); err == nil {
			result, err = c.hub.tasks.ReorderTasks(p)
		}
	default:
		c.sendError(frame.ID, "unknown method: "+frame.Method)
		return
	}

	if err != nil {
		c.sendError(frame.ID, err.Error())
		return
	}
	c.sendOK(frame.ID, result)
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errInvalidParams
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidParams
	}
	return nil
}

// writePump writes queued messages to the WS connection.
func (c *Client) writePump(ctx context.Context) {
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) sendOK(id string, payload any) {
	f, err := NewResponseFrame(id, true, payload, "")
	if err != nil {
		slog.Error("marshal response frame", "error", err)
		return
	}
	c.queue(f)
}

func (c *Client) sendError(id string, errMsg string) {
	f, err := NewResponseFrame(id, false, nil, errMsg)
	if err != nil {
		return
	}
	c.queue(f)
}

func (c *Client) queue(f Frame) {
	data, err := MarshalFrame(f)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// Close shuts down the hub and all client connections.
func (h *Hub) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close(websocket.StatusGoingAway, "server shutdown")
		delete(h.clients, c)
	}
}
