// Package gateway exposes the task store over a local HTTP API and a
// WebSocket feed of store events.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dohr-michael/taskflow/internal/events"
	"github.com/dohr-michael/taskflow/internal/gateway/ws"
	"github.com/dohr-michael/taskflow/internal/prefs"
	"github.com/dohr-michael/taskflow/internal/tasks"
	"github.com/dohr-michael/taskflow/internal/views"
)

// Server is the taskflow gateway HTTP server.
type Server struct {
	httpServer *http.Server
	hub        *ws.Hub
	bus        *events.Bus
	store      *tasks.Store
	prefs      *prefs.Prefs
	tasks      *TaskHandler
	today      func() civil.Date
}

// NewServer creates a new gateway server.
func NewServer(bus *events.Bus, store *tasks.Store, p *prefs.Prefs, host string, port int) *Server {
	th := NewTaskHandler(store)
	hub := ws.NewHub(bus, th)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	s := &Server{
		hub:   hub,
		bus:   bus,
		store: store,
		prefs: p,
		tasks: th,
		today: func() civil.Date { return civil.DateOf(time.Now()) },
	}

	// Routes
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ws", hub.ServeWS)
	r.Get("/api/events", s.handleEvents)
	r.Get("/api/snapshot", s.handleSnapshot)

	// API: tasks
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", s.handleListTasks)
		r.Post("/", s.handleAddTask)
		r.Get("/{id}", s.handleGetTask)
		r.Patch("/{id}", s.handleUpdateTask)
		r.Delete("/{id}", s.handleDeleteTask)
		r.Post("/{id}/move", s.handleMoveTask)
	})
	r.Post("/api/stages/{stage}/reorder", s.handleReorder)

	// API: views
	r.Get("/api/board", s.handleBoard)
	r.Get("/api/calendar", s.handleCalendar)
	r.Get("/api/dashboard", s.handleDashboard)

	// API: preferences
	r.Get("/api/prefs", s.handleGetPrefs)
	r.Put("/api/prefs", s.handlePutPrefs)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("taskflow gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if err := s.store.LastSaveError(); err != nil {
		status["status"] = "degraded"
		status["save_error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		limit = n
	}

	history := s.bus.History(limit)

	type eventJSON struct {
		ID        string             `json:"id"`
		Type      string             `json:"type"`
		Timestamp string             `json:"timestamp"`
		Source    events.EventSource `json:"source"`
		Payload   map[string]any     `json:"payload"`
	}

	result := make([]eventJSON, len(history))
	for i, e := range history {
		result[i] = eventJSON{
			ID:        e.ID,
			Type:      string(e.Type),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Source:    e.Source,
			Payload:   e.Payload,
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tasks.Snapshot())
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := views.Query{
		Search: r.URL.Query().Get("search"),
		Stage:  r.URL.Query().Get("stage"),
	}
	if v := r.URL.Query().Get("priority"); v != "" {
		p, err := tasks.ParsePriority(v)
		if err != nil {
			writeError(w, err)
			return
		}
		q.Priority = p
	}
	writeJSON(w, http.StatusOK, views.Filter(s.store.Snapshot(), q))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := lookup(s.store.Snapshot(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var p ws.TaskParams
	if err := decodeBody(r, &p); err != nil {
		writeError(w, err)
		return
	}
	t, err := s.tasks.AddTask(p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	p := ws.UpdateTaskParams{ID: chi.URLParam(r, "id")}
	if err := decodeBody(r, &p.TaskParams); err != nil {
		writeError(w, err)
		return
	}
	t, err := s.tasks.UpdateTask(p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.tasks.DeleteTask(ws.DeleteTaskParams{ID: chi.URLParam(r, "id")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Stage string `json:"stage"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	t, err := s.tasks.MoveTask(ws.MoveTaskParams{ID: chi.URLParam(r, "id"), Stage: body.Stage})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StartIndex *int `json:"start_index"`
		EndIndex   *int `json:"end_index"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.StartIndex == nil || body.EndIndex == nil {
		writeError(w, fmt.Errorf("%w: start_index and end_index are required", ErrBadRequest))
		return
	}
	col, err := s.tasks.ReorderTasks(ws.ReorderTasksParams{
		StageID:    chi.URLParam(r, "stage"),
		StartIndex: *body.StartIndex,
		EndIndex:   *body.EndIndex,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.Board(s.store.Snapshot()))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	month := today
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := ParseMonth(v)
		if err != nil {
			writeError(w, err)
			return
		}
		month = m
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": fmt.Sprintf("%04d-%02d", month.Year, int(month.Month)),
		"weeks": views.Calendar(s.store.Snapshot(), month, today),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.Dashboard(s.store.Snapshot(), s.today()))
}

type prefsJSON struct {
	DarkMode *bool `json:"darkMode"`
}

func (s *Server) handleGetPrefs(w http.ResponseWriter, r *http.Request) {
	on := s.prefs.DarkMode()
	writeJSON(w, http.StatusOK, prefsJSON{DarkMode: &on})
}

func (s *Server) handlePutPrefs(w http.ResponseWriter, r *http.Request) {
	var body prefsJSON
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.DarkMode == nil {
		writeError(w, fmt.Errorf("%w: darkMode is required", ErrBadRequest))
		return
	}
	if err := s.prefs.SetDarkMode(*body.DarkMode); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// ParseMonth parses a YYYY-MM month into the first day of that month.
func ParseMonth(s string) (civil.Date, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: month %q: want YYYY-MM", ErrBadRequest, s)
	}
	return civil.Date{Year: t.Year(), Month: t.Month(), Day: 1}, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// statusFor maps store and request errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, tasks.ErrEmptyTitle),
		errors.Is(err, tasks.ErrInvalidPriority):
		return http.StatusBadRequest
	case errors.Is(err, ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, tasks.ErrIndexOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error("gateway request failed", "error", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response", "error", err)
	}
}
