// Package storage keeps the append-only history of store events.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dohr-michael/taskflow/internal/events"
)

// EventLogger persists bus events to JSONL files, one file per UTC day.
type EventLogger struct {
	mu          sync.Mutex
	dir         string
	bus         *events.Bus
	unsubscribe func()
}

// NewEventLogger creates an EventLogger that subscribes to the change events
// of the bus and appends them to dir.
func NewEventLogger(dir string, bus *events.Bus) *EventLogger {
	el := &EventLogger{
		dir: dir,
		bus: bus,
	}
	el.unsubscribe = bus.Subscribe(el.handleEvent, events.ChangeEvents...)
	return el
}

// Close unsubscribes the logger from the event bus.
func (el *EventLogger) Close() {
	if el.unsubscribe != nil {
		el.unsubscribe()
	}
}

func (el *EventLogger) handleEvent(e events.Event) {
	if err := el.writeEvent(e); err != nil {
		slog.Warn("write history", "event", e.Type, "error", err)
	}
}

func (el *EventLogger) writeEvent(e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	el.mu.Lock()
	defer el.mu.Unlock()

	if err := os.MkdirAll(el.dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(HistoryPath(el.dir, e.Timestamp), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}

// HistoryPath returns the JSONL file holding events of the UTC day of ts.
func HistoryPath(dir string, ts time.Time) string {
	return filepath.Join(dir, ts.UTC().Format(time.DateOnly)+".jsonl")
}

// LoadHistory reads the events logged on the UTC day of day. A missing file
// yields no events; corrupted lines are skipped.
func LoadHistory(dir string, day time.Time) ([]events.Event, error) {
	return LoadJSONL[events.Event](HistoryPath(dir, day))
}

// LoadJSONL reads all JSON lines from path, deserializing each into type T.
func LoadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var items []T
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			continue // skip corrupted lines
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", filepath.Base(path), err)
	}

	return items, nil
}
