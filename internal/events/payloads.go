package events

import (
	"encoding/json"
	"time"
)

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

// =============================================================================
// STORE EVENTS
// =============================================================================

// TasksLoadedPayload reports how the store was initialised.
type TasksLoadedPayload struct {
	Count  int    `json:"count"`
	Seeded bool   `json:"seeded"`
	Reason string `json:"reason,omitempty"`
}

func (TasksLoadedPayload) EventType() EventType { return EventTasksLoaded }

// TaskAddedPayload is emitted after a task is created.
type TaskAddedPayload struct {
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
	Stage  string `json:"stage"`
}

func (TaskAddedPayload) EventType() EventType { return EventTaskAdded }

// TaskUpdatedPayload is emitted after a task's fields are patched.
type TaskUpdatedPayload struct {
	TaskID string   `json:"task_id"`
	Fields []string `json:"fields,omitempty"`
}

func (TaskUpdatedPayload) EventType() EventType { return EventTaskUpdated }

// TaskDeletedPayload is emitted after a task is removed.
type TaskDeletedPayload struct {
	TaskID string `json:"task_id"`
}

func (TaskDeletedPayload) EventType() EventType { return EventTaskDeleted }

// TaskMovedPayload is emitted after a task changes stage.
type TaskMovedPayload struct {
	TaskID string `json:"task_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (TaskMovedPayload) EventType() EventType { return EventTaskMoved }

// TasksReorderedPayload is emitted after a task is repositioned within its stage.
type TasksReorderedPayload struct {
	StageID string `json:"stage_id"`
	TaskID  string `json:"task_id"`
	From    int    `json:"from"`
	To      int    `json:"to"`
}

func (TasksReorderedPayload) EventType() EventType { return EventTasksReordered }

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// SaveFailedPayload records a persistence write that did not succeed.
type SaveFailedPayload struct {
	Action  string `json:"action"`
	Version uint64 `json:"version"`
	Error   string `json:"error"`
}

func (SaveFailedPayload) EventType() EventType { return EventSaveFailed }

// PrefsChangedPayload is emitted when a display preference changes.
type PrefsChangedPayload struct {
	DarkMode bool `json:"dark_mode"`
}

func (PrefsChangedPayload) EventType() EventType { return EventPrefsChanged }

// NewTypedEvent builds an Event from a typed payload.
func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return Event{
		ID:        generateEventID(),
		Type:      payload.EventType(),
		Timestamp: time.Now(),
		Source:    source,
		Payload:   toMap(payload),
	}
}

func toMap(v any) map[string]any {
	var result map[string]any
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

// =============================================================================
// TYPED PAYLOAD EXTRACTORS
// =============================================================================

func ExtractPayload[T EventPayload](e Event) (T, bool) {
	var result T
	if e.Type != result.EventType() {
		return result, false
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}
