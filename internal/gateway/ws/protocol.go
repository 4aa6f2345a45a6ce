package ws

import "encoding/json"

// FrameType represents the type of WebSocket frame.
type FrameType string

const (
	FrameTypeRequest  FrameType = "req"
	FrameTypeResponse FrameType = "res"
	FrameTypeEvent    FrameType = "event"
)

// Method represents a WebSocket request method.
type Method string

const (
	MethodSnapshot     Method = "snapshot"
	MethodAddTask      Method = "add_task"
	MethodUpdateTask   Method = "update_task"
	MethodDeleteTask   Method = "delete_task"
	MethodMoveTask     Method = "move_task"
	MethodReorderTasks Method = "reorder_tasks"
)

// Frame is the WebSocket protocol envelope.
type Frame struct {
	Type    FrameType       `json:"type"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
	Event   string          `json:"event,omitempty"`
}

// TaskParams carries task fields on the wire. Nil fields are not set.
// An empty DueDate clears the due date on update.
type TaskParams struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Stage       *string `json:"stage,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"` // YYYY-MM-DD
}

// UpdateTaskParams are the params of update_task.
type UpdateTaskParams struct {
	ID string `json:"id"`
	TaskParams
}

// DeleteTaskParams are the params of delete_task.
type DeleteTaskParams struct {
	ID string `json:"id"`
}

// MoveTaskParams are the params of move_task.
type MoveTaskParams struct {
	ID    string `json:"id"`
	Stage string `json:"stage"`
}

// ReorderTasksParams are the params of reorder_tasks.
type ReorderTasksParams struct {
	StageID    string `json:"stage_id"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// MarshalFrame serializes a Frame to JSON bytes.
func MarshalFrame(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

// UnmarshalFrame deserializes JSON bytes into a Frame.
func UnmarshalFrame(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}

// NewEventFrame creates a Frame for broadcasting an event.
func NewEventFrame(event string, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Type:    FrameTypeEvent,
		Event:   event,
		Payload: data,
	}, nil
}

// NewResponseFrame creates a response Frame.
func NewResponseFrame(id string, ok bool, payload any, errMsg string) (Frame, error) {
	f := Frame{
		Type:  FrameTypeResponse,
		ID:    id,
		OK:    &ok,
		Error: errMsg,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Frame{}, err
		}
		f.Payload = data
	}
	return f, nil
}
