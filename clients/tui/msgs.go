package tui

import "github.com/dohr-michael/taskflow/internal/events"

// StoreEventMsg carries a bus event announcing a store change.
type StoreEventMsg struct {
	Event events.Event
}

