// Package prefs stores display preferences next to the task collection.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dohr-michael/taskflow/internal/events"
	"github.com/dohr-michael/taskflow/internal/storage/kv"
)

// DarkModeKey is the storage key of the dark-mode flag.
const DarkModeKey = "darkMode"

// Prefs reads and writes display preferences.
type Prefs struct {
	store kv.Store
	key   string
	bus   *events.Bus
}

// New creates Prefs over store. An empty key means DarkModeKey; bus may be nil.
func New(store kv.Store, key string, bus *events.Bus) *Prefs {
	if key == "" {
		key = DarkModeKey
	}
	return &Prefs{store: store, key: key, bus: bus}
}

// DarkMode reports the saved flag. Missing or unreadable values mean false.
func (p *Prefs) DarkMode() bool {
	data, err := p.store.Get(p.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			slog.Warn("read dark mode preference", "error", err)
		}
		return false
	}
	var on bool
	if err := json.Unmarshal(data, &on); err != nil {
		slog.Warn("ignoring malformed dark mode preference", "value", string(data))
		return false
	}
	return on
}

// SetDarkMode saves the flag.
func (p *Prefs) SetDarkMode(on bool) error {
	data, _ := json.Marshal(on)
	if err := p.store.Set(p.key, data); err != nil {
		return fmt.Errorf("save dark mode: %w", err)
	}
	if p.bus != nil {
		p.bus.Publish(events.NewTypedEvent(events.SourcePrefs, events.PrefsChangedPayload{DarkMode: on}))
	}
	return nil
}

// ToggleDarkMode flips the flag and returns the new value.
func (p *Prefs) ToggleDarkMode() (bool, error) {
	on := !p.DarkMode()
	return on, p.SetDarkMode(on)
}
