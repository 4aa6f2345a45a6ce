package prefs

import (
	"testing"

	"github.com/dohr-michael/taskflow/internal/storage/kv"
)

func TestDarkModeDefaultsOff(t *testing.T) {
	p := New(kv.NewMemStore(), "", nil)
	if p.DarkMode() {
		t.Error("expected dark mode off when unset")
	}
}

func TestToggleDarkMode(t *testing.T) {
	mem := kv.NewMemStore()
	p := New(mem, "", nil)

	on, err := p.ToggleDarkMode()
	if err != nil {
		t.Fatalf("ToggleDarkMode: %v", err)
	}
	if !on || !p.DarkMode() {
		t.Fatal("expected dark mode on after toggle")
	}

	raw, _ := mem.Get(DarkModeKey)
	if string(raw) != "true" {
		t.Errorf("stored value: got %q, want %q", raw, "true")
	}

	on, _ = p.ToggleDarkMode()
	if on {
		t.Error("expected dark mode off after second toggle")
	}
}

func TestMalformedDarkModeIsOff(t *testing.T) {
	mem := kv.NewMemStore()
	if err := mem.Set(DarkModeKey, []byte(`"yes"`)); err != nil {
		t.Fatal(err)
	}
	if New(mem, "", nil).DarkMode() {
		t.Error("expected malformed value to read as off")
	}
}
