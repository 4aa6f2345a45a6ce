package heartbeat

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteReadCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")

	w := NewWriter(path, "127.0.0.1:18420", func() (uint64, int) { return 7, 5 })
	w.Start()
	defer w.Stop()

	status, hb, err := Check(path, DefaultMaxAge)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusAlive {
		t.Errorf("expected alive, got %s", status)
	}
	if hb == nil {
		t.Fatal("expected heartbeat, got nil")
	}
	if hb.PID != os.Getpid() {
		t.Errorf("PID: got %d, want %d", hb.PID, os.Getpid())
	}
	if hb.Addr != "127.0.0.1:18420" {
		t.Errorf("Addr: got %q", hb.Addr)
	}
	if hb.Version != 7 || hb.Tasks != 5 {
		t.Errorf("probe: got version %d tasks %d", hb.Version, hb.Tasks)
	}
	if hb.Uptime == "" {
		t.Error("expected non-empty uptime")
	}
}

func TestNilProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")

	w := NewWriter(path, "localhost:1", nil)
	w.Start()
	defer w.Stop()

	_, hb, err := Check(path, DefaultMaxAge)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if hb.Tasks != 0 || hb.Version != 0 {
		t.Errorf("expected zero store fields, got %+v", hb)
	}
}

func TestStaleDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")

	old := Heartbeat{
		PID:       os.Getpid(),
		Addr:      "localhost:18420",
		StartedAt: time.Now().Add(-2 * time.Hour),
		Timestamp: time.Now().Add(-1 * time.Hour),
		Uptime:    "1h0m0s",
	}
	data, _ := json.Marshal(old)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	status, hb, err := Check(path, 30*time.Minute)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusStale {
		t.Errorf("expected stale, got %s", status)
	}
	if hb == nil || hb.Addr != "localhost:18420" {
		t.Fatalf("expected heartbeat with addr, got %+v", hb)
	}
}

func TestDeadDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")

	status, hb, err := Check(path, DefaultMaxAge)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusDead {
		t.Errorf("expected dead, got %s", status)
	}
	if hb != nil {
		t.Errorf("expected nil heartbeat, got %+v", hb)
	}
}

func TestCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	status, _, err := Check(path, DefaultMaxAge)
	if err == nil {
		t.Fatal("expected error for corrupted heartbeat")
	}
	if status != StatusDead {
		t.Errorf("expected dead, got %s", status)
	}
}

func TestStopRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")

	w := NewWriter(path, "localhost:1", nil)
	w.Start()
	w.Stop()
	w.Stop()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected heartbeat file to be removed after Stop")
	}
}
