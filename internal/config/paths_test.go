package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTaskflowPath_Default(t *testing.T) {
	t.Setenv("TASKFLOW_PATH", "")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}

	got := TaskflowPath()
	want := filepath.Join(home, ".taskflow")
	if got != want {
		t.Errorf("TaskflowPath() = %q, want %q", got, want)
	}
}

func TestTaskflowPath_EnvOverride(t *testing.T) {
	t.Setenv("TASKFLOW_PATH", "/tmp/custom-taskflow")

	got := TaskflowPath()
	want := "/tmp/custom-taskflow"
	if got != want {
		t.Errorf("TaskflowPath() = %q, want %q", got, want)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("TASKFLOW_PATH", "/tmp/test-taskflow")

	got := ConfigPath()
	want := "/tmp/test-taskflow/config.jsonc"
	if got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
}

func TestDotenvPath(t *testing.T) {
	t.Setenv("TASKFLOW_PATH", "/tmp/test-taskflow")

	got := DotenvPath()
	want := "/tmp/test-taskflow/.env"
	if got != want {
		t.Errorf("DotenvPath() = %q, want %q", got, want)
	}
}

func TestHeartbeatPath(t *testing.T) {
	t.Setenv("TASKFLOW_PATH", "/tmp/test-taskflow")

	got := HeartbeatPath()
	want := "/tmp/test-taskflow/heartbeat.json"
	if got != want {
		t.Errorf("HeartbeatPath() = %q, want %q", got, want)
	}
}
