package config

import (
	"os"
	"path/filepath"
)

// TaskflowPath returns the root directory for taskflow data.
// It uses $TASKFLOW_PATH if set, otherwise defaults to ~/.taskflow.
func TaskflowPath() string {
	if v := os.Getenv("TASKFLOW_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".taskflow")
	}
	return filepath.Join(home, ".taskflow")
}

// ConfigPath returns the path to the taskflow config file.
func ConfigPath() string {
	return filepath.Join(TaskflowPath(), "config.jsonc")
}

// DotenvPath returns the path to the taskflow .env file.
func DotenvPath() string {
	return filepath.Join(TaskflowPath(), ".env")
}

// HeartbeatPath returns the path of the file a running gateway refreshes.
func HeartbeatPath() string {
	return filepath.Join(TaskflowPath(), "heartbeat.json")
}
