// Package config loads taskflow's JSONC configuration and resolves its data paths.
package config

// Config is the root configuration for taskflow.
type Config struct {
	Storage StorageConfig `json:"storage"`
	Gateway GatewayConfig `json:"gateway"`
	Events  EventsConfig  `json:"events"`
	History HistoryConfig `json:"history"`
	Log     LogConfig     `json:"log"`
}

// StorageConfig selects the durable key-value backend.
type StorageConfig struct {
	Backend  string `json:"backend"`   // "file" | "sqlite" | "memory"
	Dir      string `json:"dir"`       // default: $TASKFLOW_PATH/data
	TasksKey string `json:"tasks_key"` // default: taskflow-tasks
	PrefsKey string `json:"prefs_key"` // default: darkMode
}

// GatewayConfig holds the local HTTP server settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size"`
}

// HistoryConfig controls the JSONL event history.
type HistoryConfig struct {
	Enabled *bool  `json:"enabled,omitempty"` // default: true
	Dir     string `json:"dir"`               // default: $TASKFLOW_PATH/history
}

// On reports whether history logging is enabled.
func (h HistoryConfig) On() bool {
	return h.Enabled == nil || *h.Enabled
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `json:"level"` // "debug" | "info" | "warn" | "error"
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
