package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/config"
	"github.com/dohr-michael/taskflow/internal/events"
	"github.com/dohr-michael/taskflow/internal/prefs"
	"github.com/dohr-michael/taskflow/internal/storage"
	"github.com/dohr-michael/taskflow/internal/storage/kv"
	"github.com/dohr-michael/taskflow/internal/tasks"
)

// app bundles the components a command works with.
type app struct {
	cfg     *config.Config
	kv      kv.Store
	bus     *events.Bus
	store   *tasks.Store
	prefs   *prefs.Prefs
	history *storage.EventLogger
}

// loadConfig reads the config named by --config. A missing file means defaults.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("config not found, using defaults", "path", path)
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging installs the stderr text handler at the configured level.
func setupLogging(cmd *cli.Command, level slog.Leveler) {
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openApp loads config, opens storage and builds the store. Callers must Close it.
func openApp(cmd *cli.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	setupLogging(cmd, config.ParseLevel(cfg.Log.Level))
	return newApp(cfg, cmd.Bool("ephemeral"))
}

func newApp(cfg *config.Config, ephemeral bool) (*app, error) {
	backend := cfg.Storage.Backend
	if ephemeral {
		backend = kv.BackendMemory
	}
	store, err := kv.Open(backend, cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	a := &app{
		cfg: cfg,
		kv:  store,
		bus: events.NewBus(cfg.Events.BufferSize),
	}
	if cfg.History.On() && !ephemeral {
		a.history = storage.NewEventLogger(cfg.History.Dir, a.bus)
	}
	a.prefs = prefs.New(store, cfg.Storage.PrefsKey, a.bus)
	a.store = tasks.NewStore(tasks.StoreConfig{
		Persister: tasks.NewPersister(store, cfg.Storage.TasksKey),
		Bus:       a.bus,
	})
	return a, nil
}

// Close flushes pending events to the history log and closes storage.
func (a *app) Close() error {
	a.bus.Close()
	if a.history != nil {
		a.history.Close()
	}
	if err := a.kv.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	if err := a.store.LastSaveError(); err != nil {
		return fmt.Errorf("tasks not saved: %w", err)
	}
	return nil
}

// closeApp closes a and reports its error through err unless err is already set.
func closeApp(a *app, err *error) {
	if cerr := a.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
