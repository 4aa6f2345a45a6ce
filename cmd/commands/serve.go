package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/config"
	"github.com/dohr-michael/taskflow/internal/gateway"
	"github.com/dohr-michael/taskflow/internal/heartbeat"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the taskflow HTTP gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Log level follows the config across SIGHUP reloads unless --debug pins it.
	reloader := config.NewReloader(cmd.String("config"), config.DotenvPath(), cfg)
	setupLogging(cmd, reloader.Level())

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = int(cmd.Int("port"))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, cmd.Bool("ephemeral"))
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				if err := reloader.Reload(); err != nil {
					slog.Error("config reload failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	server := gateway.NewServer(a.bus, a.store, a.prefs, cfg.Gateway.Host, cfg.Gateway.Port)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	hb := heartbeat.NewWriter(config.HeartbeatPath(), fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port),
		func() (uint64, int) {
			snap := a.store.Snapshot()
			return snap.Version(), snap.Len()
		})
	hb.Start()
	defer hb.Stop()

	// Wait for signal or error
	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
