package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	wsclient "github.com/dohr-michael/taskflow/clients/ws"
	"github.com/dohr-michael/taskflow/internal/config"
	"github.com/dohr-michael/taskflow/internal/events"
	wsprotocol "github.com/dohr-michael/taskflow/internal/gateway/ws"
	"github.com/dohr-michael/taskflow/internal/heartbeat"
)

// NewWatchCommand returns the watch subcommand.
func NewWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Stream changes from a running gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Gateway WebSocket URL (default: running gateway, then config)",
			},
		},
		Action: runWatch,
	}
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	url := cmd.String("url")
	if url == "" {
		addr := fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port)
		if status, hb, err := heartbeat.Check(config.HeartbeatPath(), heartbeat.DefaultMaxAge); err == nil && status == heartbeat.StatusAlive {
			addr = hb.Addr
		}
		url = "ws://" + addr + "/api/ws"
	}

	client, err := wsclient.Dial(ctx, url)
	if err != nil {
		return err
	}
	defer client.Close()

	var snap struct {
		Version uint64            `json:"version"`
		Tasks   []json.RawMessage `json:"tasks"`
	}
	if err := client.Call(wsprotocol.MethodSnapshot, struct{}{}, &snap); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	w := out(cmd)
	fmt.Fprintf(w, "Connected to %s (version %d, %d tasks)\n", url, snap.Version, len(snap.Tasks))

	for {
		f, err := client.ReadFrame()
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if f.Type != wsprotocol.FrameTypeEvent {
			continue
		}
		var e events.Event
		if err := json.Unmarshal(f.Payload, &e); err != nil {
			continue
		}
		fmt.Fprintf(w, "%s  %-18s %s\n", e.Timestamp.Local().Format(time.TimeOnly), e.Type, formatPayload(e.Payload))
	}
}
