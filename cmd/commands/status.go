package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/config"
	"github.com/dohr-michael/taskflow/internal/heartbeat"
)

// NewStatusCommand returns the status subcommand.
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show taskflow gateway status",
		Action: func(_ context.Context, cmd *cli.Command) error {
			status, hb, err := heartbeat.Check(config.HeartbeatPath(), heartbeat.DefaultMaxAge)
			if err != nil {
				return fmt.Errorf("check heartbeat: %w", err)
			}

			w := out(cmd)
			switch status {
			case heartbeat.StatusAlive:
				fmt.Fprintf(w, "Gateway: ALIVE (PID %d, uptime %s, http://%s)\n", hb.PID, hb.Uptime, hb.Addr)
				fmt.Fprintf(w, "Tasks:   %d (version %d)\n", hb.Tasks, hb.Version)
			case heartbeat.StatusStale:
				fmt.Fprintf(w, "Gateway: STALE (PID %d, last heartbeat %s ago)\n",
					hb.PID, time.Since(hb.Timestamp).Truncate(time.Second))
			case heartbeat.StatusDead:
				fmt.Fprintln(w, "Gateway: NOT RUNNING")
			}
			return nil
		},
	}
}
