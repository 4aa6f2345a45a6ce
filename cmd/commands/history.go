package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/config"
	"github.com/dohr-michael/taskflow/internal/storage"
)

// NewHistoryCommand returns the history subcommand.
func NewHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show the change history of a day",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "day", Usage: "Day to show (YYYY-MM-DD, UTC), default today"},
		},
		Action: runHistory,
	}
}

func runHistory(_ context.Context, cmd *cli.Command) error {
	day := time.Now().UTC()
	if v := cmd.String("day"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return fmt.Errorf("--day %q: want YYYY-MM-DD", v)
		}
		day = t
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cmd, config.ParseLevel(cfg.Log.Level))

	list, err := storage.LoadHistory(cfg.History.Dir, day)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintf(out(cmd), "No changes recorded on %s.\n", day.Format(time.DateOnly))
		return nil
	}

	w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tDETAILS")
	for _, e := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			e.Timestamp.Local().Format("15:04:05"),
			e.Type,
			formatPayload(e.Payload),
		)
	}
	return w.Flush()
}

// formatPayload renders payload fields as sorted key=value pairs.
func formatPayload(p map[string]any) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, p[k])
	}
	return strings.Join(parts, " ")
}
