package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/clients/tui"
	"github.com/dohr-michael/taskflow/internal/events"
)

// NewTUICommand returns the tui subcommand.
func NewTUICommand() *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive board",
		Action: runTUI,
	}
}

func runTUI(ctx context.Context, cmd *cli.Command) (err error) {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	feed, unsubscribe := a.bus.SubscribeChan(64, events.ChangeEvents...)
	defer unsubscribe()

	p := tea.NewProgram(tui.NewBoard(a.store, a.prefs, feed), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
