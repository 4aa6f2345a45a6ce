package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "taskflow",
		Usage: "Kanban task board for the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep tasks in memory only",
			},
		},
		Commands: []*cli.Command{
			NewTasksCommand(),
			NewBoardCommand(),
			NewCalendarCommand(),
			NewDashboardCommand(),
			NewThemeCommand(),
			NewHistoryCommand(),
			NewServeCommand(),
			NewStatusCommand(),
			NewWatchCommand(),
			NewTUICommand(),
		},
		DefaultCommand: "board",
	}
}
