package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// NewThemeCommand returns the theme subcommand.
func NewThemeCommand() *cli.Command {
	return &cli.Command{
		Name:      "theme",
		Usage:     "Show or change the display theme",
		ArgsUsage: "[dark|light|toggle]",
		Action:    runTheme,
	}
}

func runTheme(_ context.Context, cmd *cli.Command) (err error) {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	dark := a.prefs.DarkMode()
	switch arg := cmd.Args().First(); arg {
	case "":
	case "dark", "light":
		dark = arg == "dark"
		if err := a.prefs.SetDarkMode(dark); err != nil {
			return err
		}
	case "toggle":
		if dark, err = a.prefs.ToggleDarkMode(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("usage: taskflow theme [dark|light|toggle]")
	}

	name := "light"
	if dark {
		name = "dark"
	}
	fmt.Fprintf(out(cmd), "Theme: %s\n", name)
	return nil
}
