package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dohr-michael/taskflow/clients/tui"
	"github.com/dohr-michael/taskflow/internal/views"
)

// NewBoardCommand returns the board subcommand.
func NewBoardCommand() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Show tasks grouped by stage",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "plain", Usage: "Disable colors and columns"},
		},
		Action: runBoard,
	}
}

// NewCalendarCommand returns the calendar subcommand.
func NewCalendarCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendar",
		Usage: "Show tasks by due date for a month",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "month", Aliases: []string{"m"}, Usage: "Month to show (YYYY-MM), default current"},
		},
		Action: runCalendar,
	}
}

// NewDashboardCommand returns the dashboard subcommand.
func NewDashboardCommand() *cli.Command {
	return &cli.Command{
		Name:   "dashboard",
		Usage:  "Show task statistics",
		Action: runDashboard,
	}
}

// stdoutTerminal reports whether output goes to an interactive terminal and its width.
func stdoutTerminal(cmd *cli.Command) (bool, int) {
	if out(cmd) != os.Stdout {
		return false, 0
	}
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return false, 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return true, 0
	}
	return true, width
}

func runBoard(_ context.Context, cmd *cli.Command) (err error) {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	cols := views.Board(a.store.Snapshot())

	if tty, width := stdoutTerminal(cmd); tty && !cmd.Bool("plain") {
		fmt.Fprintln(out(cmd), tui.RenderBoard(cols, tui.NewTheme(a.prefs.DarkMode()), width))
		return nil
	}

	w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	for i, c := range cols {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", c.Stage.Title, len(c.Tasks))
		for _, t := range c.Tasks {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", t.ID, t.Priority, dueString(t), t.Title)
		}
	}
	return w.Flush()
}

func runCalendar(_ context.Context, cmd *cli.Command) (err error) {
	today := civil.DateOf(time.Now())
	month := today
	if v := cmd.String("month"); v != "" {
		t, err := time.Parse("2006-01", v)
		if err != nil {
			return fmt.Errorf("--month %q: want YYYY-MM", v)
		}
		month = civil.Date{Year: t.Year(), Month: t.Month(), Day: 1}
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	grid := views.Calendar(a.store.Snapshot(), month, today)

	w := out(cmd)
	fmt.Fprintf(w, "%s %d\n\n", month.Month, month.Year)
	fmt.Fprintln(w, " Sun  Mon  Tue  Wed  Thu  Fri  Sat")
	var due []views.Day
	for _, week := range grid {
		var line strings.Builder
		for _, d := range week {
			cell := "   "
			if d.InMonth {
				cell = fmt.Sprintf("%3d", d.Date.Day)
			}
			mark := " "
			switch {
			case d.Today:
				mark = "*"
			case len(d.Tasks) > 0:
				mark = "+"
			}
			line.WriteString(" " + cell + mark)
			if d.InMonth && len(d.Tasks) > 0 {
				due = append(due, d)
			}
		}
		fmt.Fprintln(w, line.String())
	}

	if len(due) > 0 {
		fmt.Fprintln(w)
		for _, d := range due {
			for _, t := range d.Tasks {
				fmt.Fprintf(w, "%s  %s  [%s] %s\n", d.Date, t.ID, t.Priority, t.Title)
			}
		}
	}
	return nil
}

func runDashboard(_ context.Context, cmd *cli.Command) (err error) {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	st := views.Dashboard(a.store.Snapshot(), civil.DateOf(time.Now()))

	w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total:\t%d\n", st.Total)
	fmt.Fprintf(w, "Completed:\t%d\n", st.Completed)
	fmt.Fprintf(w, "Overdue:\t%d\n", st.Overdue)
	fmt.Fprintf(w, "High priority:\t%d\n", st.HighPriority)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STAGE\tTASKS")
	for _, s := range st.ByStage {
		fmt.Fprintf(w, "%s\t%d\n", s.Title, s.Count)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PRIORITY\tTASKS")
	for _, p := range st.ByPriority {
		fmt.Fprintf(w, "%s\t%d\n", p.Priority, p.Count)
	}
	return w.Flush()
}
