package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/dohr-michael/taskflow/clients/tui"
	"github.com/dohr-michael/taskflow/internal/tasks"
	"github.com/dohr-michael/taskflow/internal/views"
)

// NewTasksCommand returns the tasks subcommand.
func NewTasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Manage tasks",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Match title or description"},
					&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "high, medium or low"},
					&cli.StringFlag{Name: "stage", Usage: "Stage ID"},
				},
				Action: runTasksList,
			},
			{
				Name:      "show",
				Usage:     "Show task details",
				ArgsUsage: "<task_id>",
				Action:    runTasksShow,
			},
			{
				Name:  "add",
				Usage: "Add a task",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Task title", Required: true},
				}, taskFieldFlags(string(tasks.PriorityMedium), "todo")...),
				Action: runTasksAdd,
			},
			{
				Name:      "update",
				Usage:     "Update task fields",
				ArgsUsage: "<task_id>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Task title"},
					&cli.BoolFlag{Name: "clear-due", Usage: "Remove the due date"},
				}, taskFieldFlags("", "")...),
				Action: runTasksUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a task",
				ArgsUsage: "<task_id>",
				Action:    runTasksDelete,
			},
			{
				Name:      "move",
				Usage:     "Move a task to another stage",
				ArgsUsage: "<task_id> <stage>",
				Action:    runTasksMove,
			},
			{
				Name:      "reorder",
				Usage:     "Move a task within a stage",
				ArgsUsage: "<stage> <from_index> <to_index>",
				Action:    runTasksReorder,
			},
			{
				Name:  "export",
				Usage: "Export all tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json or yaml", Value: "json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write to file instead of stdout"},
				},
				Action: runTasksExport,
			},
		},
		DefaultCommand: "list",
	}
}

func taskFieldFlags(priority, stage string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Task description"},
		&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "high, medium or low", Value: priority},
		&cli.StringFlag{Name: "stage", Usage: "Stage ID", Value: stage},
		&cli.StringFlag{Name: "due", Usage: "Due date (YYYY-MM-DD)"},
	}
}

// out is where commands print their results.
func out(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

func runTasksList(_ context.Context, cmd *cli.Command) (err error) {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	q := views.Query{Search: cmd.String("search"), Stage: cmd.String("stage")}
	if v := cmd.String("priority"); v != "" {
		if q.Priority, err = tasks.ParsePriority(v); err != nil {
			return fmt.Errorf("--priority %q: %w", v, err)
		}
	}

	list := views.Filter(a.store.Snapshot(), q)
	if len(list) == 0 {
		fmt.Fprintln(out(cmd), "No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTAGE\tPRIORITY\tDUE\tTITLE")
	for _, t := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Stage,
			t.Priority,
			dueString(t),
			t.Title,
		)
	}
	return w.Flush()
}

func runTasksShow(_ context.Context, cmd *cli.Command) (err error) {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: taskflow tasks show <task_id>")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	snap := a.store.Snapshot()
	t, ok := snap.Task(taskID)
	if !ok {
		return fmt.Errorf("task %s not found", taskID)
	}

	stage := t.Stage
	if st, ok := snap.Stage(t.Stage); ok {
		stage = st.Title
	}

	w := out(cmd)
	fmt.Fprintf(w, "ID:          %s\n", t.ID)
	fmt.Fprintf(w, "Title:       %s\n", t.Title)
	fmt.Fprintf(w, "Stage:       %s\n", stage)
	fmt.Fprintf(w, "Priority:    %s\n", t.Priority)
	fmt.Fprintf(w, "Due:         %s\n", dueString(t))
	fmt.Fprintf(w, "Created:     %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Updated:     %s\n", t.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	if t.Description != "" {
		desc := t.Description
		if tty, width := stdoutTerminal(cmd); tty {
			desc = tui.RenderDescription(desc, a.prefs.DarkMode(), width)
		}
		fmt.Fprintf(w, "\nDescription:\n%s\n", desc)
	}
	return nil
}

func runTasksAdd(_ context.Context, cmd *cli.Command) (err error) {
	d := tasks.Draft{
		Title:       cmd.String("title"),
		Description: cmd.String("description"),
		Stage:       cmd.String("stage"),
	}
	p, err := tasks.ParsePriority(cmd.String("priority"))
	if err != nil {
		return fmt.Errorf("--priority %q: %w", cmd.String("priority"), err)
	}
	d.Priority = p
	if v := cmd.String("due"); v != "" {
		if d.DueDate, err = parseDue(v); err != nil {
			return err
		}
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	t, err := a.store.AddTask(d)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	fmt.Fprintf(out(cmd), "Task %s added.\n", t.ID)
	return nil
}

func runTasksUpdate(_ context.Context, cmd *cli.Command) (err error) {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: taskflow tasks update <task_id> [flags]")
	}

	var patch tasks.Patch
	if cmd.IsSet("title") {
		v := cmd.String("title")
		patch.Title = &v
	}
	if cmd.IsSet("description") {
		v := cmd.String("description")
		patch.Description = &v
	}
	if cmd.IsSet("stage") {
		v := cmd.String("stage")
		patch.Stage = &v
	}
	if cmd.IsSet("priority") {
		p, err := tasks.ParsePriority(cmd.String("priority"))
		if err != nil {
			return fmt.Errorf("--priority %q: %w", cmd.String("priority"), err)
		}
		patch.Priority = &p
	}
	if cmd.IsSet("due") {
		due, err := parseDue(cmd.String("due"))
		if err != nil {
			return err
		}
		patch.DueDate = &due
	}
	patch.ClearDueDate = cmd.Bool("clear-due")
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	if _, ok := a.store.Snapshot().Task(taskID); !ok {
		return fmt.Errorf("task %s not found", taskID)
	}
	if _, err := a.store.UpdateTask(taskID, patch); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	fmt.Fprintf(out(cmd), "Task %s updated.\n", taskID)
	return nil
}

func runTasksDelete(_ context.Context, cmd *cli.Command) (err error) {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: taskflow tasks delete <task_id>")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	if _, ok := a.store.Snapshot().Task(taskID); !ok {
		return fmt.Errorf("task %s not found", taskID)
	}
	a.store.DeleteTask(taskID)
	fmt.Fprintf(out(cmd), "Task %s deleted.\n", taskID)
	return nil
}

func runTasksMove(_ context.Context, cmd *cli.Command) (err error) {
	taskID, stage := cmd.Args().Get(0), cmd.Args().Get(1)
	if taskID == "" || stage == "" {
		return fmt.Errorf("usage: taskflow tasks move <task_id> <stage>")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	if _, ok := a.store.Snapshot().Task(taskID); !ok {
		return fmt.Errorf("task %s not found", taskID)
	}
	a.store.MoveTask(taskID, stage)
	fmt.Fprintf(out(cmd), "Task %s moved to %s.\n", taskID, stage)
	return nil
}

func runTasksReorder(_ context.Context, cmd *cli.Command) (err error) {
	if cmd.Args().Len() != 3 {
		return fmt.Errorf("usage: taskflow tasks reorder <stage> <from_index> <to_index>")
	}
	stage := cmd.Args().Get(0)
	from, err := strconv.Atoi(cmd.Args().Get(1))
	if err != nil {
		return fmt.Errorf("from_index: %w", err)
	}
	to, err := strconv.Atoi(cmd.Args().Get(2))
	if err != nil {
		return fmt.Errorf("to_index: %w", err)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	snap, err := a.store.ReorderTasks(from, to, stage)
	if err != nil {
		return fmt.Errorf("reorder: %w", err)
	}
	w := out(cmd)
	for i, t := range snap.ByStage(stage) {
		fmt.Fprintf(w, "%d. %s  %s\n", i, t.ID, t.Title)
	}
	return nil
}

// exportRecord is the YAML shape of a task, mirroring the JSON record keys.
type exportRecord struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description,omitempty"`
	Priority    string    `yaml:"priority"`
	Stage       string    `yaml:"stage"`
	DueDate     string    `yaml:"dueDate,omitempty"`
	CreatedAt   time.Time `yaml:"createdAt"`
	UpdatedAt   time.Time `yaml:"updatedAt"`
}

func runTasksExport(_ context.Context, cmd *cli.Command) (err error) {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a, &err)

	list := a.store.Snapshot().Tasks()

	var data []byte
	switch format := cmd.String("format"); format {
	case "json":
		if list == nil {
			list = []tasks.Task{}
		}
		data, err = json.MarshalIndent(list, "", "  ")
		data = append(data, '\n')
	case "yaml", "yml":
		records := make([]exportRecord, len(list))
		for i, t := range list {
			records[i] = exportRecord{
				ID:          t.ID,
				Title:       t.Title,
				Description: t.Description,
				Priority:    string(t.Priority),
				Stage:       t.Stage,
				CreatedAt:   t.CreatedAt,
				UpdatedAt:   t.UpdatedAt,
			}
			if t.HasDueDate() {
				records[i].DueDate = t.DueDate.String()
			}
		}
		data, err = yaml.Marshal(records)
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(out(cmd), "Exported %d tasks to %s.\n", len(list), path)
		return nil
	}
	_, err = out(cmd).Write(data)
	return err
}

func parseDue(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("due date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

func dueString(t tasks.Task) string {
	if !t.HasDueDate() {
		return "-"
	}
	return t.DueDate.String()
}
