package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dohr-michael/taskflow/clients/tui/molecules"
	"github.com/dohr-michael/taskflow/internal/events"
	"github.com/dohr-michael/taskflow/internal/prefs"
	"github.com/dohr-michael/taskflow/internal/tasks"
	"github.com/dohr-michael/taskflow/internal/views"
)

const helpText = "h/l column  j/k task  H/L move  J/K reorder  a add  d delete  p priority  enter details  t theme  q quit"

// Board is the root bubbletea model: one column per stage.
type Board struct {
	store *tasks.Store
	prefs *prefs.Prefs
	feed  <-chan events.Event

	cols  []views.Column
	col   int
	row   int
	theme Theme

	adding  bool
	input   molecules.TitleInput
	details bool

	status    string
	statusErr bool
	width     int
	height    int
}

// NewBoard creates the board model. feed may be nil; when set, store events
// arriving on it refresh the board.
func NewBoard(store *tasks.Store, p *prefs.Prefs, feed <-chan events.Event) Board {
	b := Board{
		store: store,
		prefs: p,
		feed:  feed,
		input: molecules.NewTitleInput("New task title"),
		theme: NewTheme(p != nil && p.DarkMode()),
	}
	b.refresh()
	return b
}

// Init starts listening for store events.
func (b Board) Init() tea.Cmd {
	return b.waitForEvent()
}

func (b Board) waitForEvent() tea.Cmd {
	if b.feed == nil {
		return nil
	}
	feed := b.feed
	return func() tea.Msg {
		e, ok := <-feed
		if !ok {
			return nil
		}
		return StoreEventMsg{Event: e}
	}
}

// Update processes all incoming messages.
func (b Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.input.SetWidth(msg.Width - 4)
		return b, nil

	case StoreEventMsg:
		b.refresh()
		if msg.Event.Type == events.EventSaveFailed {
			b.setStatus("save failed: "+fmt.Sprint(msg.Event.Payload["error"]), true)
		}
		return b, b.waitForEvent()

	case molecules.SubmitMsg:
		b.adding = false
		b.input.Blur()
		b.addTask(msg.Content)
		return b, nil

	case molecules.CancelMsg:
		b.adding = false
		b.input.Blur()
		return b, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return b, tea.Quit
		}
		if b.adding {
			var cmd tea.Cmd
			b.input, cmd = b.input.Update(msg)
			return b, cmd
		}
		return b.handleKey(msg)
	}

	if b.adding {
		var cmd tea.Cmd
		b.input, cmd = b.input.Update(msg)
		return b, cmd
	}
	return b, nil
}

func (b Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return b, tea.Quit
	case "h", "left":
		b.focusColumn(b.col - 1)
	case "l", "right":
		b.focusColumn(b.col + 1)
	case "k", "up":
		b.focusRow(b.row - 1)
	case "j", "down":
		b.focusRow(b.row + 1)
	case "H":
		b.moveSelected(-1)
	case "L":
		b.moveSelected(1)
	case "K":
		b.reorderSelected(-1)
	case "J":
		b.reorderSelected(1)
	case "a":
		b.adding = true
		cmd := b.input.Focus()
		return b, cmd
	case "d":
		if t, ok := b.selected(); ok {
			b.store.DeleteTask(t.ID)
			b.refresh()
			b.setStatus("deleted "+t.Title, false)
		}
	case "p":
		b.cyclePriority()
	case "enter":
		b.details = !b.details
	case "esc":
		b.details = false
	case "t":
		b.toggleTheme()
	}
	return b, nil
}

// refresh reloads the columns from the current snapshot and clamps the cursor.
func (b *Board) refresh() {
	b.cols = views.Board(b.store.Snapshot())
	b.focusColumn(b.col)
}

func (b *Board) focusColumn(i int) {
	if len(b.cols) == 0 {
		b.col, b.row = 0, 0
		return
	}
	b.col = clamp(i, 0, len(b.cols)-1)
	b.focusRow(b.row)
}

func (b *Board) focusRow(i int) {
	n := len(b.cols[b.col].Tasks)
	if n == 0 {
		b.row = 0
		return
	}
	b.row = clamp(i, 0, n-1)
}

func (b Board) selected() (tasks.Task, bool) {
	if len(b.cols) == 0 || len(b.cols[b.col].Tasks) == 0 {
		return tasks.Task{}, false
	}
	return b.cols[b.col].Tasks[b.row], true
}

func (b *Board) moveSelected(delta int) {
	t, ok := b.selected()
	target := b.col + delta
	if !ok || target < 0 || target >= len(b.cols) {
		return
	}
	b.store.MoveTask(t.ID, b.cols[target].Stage.ID)
	b.cols = views.Board(b.store.Snapshot())
	b.col = target
	b.row = indexOf(b.cols[target].Tasks, t.ID)
	b.setStatus("moved to "+b.cols[target].Stage.Title, false)
}

func (b *Board) reorderSelected(delta int) {
	if _, ok := b.selected(); !ok {
		return
	}
	stage := b.cols[b.col].Stage.ID
	if _, err := b.store.ReorderTasks(b.row, b.row+delta, stage); err != nil {
		return // already at the edge
	}
	b.row += delta
	b.refresh()
}

func (b *Board) addTask(title string) {
	stage := tasks.SeedStages()[0].ID
	if len(b.cols) > 0 {
		stage = b.cols[b.col].Stage.ID
	}
	t, err := b.store.AddTask(tasks.Draft{Title: title, Priority: tasks.PriorityMedium, Stage: stage})
	if err != nil {
		b.setStatus(err.Error(), true)
		return
	}
	b.refresh()
	b.row = indexOf(b.cols[b.col].Tasks, t.ID)
	b.setStatus("added "+t.ID, false)
}

func (b *Board) cyclePriority() {
	t, ok := b.selected()
	if !ok {
		return
	}
	next := tasks.Priorities[0]
	for i, p := range tasks.Priorities {
		if p == t.Priority {
			next = tasks.Priorities[(i+1)%len(tasks.Priorities)]
		}
	}
	if _, err := b.store.UpdateTask(t.ID, tasks.Patch{Priority: &next}); err != nil {
		b.setStatus(err.Error(), true)
		return
	}
	b.refresh()
}

func (b *Board) toggleTheme() {
	if b.prefs == nil {
		b.theme = NewTheme(!b.theme.Dark)
		return
	}
	on, err := b.prefs.ToggleDarkMode()
	if err != nil {
		b.setStatus(err.Error(), true)
		return
	}
	b.theme = NewTheme(on)
}

func (b *Board) setStatus(text string, isErr bool) {
	b.status = text
	b.statusErr = isErr
}

// View renders the columns, the add input when active and the status bar.
func (b Board) View() string {
	parts := []string{renderColumns(b.cols, b.theme, b.width, b.col, b.row)}
	if b.details {
		if t, ok := b.selected(); ok {
			parts = append(parts, b.renderDetails(t))
		}
	}
	if b.adding {
		parts = append(parts, b.input.View())
	}

	status := b.theme.Muted.Render(helpText)
	if b.status != "" {
		if b.statusErr {
			status = b.theme.Error.Render(b.status)
		} else {
			status = b.status
		}
	}
	parts = append(parts, b.theme.StatusBar.Render(status))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b Board) renderDetails(t tasks.Task) string {
	due := "none"
	if t.HasDueDate() {
		due = t.DueDate.String()
	}
	lines := []string{
		b.theme.TaskSelected.Render(t.Title),
		b.theme.Muted.Render(fmt.Sprintf("%s  %s  due %s", t.ID, t.Priority, due)),
	}
	if desc := RenderDescription(t.Description, b.theme.Dark, b.width-4); desc != "" {
		lines = append(lines, "", desc)
	}
	return b.theme.Column.Render(strings.Join(lines, "\n"))
}

// RenderBoard renders the columns side by side without a cursor.
func RenderBoard(cols []views.Column, theme Theme, width int) string {
	return renderColumns(cols, theme, width, -1, -1)
}

func renderColumns(cols []views.Column, theme Theme, width, selCol, selRow int) string {
	colWidth := 28
	if width > 0 && len(cols) > 0 {
		colWidth = max(16, width/len(cols)-4)
	}

	rendered := make([]string, len(cols))
	for i, c := range cols {
		lines := []string{theme.StageTitle(c.Stage.Color, fmt.Sprintf("%s (%d)", c.Stage.Title, len(c.Tasks))), ""}
		if len(c.Tasks) == 0 {
			lines = append(lines, theme.Muted.Render("no tasks"))
		}
		for j, t := range c.Tasks {
			title := truncate(t.Title, colWidth-4)
			style := theme.Task
			if i == selCol && j == selRow {
				style = theme.TaskSelected
				title = "> " + title
			}
			lines = append(lines, theme.PriorityBadge(string(t.Priority))+" "+style.Render(title))
		}
		box := theme.Column
		if i == selCol {
			box = theme.ColumnSelected
		}
		rendered[i] = box.Width(colWidth).Render(strings.Join(lines, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func indexOf(list []tasks.Task, id string) int {
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return 0
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
