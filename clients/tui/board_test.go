package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dohr-michael/taskflow/clients/tui/molecules"
	"github.com/dohr-michael/taskflow/internal/prefs"
	"github.com/dohr-michael/taskflow/internal/storage/kv"
	"github.com/dohr-michael/taskflow/internal/tasks"
)

func newTestBoard(t *testing.T) (Board, *tasks.Store, *prefs.Prefs) {
	t.Helper()
	mem := kv.NewMemStore()
	store := tasks.NewStore(tasks.StoreConfig{Persister: tasks.NewPersister(mem, tasks.TasksKey)})
	p := prefs.New(mem, "", nil)
	return NewBoard(store, p, nil), store, p
}

func press(t *testing.T, b Board, keys ...string) Board {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, cmd := b.Update(msg)
		b = m.(Board)
		// Feed back submit and cancel messages produced by the input.
		if cmd != nil && (k == "enter" || k == "esc") {
			m, _ = b.Update(cmd())
			b = m.(Board)
		}
	}
	return b
}

func TestBoard_Navigation(t *testing.T) {
	b, _, _ := newTestBoard(t)

	if sel, _ := b.selected(); sel.ID != "1" {
		t.Fatalf("expected task 1 selected, got %q", sel.ID)
	}
	b = press(t, b, "j")
	if sel, _ := b.selected(); sel.ID != "3" {
		t.Fatalf("expected task 3 selected, got %q", sel.ID)
	}
	b = press(t, b, "j", "j")
	if sel, _ := b.selected(); sel.ID != "3" {
		t.Fatalf("expected cursor clamped on task 3, got %q", sel.ID)
	}
	b = press(t, b, "l")
	if b.col != 1 || b.row != 0 {
		t.Fatalf("expected column 1 row 0, got %d/%d", b.col, b.row)
	}
	b = press(t, b, "h", "h", "h")
	if b.col != 0 {
		t.Fatalf("expected column clamped at 0, got %d", b.col)
	}
}

func TestBoard_MoveTask(t *testing.T) {
	b, store, _ := newTestBoard(t)

	b = press(t, b, "L")
	task, _ := store.Snapshot().Task("1")
	if task.Stage != "in-progress" {
		t.Fatalf("expected task 1 in in-progress, got %q", task.Stage)
	}
	if sel, _ := b.selected(); sel.ID != "1" || b.col != 1 {
		t.Fatalf("expected cursor to follow task 1, got %q in column %d", sel.ID, b.col)
	}

	b = press(t, b, "H", "H")
	task, _ = store.Snapshot().Task("1")
	if task.Stage != "todo" {
		t.Fatalf("expected task 1 back in todo, got %q", task.Stage)
	}
}

func TestBoard_Reorder(t *testing.T) {
	b, store, _ := newTestBoard(t)

	b = press(t, b, "J")
	got := store.Snapshot().ByStage("todo")
	if got[0].ID != "3" || got[1].ID != "1" {
		t.Fatalf("expected todo order 3,1 got %s,%s", got[0].ID, got[1].ID)
	}
	if sel, _ := b.selected(); sel.ID != "1" {
		t.Fatalf("expected cursor to follow task 1, got %q", sel.ID)
	}

	version := store.Snapshot().Version()
	b = press(t, b, "J")
	if store.Snapshot().Version() != version {
		t.Fatal("expected reorder past the edge to change nothing")
	}
}

func TestBoard_AddTask(t *testing.T) {
	b, store, _ := newTestBoard(t)

	b = press(t, b, "a", "W", "r", "i", "t", "e", " ", "t", "e", "s", "t", "s", "enter")
	if b.adding {
		t.Fatal("expected input closed after submit")
	}
	if store.Snapshot().Len() != 6 {
		t.Fatalf("expected 6 tasks, got %d", store.Snapshot().Len())
	}
	sel, _ := b.selected()
	if sel.Title != "Write tests" || sel.Priority != tasks.PriorityMedium || sel.Stage != "todo" {
		t.Fatalf("unexpected new task %+v", sel)
	}
}

func TestBoard_AddCancelled(t *testing.T) {
	b, store, _ := newTestBoard(t)

	b = press(t, b, "a", "x", "esc")
	if b.adding {
		t.Fatal("expected input closed after esc")
	}
	if store.Snapshot().Len() != 5 {
		t.Fatalf("expected no task added, got %d", store.Snapshot().Len())
	}
}

func TestBoard_DeleteAndPriority(t *testing.T) {
	b, store, _ := newTestBoard(t)

	b = press(t, b, "p")
	task, _ := store.Snapshot().Task("1")
	if task.Priority != tasks.PriorityMedium {
		t.Fatalf("expected high to cycle to medium, got %q", task.Priority)
	}

	b = press(t, b, "d")
	if _, ok := store.Snapshot().Task("1"); ok {
		t.Fatal("expected task 1 deleted")
	}
	if sel, _ := b.selected(); sel.ID != "3" {
		t.Fatalf("expected task 3 selected after delete, got %q", sel.ID)
	}
}

func TestBoard_ToggleTheme(t *testing.T) {
	b, _, p := newTestBoard(t)

	b = press(t, b, "t")
	if !b.theme.Dark || !p.DarkMode() {
		t.Fatal("expected dark mode on and saved")
	}
}

func TestBoard_View(t *testing.T) {
	b, _, _ := newTestBoard(t)
	m, _ := b.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	b = m.(Board)

	out := b.View()
	for _, want := range []string{"To Do (2)", "In Progress (1)", "Design landing page", "q quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTitleInput_BlankEnterIgnored(t *testing.T) {
	in := molecules.NewTitleInput("title")
	in.Focus()
	_, cmd := in.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no submit for blank input")
	}
}

func TestBoard_Details(t *testing.T) {
	b, _, _ := newTestBoard(t)
	m, _ := b.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	b = m.(Board)

	if strings.Contains(b.View(), "wireframes") {
		t.Fatal("details should be hidden by default")
	}
	b = press(t, b, "enter")
	out := b.View()
	for _, want := range []string{"wireframes", "due 2025-01-15"} {
		if !strings.Contains(out, want) {
			t.Errorf("details missing %q", want)
		}
	}
	b = press(t, b, "esc")
	if b.details {
		t.Error("esc should close details")
	}
}

func TestRenderDescription(t *testing.T) {
	if got := RenderDescription("  ", true, 40); got != "" {
		t.Errorf("blank description: got %q", got)
	}
	got := RenderDescription("Ship the **release** notes", false, 40)
	for _, want := range []string{"Ship", "release", "notes"} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered description missing %q: %q", want, got)
		}
	}
	if strings.Contains(got, "**") {
		t.Errorf("markdown emphasis not rendered: %q", got)
	}
}
