// Package molecules provides mid-level TUI components.
package molecules

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SubmitMsg is sent when the user presses Enter on a non-empty input.
type SubmitMsg struct {
	Content string
}

// CancelMsg is sent when the user presses Esc.
type CancelMsg struct{}

// TitleInput wraps a single-line text input with Enter-to-submit semantics.
type TitleInput struct {
	input textinput.Model
}

// NewTitleInput creates an input with the given placeholder.
func NewTitleInput(placeholder string) TitleInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 200
	return TitleInput{input: ti}
}

// SetWidth sets the input width.
func (c *TitleInput) SetWidth(w int) {
	c.input.Width = w
}

// Focus gives focus to the input.
func (c *TitleInput) Focus() tea.Cmd {
	return c.input.Focus()
}

// Blur removes focus from the input.
func (c *TitleInput) Blur() {
	c.input.Blur()
}

// Focused reports whether the input has focus.
func (c *TitleInput) Focused() bool {
	return c.input.Focused()
}

// Reset clears the input.
func (c *TitleInput) Reset() {
	c.input.Reset()
}

// Value returns the current text.
func (c *TitleInput) Value() string {
	return c.input.Value()
}

// Update handles key input. Enter with blank content does nothing.
func (c TitleInput) Update(msg tea.Msg) (TitleInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			content := strings.TrimSpace(c.input.Value())
			if content == "" {
				return c, nil
			}
			c.input.Reset()
			return c, func() tea.Msg { return SubmitMsg{Content: content} }
		case tea.KeyEsc:
			c.input.Reset()
			return c, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// View renders the input.
func (c TitleInput) View() string {
	return c.input.View()
}
