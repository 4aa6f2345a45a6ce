package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

type rendererKey struct {
	dark  bool
	width int
}

var (
	renderersMu sync.Mutex
	renderers   = map[rendererKey]*glamour.TermRenderer{}
)

// descriptionStyle starts from glamour's stock dark or light style and
// aligns headings and links with the board accent.
func descriptionStyle(dark bool) ansi.StyleConfig {
	cfg := styles.LightStyleConfig
	accent := "#6B21A8"
	if dark {
		cfg = styles.DarkStyleConfig
		accent = "#D8A6FF"
	}

	cfg.Document.Margin = uintPtr(0)
	cfg.Document.BlockPrefix = ""
	cfg.Document.BlockSuffix = ""
	cfg.Heading.Color = stringPtr(accent)
	cfg.H1.Color = stringPtr(accent)
	cfg.H1.BackgroundColor = nil
	cfg.H1.Prefix = "# "
	cfg.H1.Suffix = ""
	cfg.Link.Color = stringPtr(accent)
	cfg.LinkText.Color = stringPtr(accent)
	return cfg
}

func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

func markdownRenderer(dark bool, width int) *glamour.TermRenderer {
	key := rendererKey{dark: dark, width: width}

	renderersMu.Lock()
	defer renderersMu.Unlock()
	if r, ok := renderers[key]; ok {
		return r
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(descriptionStyle(dark)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[key] = r
	return r
}

// RenderDescription renders a task description as terminal markdown.
// It returns the description unchanged when rendering fails.
func RenderDescription(content string, dark bool, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r := markdownRenderer(dark, width)
	if r == nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}
