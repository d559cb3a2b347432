package status

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Console prints payloads to a terminal.
type Console struct {
	mu sync.Mutex
	w  io.Writer

	prefix lipgloss.Style
	title  lipgloss.Style
	body   lipgloss.Style
}

// NewConsole renders to w, with colors only when color is true.
func NewConsole(w io.Writer, color bool) *Console {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Console{
		w:      w,
		prefix: r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}),
		title:  r.NewStyle().Bold(true),
		body:   r.NewStyle().PaddingLeft(2),
	}
}

// Notify implements Notifier.
func (c *Console) Notify(_ context.Context, p Payload) error {
	var lines []string
	if p.Content != "" {
		lines = append(lines, c.prefix.Render("status")+" "+p.Content)
	}
	for _, e := range p.Embeds {
		title := c.title
		if e.Color != 0 {
			title = title.Foreground(lipgloss.Color(fmt.Sprintf("#%06X", e.Color)))
		}
		lines = append(lines, c.prefix.Render("status")+" "+title.Render(e.Title))
		if e.Description != "" {
			lines = append(lines, c.body.Render(e.Description))
		}
	}
	if len(lines) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w, strings.Join(lines, "\n"))
	return err
}
