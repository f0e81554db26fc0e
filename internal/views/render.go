package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const defaultPaneWidth = 58

type AppData struct {
	Header     string
	Subheader  string
	LeftPane   string
	RightPane  string
	StatusLine string
	IsError    bool
	Footer     string
	Overlay    string
	Width      int
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subheaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	overlayStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("9")).Padding(0, 1)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// PaneWidth splits the terminal width between the two panes, leaving room
// for borders and padding.
func PaneWidth(total int) int {
	if total <= 0 {
		return defaultPaneWidth
	}
	w := total/2 - 4
	if w < 20 {
		return 20
	}
	return w
}

func RenderApp(data AppData) string {
	width := PaneWidth(data.Width)
	var row string
	if data.RightPane == "" {
		row = panelStyle.Width(width*2 + 4).Render(data.LeftPane)
	} else {
		left := panelStyle.Width(width).Render(data.LeftPane)
		right := panelStyle.Width(width).Render(data.RightPane)
		row = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	lines := []string{headerStyle.Render(data.Header)}
	if data.Subheader != "" {
		lines = append(lines, subheaderStyle.Render(data.Subheader))
	}
	lines = append(lines, row)
	if data.Overlay != "" {
		lines = append(lines, overlayStyle.Render(data.Overlay))
	}
	if data.StatusLine != "" {
		if data.IsError {
			lines = append(lines, errorStyle.Render(data.StatusLine))
		} else {
			lines = append(lines, statusStyle.Render(data.StatusLine))
		}
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderMarkdown renders md for a terminal of the given width. Rendering
// errors fall back to the raw text.
func RenderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width <= 0 {
		width = defaultPaneWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
