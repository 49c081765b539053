package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header     string
	LeftPane   string
	RightPane  string
	StatusLine string
	Footer     string
	Prompt     string
	// Width is the terminal width; zero keeps the default layout.
	Width int
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const (
	defaultLeftWidth  = 70
	defaultRightWidth = 40
	minLeftWidth      = 30
)

// PaneWidths splits the terminal width between the transcript and the
// agenda.
func PaneWidths(total int) (left, right int) {
	if total <= 0 {
		return defaultLeftWidth, defaultRightWidth
	}
	right = defaultRightWidth
	left = total - right - 4*2
	if left < minLeftWidth {
		left = minLeftWidth
	}
	return left, right
}

func RenderApp(data AppData) string {
	lw, rw := PaneWidths(data.Width)
	left := panelStyle.Width(lw).Render(data.LeftPane)
	right := panelStyle.Width(rw).Render(data.RightPane)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := statusStyle.Render(data.StatusLine)
	if strings.Contains(strings.ToLower(data.StatusLine), "error") {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		row,
	}
	if data.Prompt != "" {
		lines = append(lines, promptStyle.Render(data.Prompt))
	}
	lines = append(lines, status)
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
