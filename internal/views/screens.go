package views

import (
	"fmt"
	"strings"
)

type AgendaItem struct {
	Label string
	Date  string
	Time  string
	// Active marks a reminder that has fired and can still be canceled or
	// snoozed.
	Active bool
	// Repeats counts the announcements made so far.
	Repeats int
}

type AgendaPanelData struct {
	Items   []AgendaItem
	Untimed []string
}

type TranscriptLine struct {
	Speaker string
	Text    string
}

type HelpPanelData struct {
	Markdown string
	HelpView string
}

// HelpMarkdown lists the phrases the console understands.
const HelpMarkdown = `# Reminders

- **remind me to** _call mom_ **tomorrow at 5pm**
- **remind me to** _buy milk_ (asks for a time, or puts it on your list)
- **set a reminder at** _6pm_ (asks what for)
- **what are my reminders** _for friday_
- **what's my next reminder**
- **what is on my list**
- **delete** _call mom_, **delete reminders for** _tomorrow_
- **cancel**, **snooze** _for 10 minutes_, **stop**
- **clear all reminders**

Built in: **time**, **scan**, **help**, **quit**
`

func RenderAgendaPanel(data AgendaPanelData) string {
	var b strings.Builder
	b.WriteString("upcoming:\n")
	if len(data.Items) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, item := range data.Items {
		b.WriteString(fmt.Sprintf("%s %s %s %s", badge(item), item.Date, item.Time, item.Label))
		if item.Repeats > 0 {
			b.WriteString(fmt.Sprintf(" x%d", item.Repeats))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nlist:\n")
	if len(data.Untimed) == 0 {
		b.WriteString("  (empty)\n")
	}
	for _, label := range data.Untimed {
		b.WriteString("- " + label + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderTranscript(lines []TranscriptLine) string {
	var b strings.Builder
	for _, line := range lines {
		switch line.Speaker {
		case "":
			b.WriteString(line.Text)
		default:
			b.WriteString(line.Speaker + ": " + line.Text)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderHelpPanel(data HelpPanelData) string {
	parts := []string{"help:"}
	if md := RenderMarkdown(data.Markdown); md != "" {
		parts = append(parts, md)
	}
	if data.HelpView != "" {
		parts = append(parts, data.HelpView)
	}
	return strings.Join(parts, "\n")
}

func badge(item AgendaItem) string {
	if item.Active {
		return "[RED]"
	}
	return "[GREEN]"
}
