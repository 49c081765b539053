package update

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/views"
)

const (
	speakerEngine = "remindd"
	speakerUser   = "you"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadAgenda())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = typed.Width, typed.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	case SpokeMsg:
		m.appendLine(speakerEngine, typed.Text)
		return m, m.loadAgenda()
	case PromptMsg:
		m.Prompt = typed.Prompt
		m.appendLine(speakerEngine, typed.Prompt)
		return m, nil
	case PromptExpiredMsg:
		if m.Prompt == typed.Prompt {
			m.Prompt = ""
		}
		m.Status = StatusBar{Text: "no answer"}
		return m, nil
	case CommandDoneMsg:
		m.Busy = false
		m.Prompt = ""
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			var ce *commands.CommandError
			if errors.As(typed.Err, &ce) && ce.Code == commands.ErrCodeUnknownCommand {
				m.appendLine(speakerEngine, "Sorry, I did not get that. Type help for examples.")
			}
			m.log.Debug("command failed", zap.String("input", typed.Input), zap.Error(typed.Err))
		} else {
			m.Status = StatusBar{Text: typed.Result.Message}
		}
		return m, m.loadAgenda()
	case AgendaMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("agenda: %v", typed.Err), IsError: true}
			return m, nil
		}
		m.Agenda = typed.Data
		return m, nil
	case spinner.TickMsg:
		if m.Busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(typed)
			return m, cmd
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.Keys.Quit):
		return m.quit()
	case key.Matches(k, m.Keys.Help):
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case key.Matches(k, m.Keys.ScrollUp), key.Matches(k, m.Keys.ScrollDown):
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(k)
		return m, cmd
	case key.Matches(k, m.Keys.Submit):
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Quitting = true
	if m.console != nil {
		m.console.Close()
	}
	return m, tea.Quit
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if text == "" {
		return m, nil
	}
	m.appendLine(speakerUser, text)

	if m.Prompt != "" {
		m.Prompt = ""
		if m.console == nil || !m.console.Answer(text) {
			m.Status = StatusBar{Text: "answer was not taken", IsError: true}
		}
		return m, nil
	}

	lower := strings.ToLower(text)
	if lower == "quit" || lower == "exit" {
		return m.quit()
	}
	if m.Busy {
		m.Status = StatusBar{Text: "still working on the last request"}
		return m, nil
	}

	var run tea.Cmd
	switch lower {
	case "help":
		m.HelpVisible = true
		run = m.builtin("help", func(ctx context.Context) (commands.Result, error) {
			m.speak(ctx, "Here is what I understand. Press F1 to hide it.")
			return commands.Result{Message: "help shown", OK: true}, nil
		})
	case "time":
		run = m.builtin("time", func(ctx context.Context) (commands.Result, error) {
			m.speak(ctx, fmt.Sprintf("It is %s.", notify.NiceTime(m.now())))
			return commands.Result{Message: "time", OK: true}, nil
		})
	case "scan":
		run = m.builtin("scan", func(ctx context.Context) (commands.Result, error) {
			if m.backend == nil {
				return commands.Result{}, errors.New("no engine attached")
			}
			n, err := m.backend.Scan(ctx)
			return commands.Result{Message: fmt.Sprintf("%d reminders fired", n), OK: n > 0}, err
		})
	default:
		run = m.execute(text)
	}
	m.Busy = true
	m.Status = StatusBar{}
	return m, tea.Batch(m.spinner.Tick, run)
}

// builtin runs a console command, announcing it on the bus like any other
// handler so the pre-notifier can follow up after it.
func (m Model) builtin(name string, fn func(context.Context) (commands.Result, error)) tea.Cmd {
	ctx, bus := m.ctx, m.bus
	return func() tea.Msg {
		handler := "console:" + name
		bus.Publish(notify.Event{Type: notify.EventHandlerStart, Handler: handler})
		res, err := fn(ctx)
		bus.Publish(notify.Event{Type: notify.EventHandlerComplete, Handler: handler})
		return CommandDoneMsg{Input: name, Result: res, Err: err}
	}
}

func (m Model) execute(input string) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		if backend == nil {
			return CommandDoneMsg{Input: input, Err: errors.New("no engine attached")}
		}
		res, err := backend.Execute(ctx, input)
		return CommandDoneMsg{Input: input, Result: res, Err: err}
	}
}

func (m Model) loadAgenda() tea.Cmd {
	ctx, backend := m.ctx, m.backend
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		data, err := backend.Agenda(ctx)
		return AgendaMsg{Data: data, Err: err}
	}
}

func (m Model) speak(ctx context.Context, text string) {
	if m.notifier != nil {
		m.notifier.Speak(ctx, text)
	}
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	header := fmt.Sprintf("remindd | %s", notify.NiceTime(m.now()))
	if m.Busy {
		header += " | " + m.spinner.View() + " working"
	}
	prompt := ""
	if m.Prompt != "" {
		prompt = "? " + m.Prompt
	}

	return views.RenderApp(views.AppData{
		Header:     header,
		LeftPane:   m.transcript.View() + "\n" + m.input.View(),
		RightPane:  views.RenderAgendaPanel(m.Agenda) + m.renderHelpIfVisible(),
		StatusLine: status,
		Prompt:     prompt,
		Footer:     m.helpModel.ShortHelpView(m.Keys.ShortHelp()),
		Width:      m.width,
	})
}
