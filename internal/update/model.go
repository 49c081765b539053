package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/views"
)

const maxTranscript = 200

// Backend is the reminder engine as seen by the console.
type Backend interface {
	Execute(ctx context.Context, input string) (commands.Result, error)
	Agenda(ctx context.Context) (views.AgendaPanelData, error)
	Scan(ctx context.Context) (int, error)
}

type StatusBar struct {
	Text    string
	IsError bool
}

type SpokeMsg struct {
	Text string
}

type PromptMsg struct {
	Prompt string
}

type PromptExpiredMsg struct {
	Prompt string
}

type CommandDoneMsg struct {
	Input  string
	Result commands.Result
	Err    error
}

type AgendaMsg struct {
	Data views.AgendaPanelData
	Err  error
}

type Options struct {
	Context  context.Context
	Backend  Backend
	Console  *Console
	Notifier notify.Notifier
	Bus      *notify.Bus
	Log      *zap.Logger
	Now      func() time.Time
}

type Model struct {
	Transcript  []views.TranscriptLine
	Agenda      views.AgendaPanelData
	Prompt      string
	Busy        bool
	HelpVisible bool
	Status      StatusBar
	Quitting    bool
	Keys        KeyMap

	ctx      context.Context
	backend  Backend
	console  *Console
	notifier notify.Notifier
	bus      *notify.Bus
	log      *zap.Logger
	now      func() time.Time
	width    int
	height   int

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model
	helpModel  help.Model
}

func NewModel(opts Options) Model {
	m := Model{
		Keys:     DefaultKeyMap(),
		ctx:      opts.Context,
		backend:  opts.Backend,
		console:  opts.Console,
		notifier: opts.Notifier,
		bus:      opts.Bus,
		log:      opts.Log,
		now:      opts.Now,
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.notifier == nil && m.console != nil {
		m.notifier = notify.NewVoice(m.console, nil, m.bus)
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	lw, _ := views.PaneWidths(0)

	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.Placeholder = "remind me to ..."
	m.input.CharLimit = 256
	m.input.Width = lw - 4
	m.input.Focus()

	m.transcript = viewport.New(lw, 16)

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m *Model) resize() {
	lw, _ := views.PaneWidths(m.width)
	m.transcript.Width = lw
	m.transcript.Height = max(m.height-10, 5)
	m.input.Width = lw - 4
	m.helpModel.Width = m.width
}

func (m *Model) appendLine(speaker, text string) {
	m.Transcript = append(m.Transcript, views.TranscriptLine{Speaker: speaker, Text: text})
	if len(m.Transcript) > maxTranscript {
		m.Transcript = m.Transcript[len(m.Transcript)-maxTranscript:]
	}
	m.transcript.SetContent(views.RenderTranscript(m.Transcript))
	m.transcript.GotoBottom()
}
