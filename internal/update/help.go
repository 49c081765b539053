package update

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/remindd/internal/views"
)

type KeyMap struct {
	Submit     key.Binding
	Help       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Help:       key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "toggle help")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Help, k.Quit},
		{k.ScrollUp, k.ScrollDown},
	}
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return "\n\n" + views.RenderHelpPanel(views.HelpPanelData{
		Markdown: views.HelpMarkdown,
		HelpView: m.helpModel.FullHelpView(m.Keys.FullHelp()),
	})
}
