package update

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindd/internal/notify"
)

var _ notify.Conversation = (*Console)(nil)

// Console is the conversation behind the TUI. Spoken lines and questions
// reach the running program as messages; answers come back from the input
// line through Answer.
type Console struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	backlog []tea.Msg
	answers chan string
	done    chan struct{}
	once    sync.Once
}

func NewConsole() *Console {
	return &Console{
		answers: make(chan string, 1),
		done:    make(chan struct{}),
	}
}

// Attach starts delivery through send, normally (*tea.Program).Send.
// Anything said before Attach is delivered in the background.
func (c *Console) Attach(send func(tea.Msg)) {
	c.mu.Lock()
	c.send = send
	backlog := c.backlog
	c.backlog = nil
	c.mu.Unlock()
	if len(backlog) > 0 {
		go func() {
			for _, msg := range backlog {
				send(msg)
			}
		}()
	}
}

func (c *Console) Say(_ context.Context, text string) {
	c.deliver(SpokeMsg{Text: text})
}

func (c *Console) Ask(ctx context.Context, prompt string) (string, bool) {
	select {
	case <-c.answers:
	default:
	}
	c.deliver(PromptMsg{Prompt: prompt})
	select {
	case answer := <-c.answers:
		return answer, true
	case <-ctx.Done():
		c.deliver(PromptExpiredMsg{Prompt: prompt})
		return "", false
	case <-c.done:
		return "", false
	}
}

// Answer hands text to the pending Ask. It reports false when an earlier
// answer has not been picked up yet.
func (c *Console) Answer(text string) bool {
	select {
	case c.answers <- text:
		return true
	default:
		return false
	}
}

// Close releases any pending Ask and stops delivery.
func (c *Console) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Console) deliver(msg tea.Msg) {
	select {
	case <-c.done:
		return
	default:
	}
	c.mu.Lock()
	send := c.send
	if send == nil {
		c.backlog = append(c.backlog, msg)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	send(msg)
}
