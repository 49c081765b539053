package notify

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPromptTimeout = 30 * time.Second
	defaultPromptTries   = 3
)

// Voice is the Notifier used in production. It renders dialogs, sends them
// through a Conversation and publishes a spoke event for every line.
type Voice struct {
	conv     Conversation
	dialogs  *Dialogs
	bus      *Bus
	log      *zap.Logger
	timeout  time.Duration
	attempts int
}

type VoiceOption func(*Voice)

// WithPromptTimeout bounds every Ask. A timeout counts as no answer.
func WithPromptTimeout(d time.Duration) VoiceOption {
	return func(v *Voice) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithPromptAttempts caps how often an unusable answer is asked again.
func WithPromptAttempts(n int) VoiceOption {
	return func(v *Voice) {
		if n > 0 {
			v.attempts = n
		}
	}
}

func WithVoiceLogger(log *zap.Logger) VoiceOption {
	return func(v *Voice) {
		if log != nil {
			v.log = log
		}
	}
}

func NewVoice(conv Conversation, dialogs *Dialogs, bus *Bus, opts ...VoiceOption) *Voice {
	if dialogs == nil {
		dialogs = EnglishDialogs()
	}
	v := &Voice{
		conv:     conv,
		dialogs:  dialogs,
		bus:      bus,
		log:      zap.NewNop(),
		timeout:  defaultPromptTimeout,
		attempts: defaultPromptTries,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Voice) Speak(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	v.conv.Say(ctx, text)
	v.bus.Publish(Event{Type: EventSpoke, Text: text})
}

func (v *Voice) SpeakDialog(ctx context.Context, id DialogID, vars Vars) {
	v.Speak(ctx, v.dialogs.Render(id, vars))
}

// AskYesNo asks until the answer is recognisably yes or no. Silence, a
// timeout or running out of attempts yields AnswerNone.
func (v *Voice) AskYesNo(ctx context.Context, id DialogID, vars Vars) Answer {
	prompt := v.dialogs.Render(id, vars)
	for i := 0; i < v.attempts; i++ {
		resp, ok := v.ask(ctx, prompt)
		if !ok {
			return AnswerNone
		}
		switch {
		case IsNegative(resp):
			return AnswerNo
		case IsAffirmative(resp):
			return AnswerYes
		}
		v.log.Debug("unrecognised yes/no answer", zap.String("dialog", string(id)), zap.String("answer", resp))
	}
	return AnswerNone
}

// GetResponse asks until validate accepts the answer. A nil validator
// accepts any non-empty answer.
func (v *Voice) GetResponse(ctx context.Context, id DialogID, vars Vars, validate Validator) (string, bool) {
	prompt := v.dialogs.Render(id, vars)
	for i := 0; i < v.attempts; i++ {
		resp, ok := v.ask(ctx, prompt)
		if !ok {
			return "", false
		}
		if validate == nil || validate(resp) {
			return resp, true
		}
		v.log.Debug("response rejected", zap.String("dialog", string(id)), zap.String("answer", resp))
	}
	return "", false
}

func (v *Voice) ask(ctx context.Context, prompt string) (string, bool) {
	askCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	v.bus.Publish(Event{Type: EventSpoke, Text: prompt})
	resp, ok := v.conv.Ask(askCtx, prompt)
	resp = strings.TrimSpace(resp)
	if !ok || resp == "" {
		return "", false
	}
	return resp, true
}
