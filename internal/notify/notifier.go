// Package notify is how remindd talks to the user: spoken (printed) lines,
// dialog templates, yes/no questions and free-form responses, plus the
// lifecycle events other components listen to.
package notify

import (
	"context"
)

type Answer string

const (
	AnswerYes  Answer = "yes"
	AnswerNo   Answer = "no"
	AnswerNone Answer = ""
)

type Vars map[string]string

// Validator accepts or rejects a free-form response.
type Validator func(string) bool

// Notifier is what commands and the scheduler use to reach the user.
//
// AskYesNo and GetResponse block until the user answers or ctx ends. No
// answer is reported as AnswerNone or ok == false.
type Notifier interface {
	Speak(ctx context.Context, text string)
	SpeakDialog(ctx context.Context, id DialogID, vars Vars)
	AskYesNo(ctx context.Context, id DialogID, vars Vars) Answer
	GetResponse(ctx context.Context, id DialogID, vars Vars, validate Validator) (string, bool)
}

// Conversation is the transport underneath a Voice: something that can
// show a line and read one back.
type Conversation interface {
	Say(ctx context.Context, text string)
	Ask(ctx context.Context, prompt string) (string, bool)
}

// Pinger raises an out-of-band alert, such as a desktop notification, when a
// reminder fires.
type Pinger interface {
	Ping(ctx context.Context, title, body string) error
}
