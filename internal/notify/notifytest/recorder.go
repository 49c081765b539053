// Package notifytest provides a scripted Notifier for tests.
package notifytest

import (
	"context"
	"sync"

	"github.com/sandeepkv93/remindd/internal/notify"
)

// Spoken is one line delivered through the recorder.
type Spoken struct {
	Dialog notify.DialogID
	Vars   notify.Vars
	Text   string
}

// Recorder renders dialogs with the English set, records everything that
// was said and answers questions from a queue. An empty queue means no
// answer.
type Recorder struct {
	mu      sync.Mutex
	dialogs *notify.Dialogs
	answers []string
	spoken  []Spoken
	asked   []notify.DialogID
}

func New(answers ...string) *Recorder {
	return &Recorder{dialogs: notify.EnglishDialogs(), answers: answers}
}

// Answer queues more answers.
func (r *Recorder) Answer(answers ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, answers...)
}

func (r *Recorder) Speak(_ context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = append(r.spoken, Spoken{Text: text})
}

func (r *Recorder) SpeakDialog(_ context.Context, id notify.DialogID, vars notify.Vars) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = append(r.spoken, Spoken{Dialog: id, Vars: vars, Text: r.dialogs.Render(id, vars)})
}

func (r *Recorder) AskYesNo(_ context.Context, id notify.DialogID, _ notify.Vars) notify.Answer {
	resp, ok := r.next(id)
	if !ok {
		return notify.AnswerNone
	}
	switch {
	case notify.IsNegative(resp):
		return notify.AnswerNo
	case notify.IsAffirmative(resp):
		return notify.AnswerYes
	}
	return notify.AnswerNone
}

func (r *Recorder) GetResponse(_ context.Context, id notify.DialogID, _ notify.Vars, validate notify.Validator) (string, bool) {
	resp, ok := r.next(id)
	if !ok {
		return "", false
	}
	if validate != nil && !validate(resp) {
		return "", false
	}
	return resp, true
}

// Spoken returns a copy of everything said so far.
func (r *Recorder) Spoken() []Spoken {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Spoken, len(r.spoken))
	copy(out, r.spoken)
	return out
}

// Dialogs returns the IDs of spoken dialogs in order. Plain Speak calls are
// left out.
func (r *Recorder) Dialogs() []notify.DialogID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.DialogID, 0, len(r.spoken))
	for _, s := range r.spoken {
		if s.Dialog != "" {
			out = append(out, s.Dialog)
		}
	}
	return out
}

// Texts returns every spoken line in order.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.spoken))
	for _, s := range r.spoken {
		out = append(out, s.Text)
	}
	return out
}

// Asked returns the dialog IDs of every question, answered or not.
func (r *Recorder) Asked() []notify.DialogID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.DialogID, len(r.asked))
	copy(out, r.asked)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = nil
	r.asked = nil
}

func (r *Recorder) next(id notify.DialogID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.asked = append(r.asked, id)
	if len(r.answers) == 0 {
		return "", false
	}
	resp := r.answers[0]
	r.answers = r.answers[1:]
	return resp, true
}
