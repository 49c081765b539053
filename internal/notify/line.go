package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// Line is a plain line-oriented Conversation: output goes to w, answers
// and commands are read from r one line at a time.
type Line struct {
	mu    sync.Mutex
	w     io.Writer
	lines chan string
	done  chan struct{}
}

func NewLine(r io.Reader, w io.Writer) *Line {
	l := &Line{
		w:     w,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go l.read(r)
	return l
}

func (l *Line) Say(_ context.Context, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintln(l.w, text)
}

func (l *Line) Ask(ctx context.Context, prompt string) (string, bool) {
	l.Say(ctx, prompt)
	l.mu.Lock()
	_, _ = fmt.Fprint(l.w, "> ")
	l.mu.Unlock()
	return l.Next(ctx)
}

// Next returns the next input line. ok is false at end of input or when ctx
// ends first.
func (l *Line) Next(ctx context.Context) (string, bool) {
	select {
	case line, ok := <-l.lines:
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

// Done is closed once the input is exhausted.
func (l *Line) Done() <-chan struct{} {
	return l.done
}

func (l *Line) read(r io.Reader) {
	defer close(l.done)
	defer close(l.lines)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		l.lines <- sc.Text()
	}
}
