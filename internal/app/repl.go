package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/notify"
)

const replHelp = `Say things like:
  remind me to call mom at 5pm
  what are my reminders for tomorrow
  snooze for 10 minutes
  cancel reminder
Type quit to leave.`

// RunLines reads commands from line until input ends, ctx is done or the
// user quits. line should be the Conversation the App was built with so
// questions and commands share one input.
func (a *App) RunLines(ctx context.Context, line *notify.Line, out io.Writer) error {
	prompt := func() { _, _ = fmt.Fprint(out, "> ") }
	prompt()
	for {
		text, ok := line.Next(ctx)
		if !ok {
			return nil
		}
		text = strings.TrimSpace(text)
		switch strings.ToLower(text) {
		case "":
		case "quit", "exit":
			return nil
		case "help":
			_, _ = fmt.Fprintln(out, replHelp)
		case "time":
			a.builtin(ctx, "time", func(ctx context.Context) {
				a.voice.Speak(ctx, fmt.Sprintf("It is %s.", notify.NiceTime(a.now())))
			})
		case "scan":
			a.builtin(ctx, "scan", func(ctx context.Context) {
				n, err := a.Scan(ctx)
				if err != nil {
					_, _ = fmt.Fprintf(out, "scan failed: %v\n", err)
					return
				}
				_, _ = fmt.Fprintf(out, "%d reminders fired\n", n)
			})
		default:
			if _, err := a.Execute(ctx, text); err != nil {
				var ce *commands.CommandError
				if errors.As(err, &ce) && ce.Code == commands.ErrCodeUnknownCommand {
					_, _ = fmt.Fprintln(out, "Sorry, I did not get that. Type help for examples.")
				} else {
					_, _ = fmt.Fprintf(out, "error: %v\n", err)
				}
				a.log.Debug("command failed", zap.String("input", text), zap.Error(err))
			}
		}
		prompt()
	}
}

// builtin runs a console command between handler events so the pre-notifier
// treats it like any other handler.
func (a *App) builtin(ctx context.Context, name string, fn func(context.Context)) {
	handler := "console:" + name
	a.bus.Publish(notify.Event{Type: notify.EventHandlerStart, Handler: handler})
	defer a.bus.Publish(notify.Event{Type: notify.EventHandlerComplete, Handler: handler})
	fn(ctx)
}
