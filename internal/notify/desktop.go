package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

type NoopPinger struct{}

func (NoopPinger) Ping(context.Context, string, string) error { return nil }

// Desktop pops a native notification through notify-send on Linux and
// osascript on macOS. Other platforms are a no-op.
type Desktop struct {
	goos    string
	command func(ctx context.Context, name string, args ...string) error
}

func NewDesktop() *Desktop {
	return &Desktop{goos: runtime.GOOS, command: runCommand}
}

func (d *Desktop) Ping(ctx context.Context, title, body string) error {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	switch d.goos {
	case "linux":
		return d.command(ctx, "notify-send", title, body)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return d.command(ctx, "osascript", "-e", script)
	default:
		return nil
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
