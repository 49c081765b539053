package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandeepkv93/remindd/internal/app"
	"github.com/sandeepkv93/remindd/internal/config"
	"github.com/sandeepkv93/remindd/internal/logging"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/update"
	"github.com/sandeepkv93/remindd/internal/views"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Talk to remindd line by line on stdin and stdout",
	Long: `Read commands from stdin and answer on stdout. Questions asked while a
command runs are answered on the next line.

Examples:
  remindd repl
  printf 'remind me to call mom at 5pm\nno\n' | remindd repl`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every stored reminder",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Append reminders from a legacy settings JSON file",
	Long: `Append the timed and untimed lists of a legacy settings document.
Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write both lists as a legacy settings JSON document to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

type engine struct {
	*app.App
	log     *zap.Logger
	cleanup func()
}

// openEngine loads the config and builds the engine over conv. Log lines go
// to logOut unless the config names a log file.
func openEngine(conv notify.Conversation, logOut io.Writer) (*engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, closeLog, err := logging.New(cfg.Logging, logOut)
	if err != nil {
		return nil, err
	}
	a, err := app.New(app.Options{Config: cfg, Log: log, Conversation: conv})
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	return &engine{
		App: a,
		log: log,
		cleanup: func() {
			if err := a.Close(); err != nil {
				log.Warn("close engine", zap.Error(err))
			}
			_ = log.Sync()
			_ = closeLog()
		},
	}, nil
}

func runConsole(cmd *cobra.Command, _ []string) error {
	console := update.NewConsole()
	// The screen belongs to the program; only a configured log file is written.
	e, err := openEngine(console, nil)
	if err != nil {
		return err
	}
	defer e.cleanup()

	return e.Run(cmd.Context(), func(ctx context.Context) error {
		model := update.NewModel(update.Options{
			Context:  ctx,
			Backend:  e,
			Console:  console,
			Notifier: e.Notifier(),
			Bus:      e.Bus(),
			Log:      e.log.Named("console"),
		})
		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		console.Attach(program.Send)
		_, err := program.Run()
		console.Close()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
}

func runRepl(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	line := notify.NewLine(cmd.InOrStdin(), out)
	e, err := openEngine(line, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.cleanup()

	return e.Run(cmd.Context(), func(ctx context.Context) error {
		return e.RunLines(ctx, line, out)
	})
}

func runList(cmd *cobra.Command, _ []string) error {
	e, err := openEngine(nil, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.cleanup()

	data, err := e.Agenda(cmd.Context())
	if err != nil {
		return fmt.Errorf("list reminders: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), views.RenderAgendaPanel(data))
	return err
}

func runImport(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	e, err := openEngine(nil, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.cleanup()

	res, err := e.Import(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d timed and %d untimed reminders, skipped %d\n",
		res.Timed, res.Untimed, res.Skipped)
	return err
}

func runExport(cmd *cobra.Command, _ []string) error {
	e, err := openEngine(nil, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.cleanup()
	return e.Export(cmd.Context(), cmd.OutOrStdout())
}
