// Command remindd keeps timed and untimed reminders and announces them when
// they come due.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// configPath overrides the default config file location.
	configPath string
	version    = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "remindd failed: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "remindd",
	Short: "Persistent reminders with escalation and early notices",
	Long: `remindd keeps timed and untimed reminders in a local database, announces
timed ones when they are due and repeats them until they are cancelled.

Run without a subcommand to open the terminal console.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConsole,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/remindd/config.yaml)")
	rootCmd.AddCommand(replCmd, listCmd, importCmd, exportCmd)
}
