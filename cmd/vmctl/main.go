package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/viewmodel/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// configDir is the directory searched for vmctl.json.
var configDir string

func main() {
	rootCmd := &cobra.Command{
		Use:   "vmctl",
		Short: "Run and inspect group view-models",
		Long: `vmctl drives the group view-model layer outside of a UI.

It replays snapshot feeds into a view-model registry and serves a
debug API for looking at live view-models:

  • Replay JSON-lines snapshot feeds from disk, stdin or S3
  • Inspect group state and field values over HTTP
  • Watch change notifications over WebSocket
  • Prometheus metrics for the notification pipeline`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "Directory containing vmctl.json")

	rootCmd.AddCommand(
		serveCmd(),
		replayCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
