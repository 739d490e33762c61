// Command livecoll builds collection pipelines from livecoll.json, replays
// operation scripts against them and serves them over WebSocket.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/livecoll/internal/config"
	"github.com/vango-dev/livecoll/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬  ┬┬  ┬┌─┐┌─┐┌─┐┬  ┬
  │  │└┐┌┘├┤ │  │ ││  │
  ┴─┘┴ └┘ └─┘└─┘└─┘┴─┘┴─┘
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "livecoll",
		Short: "Live observable collections",
		Long: `livecoll wires observable collections into pipelines.

Collections are declared in livecoll.json: leaf lists and maps plus
derived collections (mapped, filtered, joined, sorted) that stay in
sync with their sources. Features include:

  • Replaying operation scripts and printing the resulting events
  • Serving collections as WebSocket event feeds with resume
  • Applying operations over HTTP or WebSocket
  • Prometheus metrics and OpenTelemetry tracing`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to livecoll.json (default: search upwards from the working directory)")

	rootCmd.AddCommand(
		replayCmd(&configPath),
		serveCmd(&configPath),
		validateCmd(&configPath),
		tokenCmd(&configPath),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads and validates the configuration at path, or the nearest
// livecoll.json when path is empty.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path == "" {
		dir, ferr := config.FindProjectRoot(".")
		if ferr != nil {
			return nil, ferr
		}
		cfg, err = config.Load(dir)
	} else {
		cfg, err = config.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the logger described by the log section of cfg.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// printBanner prints the livecoll ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
