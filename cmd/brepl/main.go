package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Config holds the command-line configuration.
type Config struct {
	Debug      bool
	Backend    string
	ConfigFile string
	History    string
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "brepl [flags]",
		Short: "Interactive calculator REPL with completion popups",
		Long: `brepl is an interactive REPL front-end: a syntax-highlighted input
line with history, tab completion, and inline argument-hint popups,
evaluating a small expression language.`,
		Example: `  # Start the REPL
  brepl

  # Use the bubbletea rendering backend
  brepl --backend tea

  # Run with debug logging enabled
  brepl --debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("stdin is not a terminal")
			}
			return runREPL(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&cfg.Backend, "backend", "term", "Rendering backend: term or tea")
	rootCmd.Flags().StringVar(&cfg.ConfigFile, "config", "", "Path to brepl.toml (default: search upward from cwd)")
	rootCmd.Flags().StringVar(&cfg.History, "history", "", "Path to the history file")

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{Level: level})
	slog.SetDefault(slog.New(handler))
}
