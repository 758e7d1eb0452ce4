package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/myint-archive/brepl/pkg/config"
	"github.com/myint-archive/brepl/pkg/editor"
	"github.com/myint-archive/brepl/pkg/highlight"
	"github.com/myint-archive/brepl/pkg/interp"
	"github.com/myint-archive/brepl/pkg/lookup"
	"github.com/myint-archive/brepl/pkg/teaui"
	"github.com/myint-archive/brepl/pkg/term"
)

const statusText = "<Tab> complete  <C-c> cancel  <C-d> exit"

func runREPL(ctx context.Context, cliCfg Config) error {
	setupLogging(cliCfg.Debug)

	cfgPath := cliCfg.ConfigFile
	if cfgPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfgPath, _ = config.Find(cwd)
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	km, err := cfg.Keymap()
	if err != nil {
		return err
	}
	styles := cfg.Styles()

	histPath := cliCfg.History
	if histPath == "" {
		if histPath, err = cfg.HistoryPath(); err != nil {
			return fmt.Errorf("resolving history path: %w", err)
		}
	}
	store := editor.NewHistoryStore(histPath, cfg.Editor.HistoryLength)
	hist, err := store.Load()
	if err != nil {
		slog.Warn("could not load history", "path", histPath, "error", err)
		hist = editor.NewHistory(cfg.Editor.HistoryLength)
	}

	opts := editor.Options{
		TabWidth:     cfg.Editor.TabWidth,
		PasteTime:    cfg.PasteTime(),
		Prompt:       cfg.Editor.Prompt,
		PromptMore:   cfg.Editor.PromptMore,
		StatusText:   statusText,
		HistoryStore: store,
	}
	hl := highlight.New(cfg.Editor.Language)

	switch cliCfg.Backend {
	case "tea":
		return runTea(opts, hist, hl, km, styles)
	case "term":
		return runTerm(ctx, opts, hist, hl, km, styles)
	default:
		return fmt.Errorf("unknown backend %q", cliCfg.Backend)
	}
}

func runTerm(ctx context.Context, opts editor.Options, hist *editor.History, hl *highlight.Highlighter, km editor.Keymap, styles editor.Styles) error {
	tty, err := term.Open(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	screen := term.NewScreen(tty, km, styles)

	eval := interp.New(screen)
	ns := buildNamespace(eval)
	session := editor.NewSession(opts, hist, eval, hl, ns)

	runErr := editor.Run(ctx, session, screen)

	var result *multierror.Error
	result = multierror.Append(result, runErr)
	if err := tty.Restore(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func runTea(opts editor.Options, hist *editor.History, hl *highlight.Highlighter, km editor.Keymap, styles editor.Styles) error {
	var output bytes.Buffer
	eval := interp.New(&output)
	ns := buildNamespace(eval)
	session := editor.NewSession(opts, hist, eval, hl, ns)
	return teaui.Run(teaui.New(session, km, styles, &output))
}

// buildNamespace registers the interpreter's builtins, with signatures and
// docstrings for the popup, plus its live variables as a dynamic source.
func buildNamespace(eval *interp.Interp) *lookup.Namespace {
	ns := lookup.NewNamespace()
	ns.AddSource(eval.Names)

	ns.Register("print", &lookup.Symbol{
		Callable: true,
		Doc:      "Write the arguments to the output, separated by spaces.",
		Spec:     &editor.ArgSpec{Name: "print", VarArgs: "values"},
	})
	ns.Register("len", &lookup.Symbol{
		Callable: true,
		Doc:      "Return the length of a string.",
		Spec:     &editor.ArgSpec{Name: "len", Params: []string{"s"}},
	})
	ns.Register("abs", &lookup.Symbol{
		Callable: true,
		Doc:      "Return the absolute value of a number.",
		Spec:     &editor.ArgSpec{Name: "abs", Params: []string{"x"}},
	})
	ns.Register("pow", &lookup.Symbol{
		Callable: true,
		Doc:      "Raise base to the given exponent.",
		Spec:     &editor.ArgSpec{Name: "pow", Params: []string{"base", "exp"}},
	})
	ns.Register("exit", &lookup.Symbol{
		Callable: true,
		Doc:      "Leave the REPL.",
		Spec:     &editor.ArgSpec{Name: "exit"},
	})
	return ns
}
