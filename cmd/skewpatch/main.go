package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/sokinpui/skewpatch/cli"
	"github.com/sokinpui/skewpatch/internal/clip"
	"github.com/sokinpui/skewpatch/internal/log"
	"github.com/sokinpui/skewpatch/internal/tui"
	"github.com/sokinpui/skewpatch/internal/ui"
	"github.com/sokinpui/skewpatch/model"
	"github.com/sokinpui/skewpatch/skewpatch"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := cli.ParseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		// The error and usage are already printed.
		return 1
	}
	log.SetVerbose(cfg.Verbose)
	defer log.Sync()

	app, err := skewpatch.New(cfg)
	if err != nil {
		ui.Error("Failed to initialize application: %v", err)
		return 1
	}

	summary, err := execute(app, cfg)
	if err != nil {
		var detailed *skewpatch.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		ui.Error("%v", err)
		return exitCode(cfg, false)
	}

	ui.PrintSummary(summary)

	if cfg.Copy {
		if err := clip.CopyPaths(clip.System, summary.Affected()); err != nil {
			ui.Warning("Could not copy to clipboard: %v", err)
		} else if len(summary.Affected()) > 0 {
			ui.Info("Copied %d path(s) to the clipboard.", len(summary.Affected()))
		}
	}

	return exitCode(cfg, summary.OK())
}

// execute runs the app behind a spinner when stderr is a terminal.
func execute(app *skewpatch.App, cfg *cli.Config) (model.Summary, error) {
	if cfg.NoAnimation || cfg.Verbose || !isTerminal(os.Stderr) {
		return app.Execute()
	}

	label := "Patching"
	if cfg.Restore {
		label = "Restoring"
	}
	// zap shares stderr with the spinner.
	release := log.Hold()
	defer release()

	m := tui.New(app, label)
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	app.SetProgressCallback(func(current, total int) {
		p.Send(tui.ProgressMsg{Current: current, Total: total})
	})

	final, err := p.Run()
	if err != nil {
		return model.Summary{}, fmt.Errorf("error running spinner: %w", err)
	}
	return final.(tui.Model).Result()
}

// exitCode is 0 unless --strict is set and the run did not succeed.
func exitCode(cfg *cli.Config, ok bool) int {
	if cfg.Strict && !ok {
		return 1
	}
	return 0
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
