package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/dirsize/internal/dirsize"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type scanOutcome struct {
	root *dirsize.Node
	err  error
}

func logic(ctx context.Context, options Options, stdout, stderr io.Writer) error {
	enableProgress := options.Output == "table" &&
		!options.Debug &&
		!options.NoProgress &&
		isTerminal(stderr)

	log := newLogger(stderr, options.Debug)

	var (
		scanner *dirsize.Scanner
		ui      *tea.Program
		hook    dirsize.ProgressHook
	)

	if enableProgress {
		ui = tea.NewProgram(
			newProgressModel(func() { scanner.Cancel() }),
			tea.WithOutput(stderr),
		)
		hook = func(p dirsize.Progress) { ui.Send(progressMsg(p)) }
	} else if options.Debug {
		hook = func(p dirsize.Progress) {
			log.WithField("percentage", p.Percentage).Debug(p.Message)
		}
	}

	scanner = dirsize.New(dirsize.Options{
		SparseThreshold: options.SparseThreshold,
		ProbeTimeout:    options.ProbeTimeout,
		ProgressHook:    hook,
		PreCount:        options.PreCount,
		Logger:          log,
	})

	start := time.Now()
	done := make(chan scanOutcome, 1)

	go func() {
		root, err := scanner.Scan(ctx, options.Path)
		done <- scanOutcome{root: root, err: err}

		if ui != nil {
			ui.Send(finishedMsg{})
		}
	}()

	if ui != nil {
		if _, err := ui.Run(); err != nil {
			log.WithError(err).Warn("progress display failed")
			scanner.Cancel()
		}
	}

	outcome := <-done
	elapsed := time.Since(start)

	switch options.Output {
	case "json":
		if err := PrintJSON(dirsize.NewResult(outcome.root, outcome.err), stdout); err != nil {
			return err
		}

		return outcome.err
	case "table":
		if outcome.err != nil {
			return outcome.err
		}

		return PrintTable(outcome.root, dirsize.Summarize(outcome.root, options.TopN), options.Depth, elapsed, stdout)
	default:
		return fmt.Errorf("unknown output format: %s", options.Output)
	}
}
