package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"bslint/internal/driver"
	"bslint/internal/ui"
)

type analyzeOutcome struct {
	result *driver.Result
	err    error
}

// runAnalyzeWithUI runs the analysis in the background and renders its
// progress on stderr until the driver finishes.
func runAnalyzeWithUI(ctx context.Context, title string, files []string, path string, isDir bool, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Analyze(ctx, path, isDir, opts)
		close(events)
		outcomeCh <- analyzeOutcome{result: res, err: err}
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// модель больше не читает канал, дочитываем сами
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
