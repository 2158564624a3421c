package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"rustidy/internal/driver"
	"rustidy/internal/ui"
)

type formatOutcome struct {
	results []driver.FormatResult
	err     error
}

// runFormatWithUI formats files while a Bubble Tea program draws their
// progress. The event channel is closed once FormatFiles returns, which
// ends the program.
func runFormatWithUI(ctx context.Context, title string, files []string, opts driver.FormatOptions) ([]driver.FormatResult, error) {
	events := make(chan driver.Event, 4*len(files)+4)
	outcomeCh := make(chan formatOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		results, err := driver.FormatFiles(ctx, files, optsCopy)
		outcomeCh <- formatOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// после ctrl+c модель больше не читает: дочитываем, чтобы драйвер не встал
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
