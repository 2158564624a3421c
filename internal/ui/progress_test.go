package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"rustidy/internal/driver"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan driver.Event)
	model := NewProgressModel("rustidy fmt", []string{"a.rs", "b.rs", "c.rs"}, events).(*progressModel)

	steps := []driver.Event{
		{File: "a.rs", Stage: driver.StageFormat, Status: driver.StatusWorking},
		{File: "a.rs", Stage: driver.StageFormat, Status: driver.StatusDone, Changed: true},
		{File: "b.rs", Stage: driver.StageFormat, Status: driver.StatusDone, Cached: true},
		{File: "c.rs", Stage: driver.StageFormat, Status: driver.StatusError, Err: errors.New("boom")},
		// late events for a finished file are ignored
		{File: "a.rs", Stage: driver.StageWrite, Status: driver.StatusWorking},
		{File: "unknown.rs", Stage: driver.StageFormat, Status: driver.StatusDone},
	}
	for _, ev := range steps {
		model.Update(eventMsg(ev))
	}

	want := []string{"changed", "cached", "error"}
	for i, item := range model.items {
		if item.status != want[i] || !item.finished {
			t.Errorf("%s: status %q finished=%v, want %q", item.path, item.status, item.finished, want[i])
		}
	}
	if model.changed != 1 || model.failed != 1 {
		t.Fatalf("counters: changed=%d failed=%d", model.changed, model.failed)
	}
	if p := model.percent(); p != 1 {
		t.Fatalf("percent = %v, want 1", p)
	}

	view := model.View()
	for _, s := range []string{"rustidy fmt", "a.rs", "3 files, 1 changed, 1 failed"} {
		if !strings.Contains(view, s) {
			t.Errorf("view lacks %q:\n%s", s, view)
		}
	}

	model.Update(doneMsg{})
	if !model.done || !strings.Contains(model.View(), "done: rustidy fmt") {
		t.Fatalf("model should be done")
	}
}

func TestPercentCountsStages(t *testing.T) {
	model := NewProgressModel("x", []string{"a.rs", "b.rs"}, nil).(*progressModel)
	model.Update(eventMsg{File: "a.rs", Stage: driver.StageWrite, Status: driver.StatusWorking})
	if p := model.percent(); p != 0.4 {
		t.Fatalf("percent = %v, want 0.4", p)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		ev   driver.Event
		want string
	}{
		{driver.Event{Status: driver.StatusQueued}, "queued"},
		{driver.Event{Stage: driver.StageLoad, Status: driver.StatusWorking}, "loading"},
		{driver.Event{Stage: driver.StageParse, Status: driver.StatusDone}, "ok"},
		{driver.Event{Stage: driver.StageFormat, Status: driver.StatusDone}, "unchanged"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.ev); got != tt.want {
			t.Errorf("statusLabel(%+v) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("каталог/", 10) + "main.rs"
	got := truncate(long, 20)
	if runewidth.StringWidth(got) > 20 || !strings.HasSuffix(got, "...") {
		t.Fatalf("truncate = %q", got)
	}
	if truncate("short.rs", 20) != "short.rs" {
		t.Fatalf("short values stay as they are")
	}
}
