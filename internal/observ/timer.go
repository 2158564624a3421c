package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records one step of a run: config lookup, file collection,
// formatting, writing.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	// Items is how many files the phase touched, when that makes sense.
	Items int
	Note  string
}

// Timer tracks phases of a single run. Not safe for concurrent use: the
// driver begins and ends phases from its own goroutine.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4), now: time.Now} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
}

// SetItems stores the number of files a phase handled.
func (t *Timer) SetItems(idx, n int) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	t.phases[idx].Items = n
}

// Track begins a phase and returns the function that ends it.
//
//	done := timer.Track("collect")
//	...
//	done("")
func (t *Timer) Track(name string) func(note string) {
	idx := t.Begin(name)
	return func(note string) { t.End(idx, note) }
}

// Summary returns a human-readable string summarizing all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-12s %9.2f ms", p.Name, p.DurationMS)
		if p.Items > 0 {
			fmt.Fprintf(&sb, "  %d files", p.Items)
		}
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "  %-12s %9.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Items      int     `json:"items,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report формирует срез фаз и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Items:      phase.Items,
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
