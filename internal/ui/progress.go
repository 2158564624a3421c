package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"rustidy/internal/driver"
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
	// counters for the footer
	changed, failed int
}

type fileItem struct {
	path     string
	status   string
	finished bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders per-file progress
// of a format or check run. The model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: "queued"})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-4, 20)

	for _, item := range m.items {
		name := truncate(item.path, nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		b.WriteString(fmt.Sprintf("  %s %s\n", statusStyled, name))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(
		fmt.Sprintf("%d files, %d changed, %d failed", len(m.items), m.changed, m.failed)))
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.File == "" {
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	if item.finished {
		return nil
	}
	item.status = statusLabel(ev)
	if ev.Status == driver.StatusDone || ev.Status == driver.StatusError {
		item.finished = true
		switch {
		case ev.Status == driver.StatusError:
			m.failed++
		case ev.Changed:
			m.changed++
		}
	}
	return m.prog.SetPercent(m.percent())
}

// percent counts finished files fully and files in flight by stage.
func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		if item.finished {
			total++
			continue
		}
		total += progressFromStatus(item.status)
	}
	return total / float64(len(m.items))
}

func progressFromStatus(status string) float64 {
	switch status {
	case "loading":
		return 0.1
	case "parsing", "formatting":
		return 0.4
	case "writing":
		return 0.8
	default:
		return 0.0
	}
}

func statusLabel(ev driver.Event) string {
	switch ev.Status {
	case driver.StatusQueued:
		return "queued"
	case driver.StatusError:
		return "error"
	case driver.StatusDone:
		switch {
		case ev.Cached:
			return "cached"
		case ev.Changed:
			return "changed"
		case ev.Stage == driver.StageParse:
			return "ok"
		default:
			return "unchanged"
		}
	case driver.StatusWorking:
		return stageLabel(ev.Stage)
	default:
		return ""
	}
}

func stageLabel(stage driver.Stage) string {
	switch stage {
	case driver.StageLoad:
		return "loading"
	case driver.StageParse:
		return "parsing"
	case driver.StageFormat:
		return "formatting"
	case driver.StageWrite:
		return "writing"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "unchanged", "cached", "ok":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "changed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "loading", "parsing", "formatting", "writing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
