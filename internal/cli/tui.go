package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/projectday/postergen/pkg/observability"
)

var (
	tuiDoneStyle = lipgloss.NewStyle().Foreground(colorGreen)
	tuiWarnStyle = lipgloss.NewStyle().Foreground(colorYellow)
	tuiDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// recordDoneMsg reports one composed record to the progress model.
type recordDoneMsg struct {
	ID       string
	Warnings int
	Failed   bool
	Elapsed  time.Duration
}

// runDoneMsg ends the progress display.
type runDoneMsg struct{}

// RunProgressModel is the bubbletea model for interactive generate runs.
// It lists each record as its poster completes and keeps a running count.
type RunProgressModel struct {
	Total    int
	Records  []recordDoneMsg
	Aborted  bool
	finished bool
}

// NewRunProgressModel creates a progress model for the given record count.
func NewRunProgressModel(total int) RunProgressModel {
	return RunProgressModel{Total: total}
}

func (m RunProgressModel) Init() tea.Cmd {
	return nil
}

func (m RunProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordDoneMsg:
		m.Records = append(m.Records, msg)
		return m, nil
	case runDoneMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m RunProgressModel) View() string {
	var b strings.Builder

	counter := fmt.Sprintf("  %d", len(m.Records))
	if m.Total > 0 {
		counter = fmt.Sprintf("  %d/%d", len(m.Records), m.Total)
	}
	b.WriteString(StyleTitle.Render("Generating posters"))
	b.WriteString(tuiDimStyle.Render(counter))
	b.WriteString("\n\n")

	for _, r := range m.Records {
		switch {
		case r.Failed:
			b.WriteString(styleIconError.Render(iconError) + " " + r.ID + "\n")
		case r.Warnings > 0:
			b.WriteString(tuiDoneStyle.Render(iconSuccess) + " " + r.ID + " " +
				tuiWarnStyle.Render(fmt.Sprintf("(%d warnings)", r.Warnings)) + "\n")
		default:
			b.WriteString(tuiDoneStyle.Render(iconSuccess) + " " + r.ID + "\n")
		}
	}

	if !m.finished {
		b.WriteString("\n" + tuiDimStyle.Render("q to abort"))
	}
	return b.String()
}

// teaPipelineHooks forwards pipeline events into a running bubbletea
// program. Installed for the duration of an interactive run.
type teaPipelineHooks struct {
	observability.NoopPipelineHooks
	send func(tea.Msg)
}

func (h *teaPipelineHooks) OnComposeComplete(_ context.Context, recordID string, warningCount int, duration time.Duration, err error) {
	h.send(recordDoneMsg{ID: recordID, Warnings: warningCount, Failed: err != nil, Elapsed: duration})
}
