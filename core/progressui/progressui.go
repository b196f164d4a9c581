// Package progressui shows the progress of a release-notes run in the
// terminal.
package progressui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/opensdd/relnotes/core/providers"
)

const maxBarWidth = 60

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

type progressMsg providers.Progress

type doneMsg struct{ err error }

// Model is the bubbletea model of the progress view.
type Model struct {
	title     string
	bar       progress.Model
	last      providers.Progress
	cancel    context.CancelFunc
	cancelled bool
	done      bool
	err       error
}

// New returns a progress view. cancel is called when the user quits early.
func New(title string, cancel context.CancelFunc) Model {
	return Model{
		title:  title,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cancel: cancel,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.cancelled && m.cancel != nil {
				m.cancel()
			}
			m.cancelled = true
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)
	case progressMsg:
		m.last = providers.Progress(msg)
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	ratio := 0.0
	if m.last.Total > 0 {
		ratio = float64(m.last.Done) / float64(m.last.Total)
	}
	status := "Fetching tickets..."
	if m.last.Total > 0 {
		status = fmt.Sprintf("%d/%d %s (%s)", m.last.Done, m.last.Total, m.last.Key, m.last.Elapsed.Round(10*time.Millisecond))
	}
	out := titleStyle.Render(m.title) + "\n" + m.bar.ViewAs(ratio) + "\n" + statusStyle.Render(status) + "\n"
	if m.cancelled {
		out += warnStyle.Render("Cancelling...") + "\n"
	}
	return out
}

// Err returns the result of the work once the view has finished.
func (m Model) Err() error { return m.err }

// Work is a cancellable job that reports per-ticket progress.
type Work func(ctx context.Context, report func(providers.Progress)) error

// Run shows the progress view on out while work runs, and returns work's
// error. Quitting the view cancels work's context.
func Run(ctx context.Context, out io.Writer, title string, work Work) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(title, cancel), tea.WithOutput(out))
	go func() {
		err := work(ctx, func(pr providers.Progress) { p.Send(progressMsg(pr)) })
		p.Send(doneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run progress view: %w", err)
	}
	return final.(Model).Err()
}
