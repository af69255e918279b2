package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/skewpatch/model"
)

// --- Styles ---
var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// Runner executes the operation shown by the spinner.
type Runner interface {
	Execute() (model.Summary, error)
}

// --- Messages ---

// ProgressMsg reports how many files have been processed.
type ProgressMsg struct {
	Current int
	Total   int
}

type summaryMsg struct {
	model.Summary
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// --- Model ---
type Model struct {
	runner   Runner
	label    string
	spinner  spinner.Model
	state    state
	progress ProgressMsg
	summary  model.Summary
	err      error
	// interrupted is set when the user asked to quit before the run ended.
	interrupted bool
}

type state int

const (
	stateProcessing state = iota
	stateDone
)

// New creates a spinner model that runs runner once started.
func New(runner Runner, label string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return Model{
		runner:  runner,
		label:   label,
		spinner: s,
		state:   stateProcessing,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Files are rewritten one by one, stopping midway would leave a
			// half-patched tree. Wait for the run to finish instead.
			m.interrupted = true
		}

	case ProgressMsg:
		m.progress = msg
		return m, nil

	case summaryMsg:
		m.state = stateDone
		m.summary = msg.Summary
		return m, tea.Quit

	case errorMsg:
		m.state = stateDone
		m.err = msg.err
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case stateProcessing:
		status := "starting"
		if m.progress.Total > 0 {
			status = fmt.Sprintf("%d/%d files", m.progress.Current, m.progress.Total)
		}
		if m.interrupted {
			status += ", finishing before exit"
		}
		return fmt.Sprintf("%s %s %s", m.spinner.View(), labelStyle.Render(m.label), faintStyle.Render(status))
	default:
		// The caller prints the summary once the program exits.
		return ""
	}
}

// Result returns the operation's outcome after the program has exited.
func (m Model) Result() (model.Summary, error) {
	return m.summary, m.err
}

func (m Model) run() tea.Msg {
	summary, err := m.runner.Execute()
	if err != nil {
		return errorMsg{err}
	}
	return summaryMsg{Summary: summary}
}
