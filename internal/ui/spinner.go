package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type workDoneMsg struct{ err error }

// SpinnerModel shows a spinner next to label until work returns
type SpinnerModel struct {
	label   string
	work    func() error
	spinner spinner.Model
	done    bool
	err     error
}

// NewSpinnerModel creates a model that runs work in the background
func NewSpinnerModel(label string, work func() error) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)
	return SpinnerModel{label: label, work: work, spinner: s}
}

// Init implements tea.Model
func (m SpinnerModel) Init() tea.Cmd {
	work := m.work
	return tea.Batch(func() tea.Msg { return workDoneMsg{err: work()} }, m.spinner.Tick)
}

// Update implements tea.Model
func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m SpinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("  %s %s\n", m.spinner.View(), m.label)
}

// RunWithSpinner runs work with a spinner on the terminal. Without a
// terminal work runs silently.
func RunWithSpinner(label string, work func() error) error {
	if !IsTerminal() {
		return work()
	}
	final, err := tea.NewProgram(NewSpinnerModel(label, work), tea.WithOutput(os.Stdout), tea.WithInput(nil)).Run()
	if err != nil {
		return err
	}
	return final.(SpinnerModel).err
}
