package installer

import (
	"fmt"
	"os"

	"jlo/internal/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// SpinnerFunc runs fn while telling the user what is happening.
type SpinnerFunc func(message string, fn func() error) error

// NoSpinner runs fn without any animation.
func NoSpinner(_ string, fn func() error) error {
	return fn()
}

type spinnerFinishedMsg struct{}

type spinnerModel struct {
	spinner  spinner.Model
	message  string
	quitting bool
}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.InfoStyle

	return spinnerModel{
		spinner: s,
		message: message,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerFinishedMsg:
		m.quitting = true
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf(" %s %s\n", m.spinner.View(), m.message)
}

// WithSpinner runs fn with a spinner animation on stderr and returns fn's error
func WithSpinner(message string, fn func() error) error {
	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(os.Stderr), tea.WithInput(nil))

	errc := make(chan error, 1)
	go func() {
		errc <- fn()
		p.Send(spinnerFinishedMsg{})
	}()

	_, runErr := p.Run()
	fnErr := <-errc
	if fnErr != nil {
		return fnErr
	}
	return runErr
}
