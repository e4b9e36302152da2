package installer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"jlo/internal/theme"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

const (
	padding = 2

	// sendInterval throttles redraw messages for fast transfers.
	sendInterval = 100 * time.Millisecond
)

// Tracker receives the bytes of one transfer as they pass through it.
type Tracker interface {
	io.Writer
	// Close ends the transfer, successful when err is nil.
	Close(err error)
}

// TrackerFactory starts a Tracker for a transfer of total bytes.
type TrackerFactory func(label string, total int64) Tracker

// NopTracker discards progress.
func NopTracker(string, int64) Tracker { return nopTracker{} }

type nopTracker struct{}

func (nopTracker) Write(p []byte) (int, error) { return len(p), nil }
func (nopTracker) Close(error)                 {}

type progressMsg struct {
	done  int64
	speed float64
}

type progressErrMsg struct{ err error }

type progressDoneMsg struct{}

// progressModel is the Bubble Tea model for a byte transfer
type progressModel struct {
	progress progress.Model
	label    string
	total    int64
	done     int64
	speed    float64
	err      error
	finished bool
}

func newProgressModel(label string, total int64) progressModel {
	return progressModel{
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		label: label,
		total: total,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.done = msg.done
		m.speed = msg.speed
		return m, m.progress.SetPercent(m.percent())

	case progressDoneMsg:
		m.finished = true
		return m, tea.Quit

	case progressErrMsg:
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	default:
		return m, nil
	}
}

func (m progressModel) View() string {
	if m.err != nil {
		return theme.ErrorMessage(m.label+" failed: "+m.err.Error()) + "\n"
	}
	if m.finished {
		return ""
	}

	pad := strings.Repeat(" ", padding)
	info := fmt.Sprintf("%s / %s (%.0f%%) - %s/s",
		humanize.IBytes(uint64(m.done)), humanize.IBytes(uint64(m.total)),
		m.percent()*100, humanize.IBytes(uint64(m.speed)))

	return "\n" +
		pad + m.label + "\n" +
		pad + m.progress.View() + "\n" +
		pad + theme.Faint.Render(info) + "\n"
}

// percent is clamped since zip extraction may read the central directory twice.
func (m progressModel) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return min(float64(m.done)/float64(m.total), 1)
}

// barTracker draws a progress bar on stderr while bytes flow through it
type barTracker struct {
	program  *tea.Program
	exited   chan struct{}
	done     int64
	start    time.Time
	lastSend time.Time
}

// BarTracker is a TrackerFactory rendering a Bubble Tea progress bar on stderr.
func BarTracker(label string, total int64) Tracker {
	t := &barTracker{
		program: tea.NewProgram(newProgressModel(label, total), tea.WithOutput(os.Stderr), tea.WithInput(nil)),
		exited:  make(chan struct{}),
		start:   time.Now(),
	}

	go func() {
		defer close(t.exited)
		if _, err := t.program.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running progress: %v\n", err)
		}
	}()

	return t
}

func (t *barTracker) Write(p []byte) (int, error) {
	t.done += int64(len(p))

	if now := time.Now(); now.Sub(t.lastSend) >= sendInterval {
		t.lastSend = now
		t.program.Send(progressMsg{done: t.done, speed: t.speed()})
	}
	return len(p), nil
}

func (t *barTracker) Close(err error) {
	if err != nil {
		t.program.Send(progressErrMsg{err: err})
	} else {
		t.program.Send(progressMsg{done: t.done, speed: t.speed()})
		t.program.Send(progressDoneMsg{})
	}
	<-t.exited
}

func (t *barTracker) speed() float64 {
	if elapsed := time.Since(t.start).Seconds(); elapsed > 0 {
		return float64(t.done) / elapsed
	}
	return 0
}
