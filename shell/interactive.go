package shell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/native-bridge/bridge"
	"github.com/wippyai/native-bridge/errors"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	stateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	callStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const refreshInterval = 100 * time.Millisecond

type keyMap struct {
	Create  key.Binding
	Resume  key.Binding
	Pause   key.Binding
	Destroy key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Create, k.Resume, k.Pause, k.Destroy, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Create:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create")),
	Resume:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
	Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
	Destroy: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "destroy")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "finish")),
}

type interactiveModel struct {
	shell    *Shell
	status   *Status
	help     help.Model
	keys     keyMap
	snap     Snapshot
	quitting bool
}

type tickMsg time.Time

type stoppedMsg struct{}

func newInteractiveModel(sh *Shell, st *Status) *interactiveModel {
	return &interactiveModel{
		shell:  sh,
		status: st,
		help:   help.New(),
		keys:   defaultKeys,
		snap:   st.Snapshot(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *interactiveModel) waitStopped() tea.Msg {
	<-m.shell.Done()
	return stoppedMsg{}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitStopped)
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.shell.Finish()
		case key.Matches(msg, m.keys.Create):
			m.shell.Post(bridge.EventCreate)
		case key.Matches(msg, m.keys.Resume):
			m.shell.Post(bridge.EventResume)
		case key.Matches(msg, m.keys.Pause):
			m.shell.Post(bridge.EventPause)
		case key.Matches(msg, m.keys.Destroy):
			m.shell.Post(bridge.EventDestroy)
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tickMsg:
		m.snap = m.status.Snapshot()
		return m, tick()

	case stoppedMsg:
		m.snap = m.status.Snapshot()
		return m, tea.Quit
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Native Bridge"))
	b.WriteString(" ")
	b.WriteString(m.snap.Library)
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("state    "))
	b.WriteString(stateStyle.Render(m.snap.State.String()))
	if m.snap.Degraded {
		b.WriteString(" ")
		b.WriteString(degradedStyle.Render("(degraded: no native runtime)"))
	}
	b.WriteString("\n")

	if m.snap.LoadError != "" {
		b.WriteString(labelStyle.Render("load     "))
		b.WriteString(errorStyle.Render(m.snap.LoadError))
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render("native   "))
	if len(m.snap.Trace) == 0 {
		b.WriteString(labelStyle.Render("no calls"))
	} else {
		calls := make([]string, len(m.snap.Trace))
		for i, c := range m.snap.Trace {
			calls[i] = callStyle.Render(string(c))
		}
		b.WriteString(strings.Join(calls, " → "))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render(fmt.Sprintf("events   %d (%d ignored)", m.snap.Events, m.snap.Ignored)))
	b.WriteString("\n\n")

	if m.quitting {
		b.WriteString(labelStyle.Render("finishing..."))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	b.WriteString("\n")
	return b.String()
}

// RunInteractive runs sh under a terminal UI. The shell is started here and
// always torn down before RunInteractive returns.
func RunInteractive(ctx context.Context, sh *Shell, st *Status, opts ...tea.ProgramOption) error {
	runErr := make(chan error, 1)
	go func() {
		runErr <- sh.Run(ctx)
	}()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(newInteractiveModel(sh, st), opts...)
	_, err := p.Run()

	sh.Finish()
	if rerr := <-runErr; rerr != nil {
		return rerr
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
