package ui

import (
	"context"
	stdLibErrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/memlab/wilt/internal/control"
	"github.com/memlab/wilt/internal/state"
	"go.uber.org/zap"
)

const (
	defaultWidth  = 100
	submitTimeout = time.Second
)

type snapshotMsg state.Snapshot

type submitFailedMsg struct {
	command control.Command
	err     error
}

// SubmitFunc hands a command to the control plane.
type SubmitFunc func(ctx context.Context, command control.Command) error

// Publisher forwards every snapshot of the control plane to program.
func Publisher(program *tea.Program) func(snapshot state.Snapshot) {
	return func(snapshot state.Snapshot) {
		program.Send(snapshotMsg(snapshot))
	}
}

// Model renders the latest snapshot. It holds no state of its own beyond the screen size.
type Model struct {
	logger   *zap.Logger
	query    string
	hostname string
	submit   SubmitFunc
	snapshot state.Snapshot
	ready    bool
	width    int
	height   int
	help     help.Model
	err      error
}

// NewModel watches query on hostname. hostname may be empty when the host could not be described.
func NewModel(rootLogger *zap.Logger, query, hostname string, submit SubmitFunc) Model {
	return Model{
		logger:   rootLogger.Named("ui"),
		query:    query,
		hostname: hostname,
		submit:   submit,
		width:    defaultWidth,
		help:     help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.ready = true
		if m.snapshot.Quit {
			m.logger.Debug("Final snapshot received")
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		command, found := control.CommandForKey(msg.String())
		if !found {
			return m, nil
		}
		return m, m.submitCommand(command)

	case submitFailedMsg:
		m.logger.Warn("Failed to submit command", zap.Stringer("Command", msg.command), zap.Error(msg.err))
		if msg.command == control.CommandQuit || stdLibErrors.Is(msg.err, control.ErrPlaneStopped) {
			return m, tea.Quit
		}
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) submitCommand(command control.Command) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		if err := m.submit(ctx, command); err != nil {
			return submitFailedMsg{command: command, err: err}
		}
		return nil
	}
}

func (m Model) View() string {
	sections := []string{m.headerView()}

	// Header and help footer take one line each.
	available := m.height - 2
	used := 0
	for i := range m.snapshot.Records {
		rv := &m.snapshot.Records[i]

		height := entryHeight(rv)
		if m.height > 0 && used+height > available {
			break
		}
		sections = append(sections, renderEntry(rv, m.snapshot.Query, m.snapshot.TakenAt, m.width))
		used += height
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render("ERROR: "+m.err.Error()))
	}
	sections = append(sections, m.help.View(keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	title := titleStyle.Render("wilt")
	if m.hostname != "" {
		title += statusStyle.Render(" on " + m.hostname)
	}

	if !m.ready {
		return title + " " + statusStyle.Render(fmt.Sprintf("looking for processes matching %q", m.query))
	}
	if len(m.snapshot.Records) == 0 {
		return title + " " + statusStyle.Render(fmt.Sprintf("no process matches %q yet", m.query))
	}

	alive := m.snapshot.Alive()
	wilted := len(m.snapshot.Records) - alive
	return title + " " + statusStyle.Render(fmt.Sprintf("%q  %d alive  %d wilted", m.query, alive, wilted))
}
