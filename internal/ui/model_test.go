package ui

import (
	"context"
	stdLibErrors "errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/memlab/wilt/internal/control"
	"github.com/memlab/wilt/internal/state"
	"github.com/memlab/wilt/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/guregu/null.v3"
)

var takenAt = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func recordView(pid types.Pid, collapsed bool) state.RecordView {
	started := takenAt.Add(-90 * time.Second)
	return state.RecordView{
		Identity:     types.Identity{Pid: pid, StartTime: started.UnixNano() / int64(time.Millisecond)},
		Name:         "sleep",
		State:        state.Alive,
		Collapsed:    collapsed,
		PeakResident: 4 << 20,
		History: []types.Sample{
			{Timestamp: takenAt.Add(-time.Second), ResidentBytes: 2 << 20},
			{Timestamp: takenAt, Interval: time.Second, ResidentBytes: 4 << 20, CPUPercent: 12.5, ReadBytes: 1024},
		},
	}
}

type recordingSubmit struct {
	commands []control.Command
	err      error
}

func (r *recordingSubmit) submit(_ context.Context, command control.Command) error {
	r.commands = append(r.commands, command)
	return r.err
}

func newTestModel(submit *recordingSubmit) Model {
	return NewModel(zap.NewNop(), "sleep", "devbox", submit.submit)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModelWaitsForFirstSnapshot(t *testing.T) {
	m := newTestModel(&recordingSubmit{})
	assert.Contains(t, m.View(), `looking for processes matching "sleep"`)
	assert.Contains(t, m.View(), "wilt on devbox")

	m, cmd := update(t, m, snapshotMsg(state.Snapshot{TakenAt: takenAt, Query: "sleep"}))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), `no process matches "sleep" yet`)
}

func TestModelRendersRecords(t *testing.T) {
	m := newTestModel(&recordingSubmit{})

	wilted := recordView(7002, false)
	wilted.State = state.Wilted
	wilted.WiltedAt = null.TimeFrom(takenAt.Add(-30 * time.Second))

	m, _ = update(t, m, snapshotMsg(state.Snapshot{
		TakenAt: takenAt,
		Query:   "sleep",
		Records: []state.RecordView{recordView(7001, false), wilted},
	}))

	view := m.View()
	assert.Contains(t, view, "1 alive  1 wilted")
	assert.Contains(t, view, "7001")
	assert.Contains(t, view, "7002")
	assert.Contains(t, view, "1m30s")
	assert.Contains(t, view, "1m00s")
	assert.Contains(t, view, "mem 4.0 MiB")
	assert.Contains(t, view, "cpu  12.5%")
	assert.Contains(t, view, "read 1.0 KiB/s")
	assert.Contains(t, view, "quit")
}

func TestEntryHeightFollowsLayout(t *testing.T) {
	expanded := recordView(1, false)
	collapsed := recordView(1, true)

	assert.Equal(t, 4, lipgloss.Height(renderEntry(&expanded, "sleep", takenAt, defaultWidth)))
	assert.Equal(t, 2, lipgloss.Height(renderEntry(&collapsed, "sleep", takenAt, defaultWidth)))
	assert.LessOrEqual(t, lipgloss.Width(renderEntry(&expanded, "sleep", takenAt, defaultWidth)), defaultWidth)
}

func TestModelDropsRecordsThatDoNotFit(t *testing.T) {
	m := newTestModel(&recordingSubmit{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: defaultWidth, Height: 10})
	m, _ = update(t, m, snapshotMsg(state.Snapshot{
		TakenAt: takenAt,
		Query:   "sleep",
		Records: []state.RecordView{recordView(7001, false), recordView(7002, false), recordView(7003, false)},
	}))

	view := m.View()
	assert.Contains(t, view, "7001")
	assert.Contains(t, view, "7002")
	assert.NotContains(t, view, "7003")
}

func TestModelQuitsOnFinalSnapshot(t *testing.T) {
	m := newTestModel(&recordingSubmit{})

	_, cmd := update(t, m, snapshotMsg(state.Snapshot{TakenAt: takenAt, Quit: true}))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelSubmitsCommandsForKeys(t *testing.T) {
	submit := &recordingSubmit{}
	m := newTestModel(submit)

	presses := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'C'}},
		{Type: tea.KeyRunes, Runes: []rune{'E'}},
		{Type: tea.KeyRunes, Runes: []rune{'r'}},
		{Type: tea.KeyCtrlC},
	}
	for _, press := range presses {
		_, cmd := update(t, m, press)
		require.NotNil(t, cmd, "key %s", press)
		assert.Nil(t, cmd())
	}

	assert.Equal(t, []control.Command{
		control.CommandCollapseAll, control.CommandExpandAll, control.CommandReset, control.CommandQuit,
	}, submit.commands)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Nil(t, cmd)
}

func TestModelHandlesSubmitFailures(t *testing.T) {
	submit := &recordingSubmit{err: control.ErrPlaneStopped}
	m := newTestModel(submit)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	msg := cmd()
	require.IsType(t, submitFailedMsg{}, msg)

	_, cmd = update(t, m, msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m, cmd = update(t, m, submitFailedMsg{command: control.CommandReset, err: stdLibErrors.New("busy")})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "ERROR: busy")
}

func TestKeyBindingsMatchCommands(t *testing.T) {
	want := map[string]control.Command{
		"r":      control.CommandReset,
		"C":      control.CommandCollapseAll,
		"E":      control.CommandExpandAll,
		"q":      control.CommandQuit,
		"ctrl+c": control.CommandQuit,
	}

	bound := 0
	for _, binding := range keys.ShortHelp() {
		for _, k := range binding.Keys() {
			command, found := control.CommandForKey(k)
			require.True(t, found, "key %q", k)
			assert.Equal(t, want[k], command, "key %q", k)
			bound++
		}
	}
	assert.Equal(t, len(want), bound)
	assert.True(t, strings.Contains(helpView(), "collapse all"))
}

func helpView() string {
	return newTestModel(&recordingSubmit{}).help.View(keys)
}
