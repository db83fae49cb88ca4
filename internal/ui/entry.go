package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/memlab/wilt/internal/state"
	"github.com/memlab/wilt/internal/types"
)

const (
	infoWidth          = 22
	minColumnWidth     = 12
	expandedChartRows  = 3
	collapsedChartRows = 1
)

func chartRows(collapsed bool) int {
	if collapsed {
		return collapsedChartRows
	}
	return expandedChartRows
}

// entryHeight is one header line plus the chart rows.
func entryHeight(rv *state.RecordView) int {
	return 1 + chartRows(rv.Collapsed)
}

func renderEntry(rv *state.RecordView, query string, now time.Time, width int) string {
	styles := stylesFor(rv.Wilted())
	height := entryHeight(rv)
	rows := chartRows(rv.Collapsed)

	columnWidth := (width - infoWidth - 3) / 3
	if columnWidth < minColumnWidth {
		columnWidth = minColumnWidth
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		renderInfo(rv, query, now, styles, height), " ",
		renderMemory(rv, styles, columnWidth, rows), " ",
		renderCPU(rv, styles, columnWidth, rows), " ",
		renderDisk(rv, styles, columnWidth, rows),
	)
}

func renderInfo(rv *state.RecordView, query string, now time.Time, styles entryStyles, height int) string {
	before, matched, after := splitMatch(rv.Name, query)
	name := styles.nameDim.Render(before) + styles.match.Render(matched) + styles.nameDim.Render(after)
	if matched == "" {
		name = styles.name.Render(rv.Name)
	}

	lifetime := rv.Lifetime(now)
	pid := styles.pid.Render(rv.Identity.Pid.String())
	started := styles.infoDim.Render(formatStart(rv.Identity.Started(), lifetime))
	duration := styles.info.Render(formatLifetime(lifetime))

	var lines []string
	if rv.Collapsed {
		lines = []string{
			fit(name+" "+pid, infoWidth, lipgloss.Left),
			fit(duration+" "+started, infoWidth, lipgloss.Right),
		}
	} else {
		lines = []string{
			fit(name, infoWidth, lipgloss.Left),
			fit(pid, infoWidth, lipgloss.Right),
			fit(started, infoWidth, lipgloss.Right),
			fit(duration, infoWidth, lipgloss.Right),
		}
	}
	return block(lines, infoWidth, height)
}

func renderMemory(rv *state.RecordView, styles entryStyles, width, rows int) string {
	values := series(rv.History, func(sample types.Sample) float64 {
		return float64(sample.ResidentBytes)
	})

	var current uint64
	if latest, ok := rv.Latest(); ok {
		current = latest.ResidentBytes
	}

	header := styles.memory.Render("mem ") + styles.plain.Render(formatBytes(current)) +
		styles.label.Render("  peak ") + styles.plain.Render(formatBytes(rv.PeakResident))

	ceiling := float64(rv.PeakResident)
	if observed := maxOf(values); observed > ceiling {
		ceiling = observed
	}
	return chart(header, sparkline(values, width, rows, ceiling), styles.memory, width)
}

func renderCPU(rv *state.RecordView, styles entryStyles, width, rows int) string {
	values := series(rv.History, func(sample types.Sample) float64 {
		return sample.CPUPercent
	})

	var current float64
	if latest, ok := rv.Latest(); ok {
		current = latest.CPUPercent
	}
	peak := maxOf(values)

	header := styles.cpu.Render("cpu ") + styles.plain.Render(formatPercent(current)) +
		styles.label.Render("  peak ") + styles.plain.Render(formatPercent(peak))

	return chart(header, sparkline(values, width, rows, peak), styles.cpu, width)
}

// renderDisk draws read and write rates side by side, each scaled to its own peak.
func renderDisk(rv *state.RecordView, styles entryStyles, width, rows int) string {
	reads := series(rv.History, types.Sample.ReadRate)
	writes := series(rv.History, types.Sample.WriteRate)

	var readRate, writeRate float64
	if latest, ok := rv.Latest(); ok {
		readRate = latest.ReadRate()
		writeRate = latest.WriteRate()
	}

	header := styles.read.Render("read ") + styles.plain.Render(formatRate(readRate)) +
		styles.write.Render("  wrote ") + styles.plain.Render(formatRate(writeRate))

	readWidth := (width - 1) / 2
	writeWidth := width - 1 - readWidth
	readChart := sparkline(reads, readWidth, rows, maxOf(reads))
	writeChart := sparkline(writes, writeWidth, rows, maxOf(writes))

	lines := []string{fit(header, width, lipgloss.Left)}
	for row := 0; row < rows; row++ {
		lines = append(lines, styles.read.Render(readChart[row])+" "+styles.write.Render(writeChart[row]))
	}
	return block(lines, width, rows+1)
}

func chart(header string, rows []string, style lipgloss.Style, width int) string {
	lines := []string{fit(header, width, lipgloss.Left)}
	for _, row := range rows {
		lines = append(lines, style.Render(row))
	}
	return block(lines, width, len(rows)+1)
}

func series(history []types.Sample, value func(types.Sample) float64) []float64 {
	values := make([]float64, 0, len(history))
	for _, sample := range history {
		values = append(values, value(sample))
	}
	return values
}

// fit truncates or pads line to exactly width cells.
func fit(line string, width int, align lipgloss.Position) string {
	truncated := lipgloss.NewStyle().MaxWidth(width).Render(line)
	return lipgloss.NewStyle().Width(width).Align(align).Render(truncated)
}

func block(lines []string, width, height int) string {
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines[:height], "\n")
}
