package ui

import "github.com/charmbracelet/lipgloss"

var (
	infoColor      = lipgloss.Color("#808a9f")
	nameColor      = lipgloss.Color("#d29dc0")
	matchColor     = lipgloss.Color("#ff5cb0")
	memoryColor    = lipgloss.Color("#e280c1")
	cpuColor       = lipgloss.Color("#bad29f")
	diskReadColor  = lipgloss.Color("#8fa7e0")
	diskWriteColor = lipgloss.Color("#f6ab65")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(matchColor)
	statusStyle = lipgloss.NewStyle().Foreground(infoColor)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
)

type entryStyles struct {
	name    lipgloss.Style
	nameDim lipgloss.Style
	match   lipgloss.Style
	pid     lipgloss.Style
	info    lipgloss.Style
	infoDim lipgloss.Style
	label   lipgloss.Style
	plain   lipgloss.Style
	memory  lipgloss.Style
	cpu     lipgloss.Style
	read    lipgloss.Style
	write   lipgloss.Style
}

// stylesFor dims every style of a wilted entry.
func stylesFor(wilted bool) entryStyles {
	base := lipgloss.NewStyle().Faint(wilted)

	return entryStyles{
		name:    base.Foreground(nameColor),
		nameDim: base.Foreground(nameColor).Faint(true),
		match:   base.Foreground(matchColor).Bold(true),
		pid:     base.Foreground(infoColor).Italic(true).Faint(true),
		info:    base.Foreground(infoColor),
		infoDim: base.Foreground(infoColor).Faint(true),
		label:   base.Faint(true),
		plain:   base,
		memory:  base.Foreground(memoryColor),
		cpu:     base.Foreground(cpuColor),
		read:    base.Foreground(diskReadColor),
		write:   base.Foreground(diskWriteColor),
	}
}
