package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const day = 24 * time.Hour

func formatLifetime(lifetime time.Duration) string {
	seconds := int64(lifetime / time.Second)

	days := seconds / 86400
	hours := seconds / 3600 % 24
	minutes := seconds / 60 % 60
	seconds %= 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd%02dh%02dm%02ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh%02dm%02ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// formatStart shows the weekday and date once the process has been running a day or more.
func formatStart(started time.Time, lifetime time.Duration) string {
	if lifetime >= day {
		return started.Format("Mon Jan 02 15:04")
	}
	return started.Format("15:04")
}

func formatBytes(bytes uint64) string {
	return humanize.IBytes(bytes)
}

func formatRate(bytesPerSecond float64) string {
	if bytesPerSecond < 0 {
		bytesPerSecond = 0
	}
	return humanize.IBytes(uint64(bytesPerSecond)) + "/s"
}

func formatPercent(percent float64) string {
	return fmt.Sprintf("%5.1f%%", percent)
}

// splitMatch cuts name around the first occurrence of query.
func splitMatch(name, query string) (string, string, string) {
	index := strings.Index(name, query)
	if query == "" || index < 0 {
		return name, "", ""
	}
	return name[:index], query, name[index+len(query):]
}
