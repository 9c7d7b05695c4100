package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type statusInfo struct {
	loaded  int
	total   int
	query   string
	filters string
	hasMore bool
}

func renderStatusBar(s statusInfo, hints string, width int) string {
	left := fmt.Sprintf(" %d articles", s.loaded)
	if s.total > s.loaded {
		left = fmt.Sprintf(" %d of %d articles", s.loaded, s.total)
	}
	if s.query != "" && s.query != "All" {
		left += " · " + s.query
	}
	if s.filters != "Preferences" {
		left += " · " + s.filters
	}
	if !s.hasMore && s.loaded > 0 {
		left += " · end"
	}

	return renderBar(left, hints, width)
}

func renderBottomBar(hints string, width int) string {
	return renderBar("", hints, width)
}

func renderBar(left, hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
