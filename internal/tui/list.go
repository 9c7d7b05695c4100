package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/newsdash/internal/api"
	"github.com/matheuskafuri/newsdash/internal/scroll"
)

// Each item is 2 lines + 1 blank line.
const itemHeight = 3

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "undated"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func renderListItem(a api.Article, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(a.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(a.Title, width-4))
	}

	source := a.Source
	if source == "" {
		source = "unknown"
	}
	meta := "  " + itemSourceStyle.Render(source) + " " + itemTimeStyle.Render("· "+relativeTime(a.Published))

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func visibleItems(height int) int {
	v := height / itemHeight
	if v < 1 {
		v = 1
	}
	return v
}

// listWindow returns the [start, end) range of items shown so that cursor
// stays on screen.
func listWindow(n, cursor, visible int) (int, int) {
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > n {
		end = n
		start = end - visible
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

// listPosition is the scroll position the load-more trigger samples. It
// uses the same window as renderList.
func listPosition(n, cursor, height int) scroll.Position {
	visible := visibleItems(height - 1)
	start, end := listWindow(n, cursor, visible)
	return scroll.Position{Offset: start, Viewport: end - start, Content: n}
}

// listFooter is the last line of the list: a spinner while a page is
// loading, an end marker once the feed is exhausted.
type listFooter struct {
	loading   bool
	exhausted bool
	spinner   string
}

func renderList(articles []api.Article, cursor int, height int, width int, footer listFooter) string {
	if len(articles) == 0 {
		if footer.loading {
			return lipglossCenter(footer.spinner+" Loading...", width, height)
		}
		return lipglossCenter("No articles found", width, height)
	}

	// Reserve a line for the footer.
	visible := visibleItems(height - 1)
	start, end := listWindow(len(articles), cursor, visible)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(articles[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	if end == len(articles) {
		switch {
		case footer.loading:
			b.WriteString("\n\n" + footerStyle.Render(footer.spinner+" Loading more..."))
		case footer.exhausted:
			b.WriteString("\n\n" + footerStyle.Render("No more content available"))
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
