package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/matheuskafuri/newsdash/internal/api"
	"github.com/matheuskafuri/newsdash/internal/scroll"
)

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"test", 0, ""},
		{"日本語テスト", 5, "日本..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateStr(tt.input, tt.n), "truncateStr(%q, %d)", tt.input, tt.n)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m"},
		{now.Add(-3 * time.Hour), "3h"},
		{now.Add(-2 * 24 * time.Hour), "2d"},
		{time.Time{}, "undated"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relativeTime(tt.t), "relativeTime(%v)", tt.t)
	}
}

func TestRelativeTimeOld(t *testing.T) {
	old := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Jun 15", relativeTime(old))
}

func TestListWindow(t *testing.T) {
	tests := []struct {
		n, cursor, visible int
		start, end         int
	}{
		{0, 0, 5, 0, 0},
		{3, 0, 5, 0, 3},
		{10, 0, 5, 0, 5},
		{10, 4, 5, 0, 5},
		{10, 5, 5, 1, 6},
		{10, 9, 5, 5, 10},
	}
	for _, tt := range tests {
		start, end := listWindow(tt.n, tt.cursor, tt.visible)
		assert.Equal(t, [2]int{tt.start, tt.end}, [2]int{start, end},
			"listWindow(%d, %d, %d)", tt.n, tt.cursor, tt.visible)
	}
}

func TestListPosition(t *testing.T) {
	// 31 rows of height leaves room for 10 items plus the footer.
	got := listPosition(25, 0, 31)
	assert.Equal(t, scroll.Position{Offset: 0, Viewport: 10, Content: 25}, got)
	assert.Equal(t, 15, got.Remaining())

	got = listPosition(25, 24, 31)
	assert.Zero(t, got.Remaining(), "expected bottom, got %+v", got)
}

func TestRenderListFooter(t *testing.T) {
	items := []api.Article{{Title: "one", Source: "News API"}, {Title: "two"}}

	out := renderList(items, 0, 30, 40, listFooter{exhausted: true})
	assert.Contains(t, out, "No more content available")

	out = renderList(items, 0, 30, 40, listFooter{loading: true, spinner: "*"})
	assert.Contains(t, out, "Loading more...")

	out = renderList(nil, 0, 30, 40, listFooter{})
	assert.Contains(t, out, "No articles found")
}
