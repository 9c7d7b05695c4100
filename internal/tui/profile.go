package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/newsdash/internal/api"
	"github.com/matheuskafuri/newsdash/internal/prefs"
)

type profileRow struct {
	category bool
	value    string
}

// profileView edits a draft of the stored preferences. The draft is only
// committed by an explicit save.
type profileView struct {
	rows   []profileRow
	draft  prefs.Preferences
	cursor int
	saving bool
	notice string
	err    error
}

func newProfileView(categories, sources []string) profileView {
	var rows []profileRow
	for _, c := range categories {
		rows = append(rows, profileRow{category: true, value: c})
	}
	for _, s := range sources {
		rows = append(rows, profileRow{value: s})
	}
	return profileView{rows: rows}
}

// open starts editing from the committed preferences.
func (v *profileView) open(current prefs.Preferences) {
	v.draft = current
	v.notice = ""
	v.err = nil
	v.saving = false
}

func (v *profileView) move(delta int) {
	v.cursor += delta
	if v.cursor < 0 {
		v.cursor = 0
	}
	if v.cursor > len(v.rows)-1 {
		v.cursor = max(0, len(v.rows)-1)
	}
}

func (v *profileView) toggle() {
	if v.cursor >= len(v.rows) {
		return
	}
	r := v.rows[v.cursor]
	if r.category {
		v.draft = v.draft.ToggleCategory(r.value)
	} else {
		v.draft = v.draft.ToggleSource(r.value)
	}
	v.notice = ""
}

func (v *profileView) checked(r profileRow) bool {
	if r.category {
		return v.draft.HasCategory(r.value)
	}
	return v.draft.HasSource(r.value)
}

func (v *profileView) render(width, height int, saved []api.Article, spinner string) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("Preferences"))
	b.WriteString("\n")

	section := ""
	for i, r := range v.rows {
		name := "Sources"
		if r.category {
			name = "Categories"
		}
		if name != section {
			section = name
			b.WriteString(sectionTitleStyle.Render(name) + "\n")
		}

		box := checkboxOffStyle.Render("[ ]")
		if v.checked(r) {
			box = checkboxOnStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", box, r.value)
		if i == v.cursor {
			line = itemSelectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	switch {
	case v.saving:
		b.WriteString(spinner + " Saving...")
	case v.err != nil:
		b.WriteString(errorStyle.Render("Save failed: " + v.err.Error()))
	case v.notice != "":
		b.WriteString(noticeStyle.Render(v.notice))
	}
	b.WriteString("\n")

	b.WriteString(sectionTitleStyle.Render("Saved articles") + "\n")
	if len(saved) == 0 {
		b.WriteString(helpDimStyle.Render("  none") + "\n")
	}
	for _, a := range saved {
		b.WriteString("  " + itemTitleStyle.Render(truncateStr(a.Title, width-6)) + "\n")
		b.WriteString("    " + itemSourceStyle.Render(a.Source) + " " + itemTimeStyle.Render(truncateStr(a.URL, width-8-lipgloss.Width(a.Source))) + "\n")
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(strings.Join(lines, "\n"))
}
