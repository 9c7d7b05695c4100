package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/newsdash/internal/query"
)

// filterBar is one row of toggleable options. With nothing active the bar
// defers to the user's stored preferences.
type filterBar struct {
	title   string
	options []string
	active  map[string]bool
	cursor  int
}

func newFilterBar(title string, options []string) filterBar {
	return filterBar{
		title:   title,
		options: options,
		active:  make(map[string]bool),
	}
}

func (f *filterBar) toggle(option string) {
	if f.active[option] {
		delete(f.active, option)
	} else {
		f.active[option] = true
	}
}

func (f *filterBar) toggleCurrent() {
	if f.cursor < len(f.options) {
		f.toggle(f.options[f.cursor])
	}
}

func (f *filterBar) clear() {
	f.active = make(map[string]bool)
}

func (f *filterBar) move(delta int) {
	f.cursor += delta
	if f.cursor < 0 {
		f.cursor = 0
	}
	if f.cursor > len(f.options)-1 {
		f.cursor = max(0, len(f.options)-1)
	}
}

// selected returns active options in display order; nil when none are.
func (f *filterBar) selected() []string {
	if len(f.active) == 0 {
		return nil
	}
	var out []string
	for _, s := range f.options {
		if f.active[s] {
			out = append(out, s)
		}
	}
	return out
}

func (f *filterBar) render(width int, focused bool) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	parts = append(parts, filterTitleStyle.Render(f.title))
	if len(f.active) == 0 {
		parts = append(parts, tabActiveStyle.Render("Preferences"))
	} else {
		parts = append(parts, tabInactiveStyle.Render("Preferences"))
	}

	for i, s := range f.options {
		style := tabInactiveStyle
		if f.active[s] {
			style = tabActiveStyle
		}
		label := s
		if focused && i == f.cursor {
			label = "[" + s + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 1 {
			candidate += sep
		} else if i == 1 {
			candidate += " "
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}

// filterPanel is the search form's explicit category/source selection.
type filterPanel struct {
	categories filterBar
	sources    filterBar
	onSources  bool
}

func newFilterPanel(categories, sources []string) filterPanel {
	return filterPanel{
		categories: newFilterBar("Categories", categories),
		sources:    newFilterBar("Sources", sources),
	}
}

func (p *filterPanel) focused() *filterBar {
	if p.onSources {
		return &p.sources
	}
	return &p.categories
}

func (p *filterPanel) switchBar() {
	p.onSources = !p.onSources
}

func (p *filterPanel) clear() {
	p.categories.clear()
	p.sources.clear()
}

// override returns the explicit selection, or nil to fall back to the
// stored preferences. Selecting only categories leaves sources empty; the
// two filter sources are never merged.
func (p *filterPanel) override() *query.Filters {
	cats, srcs := p.categories.selected(), p.sources.selected()
	if cats == nil && srcs == nil {
		return nil
	}
	return &query.Filters{Categories: cats, Sources: srcs}
}

func (p *filterPanel) label() string {
	o := p.override()
	if o == nil {
		return "Preferences"
	}
	return strings.Join(append(append([]string{}, o.Categories...), o.Sources...), ", ")
}

func (p *filterPanel) render(width int, active bool) string {
	return p.categories.render(width, active && !p.onSources) + "\n" +
		p.sources.render(width, active && p.onSources)
}
