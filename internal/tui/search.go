package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/newsdash/internal/query"
)

const (
	fieldText = iota
	fieldStart
	fieldEnd
	fieldCount
)

// searchForm holds the free-text and date-range inputs of a search.
type searchForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
}

func newSearchForm() searchForm {
	text := textinput.New()
	text.Placeholder = "Search articles..."
	text.Prompt = searchPromptStyle.Render("/ ")
	text.CharLimit = 100

	start := textinput.New()
	start.Placeholder = "YYYY-MM-DD"
	start.Prompt = "from "
	start.CharLimit = len(query.DateLayout)

	end := textinput.New()
	end.Placeholder = "YYYY-MM-DD"
	end.Prompt = "to "
	end.CharLimit = len(query.DateLayout)

	return searchForm{inputs: [fieldCount]textinput.Model{text, start, end}}
}

func (f *searchForm) focusField(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	f.inputs[f.focus].Focus()
	return textinput.Blink
}

func (f *searchForm) next() tea.Cmd { return f.focusField(f.focus + 1) }
func (f *searchForm) prev() tea.Cmd { return f.focusField(f.focus - 1) }

func (f *searchForm) blur() {
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
}

// load shows in on the form.
func (f *searchForm) load(in query.Inputs) {
	f.inputs[fieldText].SetValue(in.Text)
	f.inputs[fieldStart].SetValue(query.FormatDate(in.Start))
	f.inputs[fieldEnd].SetValue(query.FormatDate(in.End))
}

func (f *searchForm) clear() {
	for j := range f.inputs {
		f.inputs[j].SetValue("")
	}
}

// parse validates the form.
func (f *searchForm) parse() (query.Inputs, error) {
	start, err := query.ParseDate(f.inputs[fieldStart].Value())
	if err != nil {
		return query.Inputs{}, fmt.Errorf("from: %w", err)
	}
	end, err := query.ParseDate(f.inputs[fieldEnd].Value())
	if err != nil {
		return query.Inputs{}, fmt.Errorf("to: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return query.Inputs{}, query.ErrInvertedRange
	}
	return query.Inputs{Text: f.inputs[fieldText].Value(), Start: start, End: end}, nil
}

func (f *searchForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *searchForm) view() string {
	return f.inputs[fieldText].View() + "   " +
		f.inputs[fieldStart].View() + "   " +
		f.inputs[fieldEnd].View()
}
