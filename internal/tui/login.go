package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type loginForm struct {
	email    textinput.Model
	password textinput.Model
	onPass   bool
	busy     bool
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = ""
	email.CharLimit = 254

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.Prompt = ""
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	pw.CharLimit = 128

	f := loginForm{email: email, password: pw}
	f.focusEmail()
	return f
}

func (f *loginForm) focusEmail() {
	f.onPass = false
	f.email.Focus()
	f.password.Blur()
}

func (f *loginForm) focusPassword() {
	f.onPass = true
	f.password.Focus()
	f.email.Blur()
}

func (f *loginForm) reset() {
	f.password.SetValue("")
	f.busy = false
	f.focusEmail()
}

// ready reports whether both fields are filled in.
func (f *loginForm) ready() bool {
	return strings.TrimSpace(f.email.Value()) != "" && f.password.Value() != ""
}

func (f *loginForm) credentials() (string, string) {
	return strings.TrimSpace(f.email.Value()), f.password.Value()
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.onPass {
		f.password, cmd = f.password.Update(msg)
	} else {
		f.email, cmd = f.email.Update(msg)
	}
	return cmd
}

func (f *loginForm) view(width, height int, spinner string, err error) string {
	label := func(s string, active bool) string {
		if active {
			return formLabelActiveStyle.Render(s)
		}
		return formLabelStyle.Render(s)
	}

	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("newsdash")
	body := title + helpDimStyle.Render("  sign in") + "\n\n" +
		label("Email", !f.onPass) + f.email.View() + "\n" +
		label("Password", f.onPass) + f.password.View() + "\n\n"

	switch {
	case f.busy:
		body += spinner + " Signing in..."
	case err != nil:
		body += errorStyle.Render(err.Error())
	default:
		body += helpDimStyle.Render("tab switch field · enter sign in")
	}

	card := helpCardStyle.Width(min(60, max(30, width-4))).Render(body)
	return lipgloss.Place(width, height-1, lipgloss.Center, lipgloss.Center, card)
}
