package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/matheuskafuri/newsdash/internal/api"
	"github.com/matheuskafuri/newsdash/internal/browser"
	"github.com/matheuskafuri/newsdash/internal/cache"
	"github.com/matheuskafuri/newsdash/internal/config"
	"github.com/matheuskafuri/newsdash/internal/feed"
	"github.com/matheuskafuri/newsdash/internal/logging"
	"github.com/matheuskafuri/newsdash/internal/prefs"
	"github.com/matheuskafuri/newsdash/internal/query"
	"github.com/matheuskafuri/newsdash/internal/scroll"
	"github.com/matheuskafuri/newsdash/internal/session"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeLogin mode = iota
	modeFeed
	modeSearch
	modeFilter
	modeProfile
	modeHelp
)

type App struct {
	ctx      context.Context
	cfg      *config.Config
	client   *api.Client
	sessions *session.Bootstrapper
	credCh   <-chan struct{}
	db       *cache.Cache
	log      *zap.Logger
	builder  query.Builder

	// Per-session components, nil while logged out.
	pager   *feed.Pager
	store   *prefs.Store
	trigger *scroll.Trigger

	inputs    query.Inputs
	submitted query.Params
	state     feed.State

	mode          mode
	focus         focusPane
	cursor        int
	previewScroll int

	width  int
	height int

	// Sub-components
	login   loginForm
	search  searchForm
	filters filterPanel
	profile profileView
	spinner spinner.Model

	loading     bool
	searches    int // first-page fetches not yet answered
	loadingMore bool
	notice      string
	err         error
	currentDate string
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Cfg      *config.Config
	Client   *api.Client
	Sessions *session.Bootstrapper
	// CredentialChanges, when set, re-resolves the session on every signal.
	CredentialChanges <-chan struct{}
	// DB is optional; fetched pages are recorded in it when set.
	DB     *cache.Cache
	Logger *zap.Logger
}

func NewApp(ctx context.Context, opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return &App{
		ctx:         ctx,
		cfg:         opts.Cfg,
		client:      opts.Client,
		sessions:    opts.Sessions,
		credCh:      opts.CredentialChanges,
		db:          opts.DB,
		log:         logging.OrNop(opts.Logger).Named("tui"),
		builder:     query.NewBuilder(opts.Cfg.Limit()),
		mode:        modeLogin,
		login:       newLoginForm(),
		search:      newSearchForm(),
		filters:     newFilterPanel(opts.Cfg.Categories, opts.Cfg.Sources),
		profile:     newProfileView(opts.Cfg.Categories, opts.Cfg.Sources),
		spinner:     sp,
		currentDate: time.Now().Format("Jan 2"),
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.bootstrapCmd(), textinput.Blink}
	if a.credCh != nil {
		cmds = append(cmds, waitCredentialCmd(a.credCh))
	}
	return tea.Batch(cmds...)
}

func (a *App) busy() bool {
	return a.loading || a.loadingMore || a.login.busy || a.profile.saving
}

func (a *App) bootstrapCmd() tea.Cmd {
	sessions := a.sessions
	return func() tea.Msg {
		tr, err := sessions.Bootstrap()
		return sessionResolvedMsg{tr: tr, err: err}
	}
}

func waitCredentialCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return credChangedMsg{}
	}
}

func (a *App) loginCmd() tea.Cmd {
	ctx, client, sessions := a.ctx, a.client, a.sessions
	email, password := a.login.credentials()
	return func() tea.Msg {
		token, err := client.Login(ctx, email, password)
		if err != nil {
			return loginFailedMsg{err: err}
		}
		tr, err := sessions.Activate(token)
		if err != nil {
			return loginFailedMsg{err: err}
		}
		return sessionResolvedMsg{tr: tr}
	}
}

func (a *App) logoutCmd() tea.Cmd {
	sessions := a.sessions
	return func() tea.Msg {
		tr, err := sessions.Logout()
		return sessionResolvedMsg{tr: tr, err: err}
	}
}

func (a *App) loadPrefsCmd() tea.Cmd {
	ctx, store := a.ctx, a.store
	return func() tea.Msg {
		p, err := store.Load(ctx)
		return prefsLoadedMsg{store: store, prefs: p, err: err}
	}
}

func (a *App) savePrefsCmd(p prefs.Preferences) tea.Cmd {
	ctx, store := a.ctx, a.store
	return func() tea.Msg {
		return prefsSavedMsg{store: store, err: store.Save(ctx, p)}
	}
}

// submit starts a new search from the current inputs and filter source.
// It captures the query in the closure so later edits cannot leak into the
// request.
func (a *App) submit() tea.Cmd {
	if a.pager == nil {
		return nil
	}
	a.submitted = a.builder.Build(a.inputs, a.filters.override(), a.store.Current().Filters())
	a.searches++
	a.loading = true

	ctx, pager, q := a.ctx, a.pager, a.submitted
	fetch := func() tea.Msg {
		out, err := pager.InitialFetch(ctx, q)
		return fetchDoneMsg{pager: pager, initial: true, outcome: out, err: err}
	}
	return tea.Batch(fetch, a.spinner.Tick)
}

// observeScroll samples the list position and asks for the next page when
// the end of the list is on screen. Nothing is requested while a search is
// pending: the list on screen still belongs to the previous one.
func (a *App) observeScroll() tea.Cmd {
	if a.pager == nil || a.mode == modeLogin || a.loading {
		return nil
	}
	pos := listPosition(len(a.state.Items), a.cursor, a.listHeight())
	if !a.trigger.AtBottom(pos) || !a.pager.CanLoadMore() {
		return nil
	}
	a.loadingMore = true

	ctx, trigger, pager, q := a.ctx, a.trigger, a.pager, a.submitted
	fetch := func() tea.Msg {
		fired, out, err := trigger.Observe(ctx, pos, q)
		if !fired {
			return nil
		}
		return fetchDoneMsg{pager: pager, outcome: out, err: err}
	}
	return tea.Batch(fetch, a.spinner.Tick)
}

func (a *App) persistCmd(articles []api.Article) tea.Cmd {
	if a.db == nil || len(articles) == 0 {
		return nil
	}
	db, log, label := a.db, a.log, a.submitted.Describe()
	return func() tea.Msg {
		now := time.Now()
		rows := feed.ToCache(articles, now)
		for i := range rows {
			rows[i].Query = label
		}
		if err := db.UpsertArticles(rows); err != nil {
			log.Warn("recording history failed", zap.Error(err))
			return nil
		}
		if err := db.SetLastSync(now); err != nil {
			log.Warn("recording sync time failed", zap.Error(err))
		}
		return nil
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) startSession(s session.Session) tea.Cmd {
	a.pager = feed.New(a.client, s, a.log)
	a.store = prefs.New(a.client, s, a.log)
	a.trigger = scroll.NewTrigger(a.pager)
	a.state = a.pager.Snapshot()
	a.cursor = 0
	a.previewScroll = 0
	a.mode = modeFeed
	a.login.reset()
	a.loading = true
	return tea.Batch(a.loadPrefsCmd(), a.spinner.Tick)
}

func (a *App) endSession() {
	a.pager = nil
	a.store = nil
	a.trigger = nil
	a.state = feed.State{}
	a.submitted = query.Params{}
	a.inputs = query.Inputs{}
	a.search.clear()
	a.filters.clear()
	a.cursor = 0
	a.loading = false
	a.searches = 0
	a.loadingMore = false
	a.mode = modeLogin
	a.login.reset()
}

// handleUnauthorized logs out on a rejected credential when configured to.
func (a *App) handleUnauthorized(err error) tea.Cmd {
	if !api.IsUnauthorized(err) || !a.cfg.LogoutOnUnauthorized || a.pager == nil {
		return nil
	}
	a.log.Warn("credential rejected, logging out", zap.Error(err))
	a.notice = "Session expired. Please sign in again."
	return a.logoutCmd()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, a.observeScroll()

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		if a.mode != modeLogin {
			a.notice = ""
		}
		return a.handleKey(msg)

	case sessionResolvedMsg:
		if msg.err != nil {
			a.err = msg.err
		}
		switch {
		case msg.tr.Activated():
			return a, a.startSession(msg.tr.Session)
		case msg.tr.Redirect():
			a.endSession()
			return a, textinput.Blink
		}
		return a, nil

	case credChangedMsg:
		return a, tea.Batch(a.bootstrapCmd(), waitCredentialCmd(a.credCh))

	case loginFailedMsg:
		a.login.busy = false
		a.err = msg.err
		if api.IsUnauthorized(msg.err) {
			a.err = errors.New("invalid email or password")
		}
		return a, nil

	case prefsLoadedMsg:
		if msg.store != a.store {
			return a, nil
		}
		if msg.err != nil {
			if cmd := a.handleUnauthorized(msg.err); cmd != nil {
				return a, cmd
			}
			a.notice = "Could not load preferences; showing all news."
		}
		return a, a.submit()

	case fetchDoneMsg:
		if msg.pager != a.pager {
			return a, nil
		}
		prev := len(a.state.Items)
		a.state = a.pager.Snapshot()
		if msg.initial {
			a.searches = max(0, a.searches-1)
			a.loading = a.searches > 0
		} else {
			a.loadingMore = false
		}
		if msg.err != nil {
			if cmd := a.handleUnauthorized(msg.err); cmd != nil {
				return a, cmd
			}
			a.err = msg.err
			return a, nil
		}

		var persist tea.Cmd
		switch msg.outcome {
		case feed.Replaced:
			a.cursor = 0
			a.previewScroll = 0
			persist = a.persistCmd(a.state.Items)
		case feed.Appended:
			if prev < len(a.state.Items) {
				persist = a.persistCmd(a.state.Items[prev:])
			}
		}
		if a.cursor >= len(a.state.Items) {
			a.cursor = max(0, len(a.state.Items)-1)
		}
		return a, tea.Batch(persist, a.observeScroll())

	case prefsSavedMsg:
		if msg.store != a.store {
			return a, nil
		}
		a.profile.saving = false
		if msg.err != nil {
			if cmd := a.handleUnauthorized(msg.err); cmd != nil {
				return a, cmd
			}
			a.profile.err = msg.err
			return a, nil
		}
		a.profile.err = nil
		a.profile.notice = "Preferences saved"
		if a.filters.override() == nil {
			return a, a.submit()
		}
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.busy() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	if a.mode == modeLogin {
		return a, a.login.update(msg)
	}
	if a.mode == modeSearch {
		return a, a.search.update(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	// Mode-specific handling
	switch a.mode {
	case modeLogin:
		return a.handleLoginKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeProfile:
		return a.handleProfileKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeFeed
		}
		return a, nil
	}

	// Feed mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList {
			if a.cursor < len(a.state.Items)-1 {
				a.cursor++
				a.previewScroll = 0
			}
			return a, a.observeScroll()
		}
		a.previewScroll++
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "g", "home":
		a.cursor = 0
		a.previewScroll = 0
		return a, nil
	case "G", "end":
		a.cursor = max(0, len(a.state.Items)-1)
		a.previewScroll = 0
		return a, a.observeScroll()
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if a.cursor < len(a.state.Items) {
			return a, openBrowserCmd(a.state.Items[a.cursor].URL)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.search.load(a.inputs)
		return a, a.search.focusField(fieldText)
	case "f":
		a.mode = modeFilter
		return a, nil
	case "r":
		return a, a.submit()
	case "p":
		if a.store != nil {
			a.profile.open(a.store.Current())
			a.mode = modeProfile
		}
		return a, nil
	case "L":
		return a, a.logoutCmd()
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.login.busy {
		return a, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		if a.login.onPass {
			a.login.focusEmail()
		} else {
			a.login.focusPassword()
		}
		return a, textinput.Blink
	case "enter":
		if !a.login.onPass {
			a.login.focusPassword()
			return a, textinput.Blink
		}
		if !a.login.ready() {
			a.err = errors.New("email and password are required")
			return a, nil
		}
		a.login.busy = true
		a.notice = ""
		return a, tea.Batch(a.loginCmd(), a.spinner.Tick)
	}
	return a, a.login.update(msg)
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeFeed
		a.search.blur()
		return a, nil
	case "tab", "down":
		return a, a.search.next()
	case "shift+tab", "up":
		return a, a.search.prev()
	case "enter":
		in, err := a.search.parse()
		if err != nil {
			a.err = err
			return a, nil
		}
		a.inputs = in
		a.mode = modeFeed
		a.search.blur()
		return a, a.submit()
	}
	return a, a.search.update(msg)
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	bar := a.filters.focused()
	switch msg.String() {
	case "esc", "f":
		a.mode = modeFeed
		return a, nil
	case "left", "h":
		bar.move(-1)
		return a, nil
	case "right", "l":
		bar.move(1)
		return a, nil
	case "tab", "up", "down", "k", "j":
		a.filters.switchBar()
		return a, nil
	case " ", "enter":
		bar.toggleCurrent()
		return a, a.submit()
	case "c":
		a.filters.clear()
		return a, a.submit()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		if idx < len(bar.options) {
			bar.toggle(bar.options[idx])
			return a, a.submit()
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		a.profile.move(1)
	case "k", "up":
		a.profile.move(-1)
	case " ", "enter":
		a.profile.toggle()
	case "s":
		if !a.profile.saving && a.store != nil {
			a.profile.saving = true
			a.profile.err = nil
			a.profile.notice = ""
			return a, tea.Batch(a.savePrefsCmd(a.profile.draft), a.spinner.Tick)
		}
	case "esc", "p":
		a.mode = modeFeed
	case "L":
		return a, a.logoutCmd()
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

const (
	headerHeight = 1
	filterHeight = 2
	statusHeight = 1
	borderHeight = 2
)

func (a *App) listHeight() int {
	h := a.height - headerHeight - filterHeight - statusHeight - borderHeight
	if h < 3 {
		h = 3
	}
	return h
}

func (a *App) header() string {
	headerLeft := headerStyle.Render("newsdash")
	headerRight := headerDateStyle.Render(a.currentDate)
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	return headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  newsdash")
	}

	switch a.mode {
	case modeLogin:
		view := a.login.view(a.width, a.height, a.spinner.View(), a.err)
		if a.notice != "" {
			view = noticeStyle.Render(" "+a.notice) + "\n" + view
		}
		return a.withBottomBar(view, "tab field  enter sign in  ctrl+c quit")
	case modeHelp:
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	case modeProfile:
		var saved []api.Article
		if a.store != nil {
			saved = a.store.Saved()
		}
		body := a.header() + "\n" + a.profile.render(a.width, a.height-2, saved, a.spinner.View())
		return a.withBottomBar(body, "j/k move  space toggle  s save  esc back  L logout")
	}

	contentHeight := a.listHeight()
	listWidth := int(float64(a.width) * 0.35)
	previewWidth := a.width - listWidth - 1 // gap

	var filter string
	switch a.mode {
	case modeSearch:
		filter = a.search.view() + "\n"
	default:
		filter = a.filters.render(a.width, a.mode == modeFilter)
	}

	// List pane
	innerListW := listWidth - 4 // border + padding
	listContent := renderList(a.state.Items, a.cursor, contentHeight, innerListW, listFooter{
		loading:   a.loading || a.loadingMore,
		exhausted: !a.state.HasMore,
		spinner:   a.spinner.View(),
	})

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	// Preview pane
	var selected *api.Article
	if a.cursor < len(a.state.Items) {
		selected = &a.state.Items[a.cursor]
	}
	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(selected, innerPreviewW, contentHeight, a.previewScroll)

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	hints := "/ search  f filter  p profile  ? help  q quit"
	switch a.mode {
	case modeSearch:
		hints = "tab next field  enter search  esc cancel"
	case modeFilter:
		hints = "←/→ move  tab switch row  space toggle  c clear  esc done"
	}
	status := renderStatusBar(statusInfo{
		loaded:  len(a.state.Items),
		total:   a.state.Total,
		query:   a.submitted.Describe(),
		filters: a.filters.label(),
		hasMore: a.state.HasMore,
	}, hints, a.width)

	if a.busy() {
		status = a.spinner.View() + " " + status
	}
	switch {
	case a.err != nil:
		status = errorStyle.Render(a.err.Error())
	case a.notice != "":
		status = noticeStyle.Render(a.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.header(), filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("newsdash")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Navigate article list\n" +
		"  g/G           Jump to top / bottom\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open article in browser\n" +
		"  r             Reload the current search\n" +
		"  /             Search text and date range\n" +
		"  f             Filter by category and source\n" +
		"  p             Edit preferences\n" +
		"  L             Log out\n\n" +
		dim.Render("Filter Mode") + "\n" +
		"  ←/→, h/l     Move between options\n" +
		"  tab           Switch between categories and sources\n" +
		"  space/enter   Toggle option\n" +
		"  c             Clear, use preferences\n" +
		"  esc, f        Exit filter mode\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(ctx context.Context, opts RunOpts) error {
	app := NewApp(ctx, opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
