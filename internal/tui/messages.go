package tui

import (
	"github.com/matheuskafuri/newsdash/internal/feed"
	"github.com/matheuskafuri/newsdash/internal/prefs"
	"github.com/matheuskafuri/newsdash/internal/session"
)

type sessionResolvedMsg struct {
	tr  session.Transition
	err error
}

type credChangedMsg struct{}

type loginFailedMsg struct {
	err error
}

// Messages below carry the component that produced them so results from a
// session that has since ended can be dropped.

type prefsLoadedMsg struct {
	store *prefs.Store
	prefs prefs.Preferences
	err   error
}

type prefsSavedMsg struct {
	store *prefs.Store
	err   error
}

type fetchDoneMsg struct {
	pager   *feed.Pager
	initial bool
	outcome feed.Outcome
	err     error
}

type errMsg struct {
	err error
}
