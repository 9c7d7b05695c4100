// Package session resolves the persisted credential into an active session
// and tracks login/logout transitions.
package session

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/matheuskafuri/newsdash/internal/logging"
)

// Session is an authenticated context. The token is opaque and is not
// validated here; a bad token shows up as a 401 on the first fetch.
type Session struct {
	Token string
}

type State int

const (
	StateUnresolved State = iota
	StateUnauthenticated
	StateActive
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateActive:
		return "active"
	default:
		return "unresolved"
	}
}

// Transition is the result of resolving the session. Changed is false when
// nothing moved since the last resolution, so callers can re-enter freely
// without repeating redirects or reloading dependents.
type Transition struct {
	State   State
	Session Session
	Changed bool
}

// Activated reports a new session that dependents should be given.
func (t Transition) Activated() bool {
	return t.Changed && t.State == StateActive
}

// Redirect reports a fresh move to the logged-out state.
func (t Transition) Redirect() bool {
	return t.Changed && t.State == StateUnauthenticated
}

// Bootstrapper owns the session state machine. It is safe for concurrent use.
type Bootstrapper struct {
	mu      sync.Mutex
	store   Store
	state   State
	session Session
	log     *zap.Logger
}

func NewBootstrapper(store Store, log *zap.Logger) *Bootstrapper {
	return &Bootstrapper{store: store, log: logging.OrNop(log).Named("session")}
}

// Bootstrap reads the persisted credential. An unreadable credential file
// is logged and treated as logged out; the error is returned alongside the
// transition for display.
func (b *Bootstrapper) Bootstrap() (Transition, error) {
	token, err := b.store.Load()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		if !errors.Is(err, ErrNoCredential) {
			b.log.Warn("credential unreadable, treating as logged out", zap.Error(err))
		} else {
			err = nil
		}
		return b.toUnauthenticated(), err
	}
	return b.toActive(token), nil
}

// Activate persists a freshly issued token and starts a session with it.
func (b *Bootstrapper) Activate(token string) (Transition, error) {
	if err := b.store.Save(token); err != nil {
		return Transition{}, fmt.Errorf("saving credential: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.toActive(token), nil
}

// Logout forgets the persisted token and ends the session.
func (b *Bootstrapper) Logout() (Transition, error) {
	err := b.store.Clear()
	if err != nil {
		err = fmt.Errorf("clearing credential: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.toUnauthenticated(), err
}

// Current returns the active session, if any.
func (b *Bootstrapper) Current() (Session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session, b.state == StateActive
}

func (b *Bootstrapper) toActive(token string) Transition {
	if b.state == StateActive && b.session.Token == token {
		return Transition{State: StateActive, Session: b.session}
	}
	b.state = StateActive
	b.session = Session{Token: token}
	b.log.Info("session activated")
	return Transition{State: StateActive, Session: b.session, Changed: true}
}

func (b *Bootstrapper) toUnauthenticated() Transition {
	if b.state == StateUnauthenticated {
		return Transition{State: StateUnauthenticated}
	}
	b.state = StateUnauthenticated
	b.session = Session{}
	b.log.Info("no session, login required")
	return Transition{State: StateUnauthenticated, Changed: true}
}
