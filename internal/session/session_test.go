package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memStore struct {
	token   string
	loadErr error
	loads   int
}

func (m *memStore) Load() (string, error) {
	m.loads++
	if m.loadErr != nil {
		return "", m.loadErr
	}
	if m.token == "" {
		return "", ErrNoCredential
	}
	return m.token, nil
}

func (m *memStore) Save(token string) error { m.token = token; return nil }
func (m *memStore) Clear() error            { m.token = ""; return nil }

func TestBootstrapWithoutCredentialRedirectsOnce(t *testing.T) {
	b := NewBootstrapper(&memStore{}, nil)

	tr, err := b.Bootstrap()
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, tr.State)
	assert.True(t, tr.Redirect())
	assert.False(t, tr.Activated())

	// Re-entry must not redirect again.
	tr, err = b.Bootstrap()
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, tr.State)
	assert.False(t, tr.Redirect())
	assert.False(t, tr.Changed)

	_, ok := b.Current()
	assert.False(t, ok)
}

func TestBootstrapWithCredentialActivatesOnce(t *testing.T) {
	b := NewBootstrapper(&memStore{token: "tok-1"}, nil)

	tr, err := b.Bootstrap()
	require.NoError(t, err)
	assert.True(t, tr.Activated())
	assert.Equal(t, Session{Token: "tok-1"}, tr.Session)

	tr, err = b.Bootstrap()
	require.NoError(t, err)
	assert.Equal(t, StateActive, tr.State)
	assert.False(t, tr.Activated(), "unchanged credential must not publish a second activation")
	assert.Equal(t, "tok-1", tr.Session.Token)

	s, ok := b.Current()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", s.Token)
}

func TestBootstrapNewTokenIsNewActivation(t *testing.T) {
	store := &memStore{token: "tok-1"}
	b := NewBootstrapper(store, nil)
	_, err := b.Bootstrap()
	require.NoError(t, err)

	store.token = "tok-2"
	tr, err := b.Bootstrap()
	require.NoError(t, err)
	assert.True(t, tr.Activated())
	assert.Equal(t, "tok-2", tr.Session.Token)
}

func TestActivatePersistsAndLogoutClears(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	b := NewBootstrapper(store, nil)

	tr, err := b.Bootstrap()
	require.NoError(t, err)
	require.True(t, tr.Redirect())

	tr, err = b.Activate("tok-9")
	require.NoError(t, err)
	assert.True(t, tr.Activated())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-9", persisted)

	tr, err = b.Logout()
	require.NoError(t, err)
	assert.True(t, tr.Redirect())

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoCredential)

	tr, err = b.Bootstrap()
	require.NoError(t, err)
	assert.False(t, tr.Changed, "bootstrap after logout is a no-op")
}

func TestBootstrapUnreadableCredentialIsLoggedOut(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := NewBootstrapper(&memStore{loadErr: errors.New("disk on fire")}, zap.New(core))

	tr, err := b.Bootstrap()
	assert.Error(t, err)
	assert.True(t, tr.Redirect())
	assert.Equal(t, 1, logs.FilterMessage("credential unreadable, treating as logged out").Len())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
	assert.Equal(t, "unresolved", StateUnresolved.String())
}
