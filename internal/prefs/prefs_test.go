package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matheuskafuri/newsdash/internal/api"
	"github.com/matheuskafuri/newsdash/internal/query"
	"github.com/matheuskafuri/newsdash/internal/session"
)

type fakeClient struct {
	profile    api.Profile
	profileErr error
	updateErr  error
	updates    []api.ProfileUpdate
	tokens     []string
}

func (f *fakeClient) Profile(_ context.Context, token string) (api.Profile, error) {
	f.tokens = append(f.tokens, token)
	return f.profile, f.profileErr
}

func (f *fakeClient) UpdateProfile(_ context.Context, token string, u api.ProfileUpdate) error {
	f.tokens = append(f.tokens, token)
	f.updates = append(f.updates, u)
	return f.updateErr
}

var sess = session.Session{Token: "tok"}

func TestLoad(t *testing.T) {
	c := &fakeClient{profile: api.Profile{
		PreferredCategories: []string{"science", " technology ", "science", ""},
		PreferredSources:    []string{"The Guardian"},
		Articles:            []api.Article{{Title: "saved"}},
	}}
	s := New(c, sess, nil)

	p, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"science", "technology"}, p.Categories)
	assert.Equal(t, []string{"The Guardian"}, p.Sources)
	assert.Equal(t, p, s.Current())
	assert.Len(t, s.Saved(), 1)
	assert.Equal(t, []string{"tok"}, c.tokens)
}

func TestLoadFailureDegradesToUnfiltered(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c := &fakeClient{profileErr: errors.New("network down")}
	s := New(c, sess, zap.New(core))

	p, err := s.Load(context.Background())
	assert.Error(t, err)
	assert.True(t, p.Empty())
	assert.Equal(t, 1, logs.FilterMessage("loading preferences failed, continuing unfiltered").Len())

	// The feed still builds an unfiltered query.
	q := query.NewBuilder(10).Build(query.Inputs{}, nil, p.Filters())
	assert.Empty(t, q.Categories)
	assert.Empty(t, q.Sources)
	assert.Equal(t, 0, q.Offset)
}

func TestSaveReplaces(t *testing.T) {
	c := &fakeClient{profile: api.Profile{
		PreferredCategories: []string{"sports", "health"},
		PreferredSources:    []string{"News API"},
	}}
	s := New(c, sess, nil)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	next := Preferences{Categories: []string{"science"}}
	require.NoError(t, s.Save(context.Background(), next))

	require.Len(t, c.updates, 1)
	assert.Equal(t, []string{"science"}, c.updates[0].PreferredCategories)
	assert.Empty(t, c.updates[0].PreferredSources, "replace, not merge")
	assert.Equal(t, []string{"science"}, s.Current().Categories)
	assert.Empty(t, s.Current().Sources)

	// Saving the same value again sends the same body.
	require.NoError(t, s.Save(context.Background(), next))
	assert.Equal(t, c.updates[0], c.updates[1])
}

func TestSaveFailureKeepsCurrent(t *testing.T) {
	c := &fakeClient{profile: api.Profile{PreferredCategories: []string{"sports"}}}
	s := New(c, sess, nil)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	c.updateErr = errors.New("500")
	err = s.Save(context.Background(), Preferences{Categories: []string{"science"}})
	assert.Error(t, err)
	assert.Equal(t, []string{"sports"}, s.Current().Categories)
}

func TestToggle(t *testing.T) {
	p := Preferences{Categories: []string{"a"}}

	q := p.ToggleCategory("b")
	assert.Equal(t, []string{"a", "b"}, q.Categories)
	assert.Equal(t, []string{"a"}, p.Categories, "toggle must not alias the receiver")

	q = q.ToggleCategory("a")
	assert.Equal(t, []string{"b"}, q.Categories)
	assert.True(t, q.HasCategory("b"))

	q = q.ToggleSource("The Guardian")
	assert.True(t, q.HasSource("The Guardian"))
	q = q.ToggleSource("The Guardian")
	assert.False(t, q.HasSource("The Guardian"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"x", "y"}, Normalize([]string{" x", "", "y", "x "}))
	assert.Equal(t, []string{}, Normalize(nil))
}

func TestCurrentIsACopy(t *testing.T) {
	c := &fakeClient{profile: api.Profile{PreferredCategories: []string{"sports"}}}
	s := New(c, sess, nil)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	cur := s.Current()
	cur.Categories[0] = "mutated"
	assert.Equal(t, []string{"sports"}, s.Current().Categories)
}
