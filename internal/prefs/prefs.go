// Package prefs reads and replaces the user's preferred categories and
// sources on the server.
package prefs

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/matheuskafuri/newsdash/internal/api"
	"github.com/matheuskafuri/newsdash/internal/logging"
	"github.com/matheuskafuri/newsdash/internal/query"
	"github.com/matheuskafuri/newsdash/internal/session"
)

// Preferences are the stored filter set. The zero value means unfiltered.
type Preferences struct {
	Categories []string
	Sources    []string
}

func (p Preferences) Filters() query.Filters {
	return query.Filters{
		Categories: slices.Clone(p.Categories),
		Sources:    slices.Clone(p.Sources),
	}
}

func (p Preferences) Empty() bool {
	return len(p.Categories) == 0 && len(p.Sources) == 0
}

func (p Preferences) HasCategory(c string) bool { return slices.Contains(p.Categories, c) }
func (p Preferences) HasSource(s string) bool   { return slices.Contains(p.Sources, s) }

// ToggleCategory returns a copy of p with c added or removed.
func (p Preferences) ToggleCategory(c string) Preferences {
	p.Categories = toggle(p.Categories, c)
	p.Sources = slices.Clone(p.Sources)
	return p
}

// ToggleSource returns a copy of p with s added or removed.
func (p Preferences) ToggleSource(s string) Preferences {
	p.Sources = toggle(p.Sources, s)
	p.Categories = slices.Clone(p.Categories)
	return p
}

func toggle(set []string, v string) []string {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}

// Normalize trims values, drops empties and duplicates, and keeps the
// first-seen order.
func Normalize(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (p Preferences) normalized() Preferences {
	return Preferences{Categories: Normalize(p.Categories), Sources: Normalize(p.Sources)}
}

// Client is the subset of the API client the store needs.
type Client interface {
	Profile(ctx context.Context, token string) (api.Profile, error)
	UpdateProfile(ctx context.Context, token string, u api.ProfileUpdate) error
}

// Store holds the last committed preferences of one session.
type Store struct {
	client  Client
	session session.Session
	log     *zap.Logger

	mu      sync.Mutex
	current Preferences
	saved   []api.Article
}

func New(c Client, s session.Session, log *zap.Logger) *Store {
	return &Store{client: c, session: s, log: logging.OrNop(log).Named("prefs")}
}

// Load fetches the stored preferences. A failure is logged and reported,
// and empty preferences are returned so the caller can carry on with an
// unfiltered feed.
func (s *Store) Load(ctx context.Context) (Preferences, error) {
	profile, err := s.client.Profile(ctx, s.session.Token)
	if err != nil {
		s.log.Warn("loading preferences failed, continuing unfiltered", zap.Error(err))
		return Preferences{}, err
	}

	p := Preferences{
		Categories: profile.PreferredCategories,
		Sources:    profile.PreferredSources,
	}.normalized()

	s.mu.Lock()
	s.current = p
	s.saved = slices.Clone(profile.Articles)
	s.mu.Unlock()

	s.log.Debug("preferences loaded",
		zap.Strings("categories", p.Categories),
		zap.Strings("sources", p.Sources))
	return p.copy(), nil
}

// Save replaces the stored preferences with p. Current only moves once the
// server has accepted the change.
func (s *Store) Save(ctx context.Context, p Preferences) error {
	p = p.normalized()
	err := s.client.UpdateProfile(ctx, s.session.Token, api.ProfileUpdate{
		PreferredCategories: p.Categories,
		PreferredSources:    p.Sources,
	})
	if err != nil {
		s.log.Warn("saving preferences failed", zap.Error(err))
		return fmt.Errorf("saving preferences: %w", err)
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	s.log.Info("preferences saved",
		zap.Int("categories", len(p.Categories)),
		zap.Int("sources", len(p.Sources)))
	return nil
}

func (s *Store) Current() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.copy()
}

// Saved returns the saved articles that came with the last profile load.
func (s *Store) Saved() []api.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saved)
}

func (p Preferences) copy() Preferences {
	return Preferences{Categories: slices.Clone(p.Categories), Sources: slices.Clone(p.Sources)}
}
