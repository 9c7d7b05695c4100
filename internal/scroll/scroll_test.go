package scroll

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuskafuri/newsdash/internal/api"
	"github.com/matheuskafuri/newsdash/internal/feed"
	"github.com/matheuskafuri/newsdash/internal/query"
	"github.com/matheuskafuri/newsdash/internal/session"
)

type countingLoader struct {
	calls []query.Params
}

func (c *countingLoader) TriggerFromScroll(_ context.Context, q query.Params) (feed.Outcome, error) {
	c.calls = append(c.calls, q)
	return feed.Appended, nil
}

func TestPositionRemaining(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want int
	}{
		{"top of long list", Position{Offset: 0, Viewport: 10, Content: 30}, 20},
		{"at bottom", Position{Offset: 20, Viewport: 10, Content: 30}, 0},
		{"short list", Position{Offset: 0, Viewport: 10, Content: 4}, 0},
		{"empty", Position{Viewport: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pos.Remaining())
		})
	}
}

func TestObserveFiresOnlyAtBottom(t *testing.T) {
	l := &countingLoader{}
	tr := NewTrigger(l)
	q := query.NewBuilder(10).Build(query.Inputs{Text: "go"}, nil, query.Filters{})

	fired, _, err := tr.Observe(context.Background(), Position{Offset: 5, Viewport: 10, Content: 30}, q)
	require.NoError(t, err)
	assert.False(t, fired)
	assert.Empty(t, l.calls)

	fired, out, err := tr.Observe(context.Background(), Position{Offset: 20, Viewport: 10, Content: 30}, q)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, feed.Appended, out)
	require.Len(t, l.calls, 1)
	assert.Equal(t, "go", l.calls[0].Text)
}

func TestObserveThreshold(t *testing.T) {
	l := &countingLoader{}
	tr := NewTrigger(l)
	tr.Threshold = 3

	fired, _, err := tr.Observe(context.Background(), Position{Offset: 17, Viewport: 10, Content: 30}, query.Params{})
	require.NoError(t, err)
	assert.True(t, fired)
}

// Repeated bottom samples are not throttled here; the pager's guards stop
// the extra requests once the feed is exhausted.
func TestObserveDrivesPagerToExhaustion(t *testing.T) {
	calls := 0
	srv := fetcherFunc(func(_ context.Context, _ string, p query.Params) (api.NewsPage, error) {
		calls++
		var arts []api.Article
		for i := p.Offset; i < 25 && i < p.Offset+p.Limit; i++ {
			arts = append(arts, api.Article{Title: "x"})
		}
		return api.NewsPage{Articles: arts}, nil
	})
	pager := feed.New(srv, session.Session{Token: "t"}, nil)
	q := query.NewBuilder(10).Build(query.Inputs{}, nil, query.Filters{})
	_, err := pager.InitialFetch(context.Background(), q)
	require.NoError(t, err)

	tr := NewTrigger(pager)
	for i := 0; i < 10; i++ {
		n := len(pager.Snapshot().Items)
		_, _, err := tr.Observe(context.Background(), Position{Offset: n - 5, Viewport: 5, Content: n}, q)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, calls)
	assert.Len(t, pager.Snapshot().Items, 25)
	assert.False(t, pager.Snapshot().HasMore)
}

type fetcherFunc func(context.Context, string, query.Params) (api.NewsPage, error)

func (f fetcherFunc) News(ctx context.Context, token string, p query.Params) (api.NewsPage, error) {
	return f(ctx, token, p)
}
