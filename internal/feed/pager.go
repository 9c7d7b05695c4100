// Package feed is the incremental feed loader: it owns the article list for
// one session and decides when another page may be fetched.
package feed

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/matheuskafuri/newsdash/internal/api"
	"github.com/matheuskafuri/newsdash/internal/logging"
	"github.com/matheuskafuri/newsdash/internal/query"
	"github.com/matheuskafuri/newsdash/internal/session"
)

// Fetcher retrieves one page of articles. *api.Client satisfies it.
type Fetcher interface {
	News(ctx context.Context, token string, p query.Params) (api.NewsPage, error)
}

// Outcome says what a fetch call did to the feed.
type Outcome int

const (
	// Skipped means no request was issued.
	Skipped Outcome = iota
	// Replaced means a first page replaced the feed.
	Replaced
	// Appended means a follow-up page was added to the end of the feed.
	Appended
	// Discarded means a response arrived after a newer search had already
	// landed and was dropped.
	Discarded
	// Failed means the request errored; the feed is unchanged.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Replaced:
		return "replaced"
	case Appended:
		return "appended"
	case Discarded:
		return "discarded"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// State is a point-in-time copy of the feed.
type State struct {
	Items   []api.Article
	Offset  int
	Total   int
	HasMore bool
	// Fetching is true while any request is outstanding.
	Fetching bool
	// Generation identifies the search the items descend from; 0 until the
	// first page lands.
	Generation uint64
	// Query is the search the items were fetched under.
	Query query.Params
}

// Pager accumulates pages for a single session. It is safe for concurrent
// use; at most one follow-up page is ever in flight.
type Pager struct {
	fetcher Fetcher
	session session.Session
	log     *zap.Logger

	mu       sync.Mutex
	items    []api.Article
	offset   int
	total    int
	hasMore  bool
	inFlight int
	issued   uint64 // newest generation handed out by InitialFetch
	applied  uint64 // generation of the items currently held
	query    query.Params
}

func New(f Fetcher, s session.Session, log *zap.Logger) *Pager {
	return &Pager{
		fetcher: f,
		session: s,
		log:     logging.OrNop(log).Named("feed"),
		hasMore: true,
	}
}

// InitialFetch loads the first page of q and replaces the feed with it.
// It is never refused. If two searches race, whichever was issued last
// wins regardless of arrival order.
func (p *Pager) InitialFetch(ctx context.Context, q query.Params) (Outcome, error) {
	q = q.WithOffset(0)

	p.mu.Lock()
	p.issued++
	gen := p.issued
	p.inFlight++
	p.mu.Unlock()

	page, err := p.fetcher.News(ctx, p.session.Token, q)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight--

	if err != nil {
		p.log.Error("initial fetch failed",
			zap.String("query", q.Describe()),
			zap.Uint64("generation", gen),
			zap.Error(err))
		return Failed, err
	}
	if gen < p.applied {
		p.log.Debug("discarding superseded first page",
			zap.Uint64("generation", gen),
			zap.Uint64("applied", p.applied))
		return Discarded, nil
	}

	p.items = normalize(page.Articles)
	p.offset = q.Limit
	p.total = page.Total
	p.hasMore = len(page.Articles) == q.Limit
	p.applied = gen
	p.query = q
	p.log.Debug("feed replaced",
		zap.String("query", q.Describe()),
		zap.Uint64("generation", gen),
		zap.Int("count", len(page.Articles)),
		zap.Bool("has_more", p.hasMore))
	return Replaced, nil
}

// IncrementalFetch loads the next page of q's filter set at the pager's own
// offset. It does nothing while a request is outstanding, once the feed is
// exhausted, before any first page has landed, or when q selects a different
// feed than the one held; only InitialFetch may switch filters.
func (p *Pager) IncrementalFetch(ctx context.Context, q query.Params) (Outcome, error) {
	p.mu.Lock()
	if p.inFlight > 0 || !p.hasMore || p.applied == 0 {
		p.mu.Unlock()
		return Skipped, nil
	}
	if !q.SameFilters(p.query) {
		p.mu.Unlock()
		p.log.Debug("skipping page for filters not yet loaded",
			zap.String("query", q.Describe()),
			zap.String("held", p.query.Describe()))
		return Skipped, nil
	}
	gen := p.applied
	q = q.WithOffset(p.offset)
	p.inFlight++
	p.mu.Unlock()

	page, err := p.fetcher.News(ctx, p.session.Token, q)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight--

	if err != nil {
		p.log.Error("incremental fetch failed",
			zap.Int("offset", q.Offset),
			zap.Error(err))
		return Failed, err
	}
	if gen != p.applied {
		p.log.Debug("discarding page from superseded search",
			zap.Uint64("generation", gen),
			zap.Uint64("applied", p.applied),
			zap.Int("offset", q.Offset))
		return Discarded, nil
	}

	p.items = append(p.items, normalize(page.Articles)...)
	p.offset += q.Limit
	p.hasMore = len(page.Articles) == q.Limit
	p.log.Debug("feed extended",
		zap.Int("offset", q.Offset),
		zap.Int("count", len(page.Articles)),
		zap.Bool("has_more", p.hasMore))
	return Appended, nil
}

// TriggerFromScroll is the scroll trigger's entry point. q is the currently
// submitted search.
func (p *Pager) TriggerFromScroll(ctx context.Context, q query.Params) (Outcome, error) {
	return p.IncrementalFetch(ctx, q)
}

// CanLoadMore reports whether IncrementalFetch would issue a request now.
func (p *Pager) CanLoadMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight == 0 && p.hasMore && p.applied > 0
}

func (p *Pager) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Items:      slices.Clone(p.items),
		Offset:     p.offset,
		Total:      p.total,
		HasMore:    p.hasMore,
		Fetching:   p.inFlight > 0,
		Generation: p.applied,
		Query:      p.query.WithOffset(p.query.Offset),
	}
}
