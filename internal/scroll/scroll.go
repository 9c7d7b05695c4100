// Package scroll turns list scroll positions into load-more signals.
package scroll

import (
	"context"

	"github.com/matheuskafuri/newsdash/internal/feed"
	"github.com/matheuskafuri/newsdash/internal/query"
)

// Position is a list's scroll state measured in rows.
type Position struct {
	Offset   int // first visible row
	Viewport int // visible rows
	Content  int // total rows
}

// Remaining is the number of rows below the viewport.
func (p Position) Remaining() int {
	r := p.Content - (p.Offset + p.Viewport)
	if r < 0 {
		return 0
	}
	return r
}

// Loader is the part of the feed pager the trigger drives.
type Loader interface {
	TriggerFromScroll(ctx context.Context, q query.Params) (feed.Outcome, error)
}

// Trigger signals its loader whenever a sampled position is within
// Threshold rows of the bottom. It does not throttle; the loader decides
// whether a signal turns into a request.
type Trigger struct {
	loader    Loader
	Threshold int
}

func NewTrigger(l Loader) *Trigger {
	return &Trigger{loader: l}
}

func (t *Trigger) AtBottom(pos Position) bool {
	return pos.Remaining() <= t.Threshold
}

// Observe samples pos and, at the bottom, asks the loader for the next page
// of q. fired reports whether the loader was called.
func (t *Trigger) Observe(ctx context.Context, pos Position, q query.Params) (fired bool, out feed.Outcome, err error) {
	if !t.AtBottom(pos) {
		return false, feed.Skipped, nil
	}
	out, err = t.loader.TriggerFromScroll(ctx, q)
	return true, out, err
}
