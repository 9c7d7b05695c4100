package cache

import "time"

// Article is one row of the local history.
type Article struct {
	ID          string
	Source      string
	Title       string
	Link        string
	Description string
	Published   time.Time
	FetchedAt   time.Time
	// Query labels the search the article was last seen under.
	Query string
}

type QueryOpts struct {
	Since   time.Time
	Until   time.Time
	Sources []string
	Search  string
	Limit   int
	Offset  int
}
