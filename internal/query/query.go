// Package query turns search-form input and stored preferences into the
// canonical parameters of a news request.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and input format for date bounds.
const DateLayout = "2006-01-02"

// Params is one news request. It is a value type; callers derive the next
// page with WithOffset rather than mutating a shared copy.
type Params struct {
	Text       string
	Start      time.Time // zero means unbounded
	End        time.Time // zero means unbounded
	Categories []string
	Sources    []string
	Limit      int
	Offset     int
}

// Filters is one of the two interchangeable filter sources: the search
// form's explicit selection or the user's stored preferences.
type Filters struct {
	Categories []string
	Sources    []string
}

// Inputs holds the free-form part of the search form.
type Inputs struct {
	Text  string
	Start time.Time
	End   time.Time
}

// Builder stamps the configured page size onto every query it builds.
type Builder struct {
	limit int
}

func NewBuilder(limit int) Builder {
	return Builder{limit: limit}
}

func (b Builder) Limit() int {
	return b.limit
}

// Build produces the first page of a filter set. override, when non-nil,
// replaces prefs entirely; the two are never merged.
func (b Builder) Build(in Inputs, override *Filters, prefs Filters) Params {
	f := prefs
	if override != nil {
		f = *override
	}
	return Params{
		Text:       strings.TrimSpace(in.Text),
		Start:      in.Start,
		End:        in.End,
		Categories: slices.Clone(f.Categories),
		Sources:    slices.Clone(f.Sources),
		Limit:      b.limit,
		Offset:     0,
	}
}

// ParseDate accepts YYYY-MM-DD or an empty string (no bound).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

var (
	ErrInvalidLimit  = errors.New("limit must be positive")
	ErrInvalidOffset = errors.New("offset must not be negative")
	ErrInvertedRange = errors.New("start date is after end date")
)

func (p Params) Validate() error {
	if p.Limit <= 0 {
		return ErrInvalidLimit
	}
	if p.Offset < 0 {
		return ErrInvalidOffset
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.Start.After(p.End) {
		return ErrInvertedRange
	}
	return nil
}

// WithOffset returns a copy of p positioned at offset.
func (p Params) WithOffset(offset int) Params {
	p.Categories = slices.Clone(p.Categories)
	p.Sources = slices.Clone(p.Sources)
	p.Offset = offset
	return p
}

// SameFilters reports whether p and o select the same feed, ignoring offset.
func (p Params) SameFilters(o Params) bool {
	return p.Text == o.Text &&
		p.Start.Equal(o.Start) &&
		p.End.Equal(o.End) &&
		p.Limit == o.Limit &&
		slices.Equal(p.Categories, o.Categories) &&
		slices.Equal(p.Sources, o.Sources)
}

// Values encodes p as the /api/news query string. Empty dates are sent as
// empty values; list filters use the bracketed array form.
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("query", p.Text)
	v.Set("startDate", FormatDate(p.Start))
	v.Set("endDate", FormatDate(p.End))
	for _, c := range p.Categories {
		v.Add("categories[]", c)
	}
	for _, s := range p.Sources {
		v.Add("sources[]", s)
	}
	v.Set("limit", strconv.Itoa(p.Limit))
	v.Set("offset", strconv.Itoa(p.Offset))
	return v
}

// Describe is a short human label for status lines and logs.
func (p Params) Describe() string {
	var parts []string
	if p.Text != "" {
		parts = append(parts, fmt.Sprintf("%q", p.Text))
	}
	if !p.Start.IsZero() || !p.End.IsZero() {
		parts = append(parts, FormatDate(p.Start)+".."+FormatDate(p.End))
	}
	if len(p.Categories) > 0 {
		parts = append(parts, strings.Join(p.Categories, ","))
	}
	if len(p.Sources) > 0 {
		parts = append(parts, strings.Join(p.Sources, ","))
	}
	if len(parts) == 0 {
		return "All"
	}
	return strings.Join(parts, " · ")
}
