package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestBuildUsesPreferencesWithoutOverride(t *testing.T) {
	b := NewBuilder(10)
	prefs := Filters{Categories: []string{"science", "health"}, Sources: []string{"The Guardian"}}

	p := b.Build(Inputs{Text: "  mars  "}, nil, prefs)

	assert.Equal(t, "mars", p.Text)
	assert.Equal(t, []string{"science", "health"}, p.Categories)
	assert.Equal(t, []string{"The Guardian"}, p.Sources)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestBuildOverrideReplacesPreferences(t *testing.T) {
	b := NewBuilder(10)
	prefs := Filters{Categories: []string{"science"}, Sources: []string{"The Guardian"}}
	override := &Filters{Categories: []string{"sports"}}

	p := b.Build(Inputs{}, override, prefs)

	assert.Equal(t, []string{"sports"}, p.Categories)
	assert.Empty(t, p.Sources, "override sources must not be merged with preference sources")
}

func TestBuildEmptyPreferencesIsUnfiltered(t *testing.T) {
	p := NewBuilder(10).Build(Inputs{}, nil, Filters{})
	assert.Empty(t, p.Categories)
	assert.Empty(t, p.Sources)
	assert.Equal(t, "All", p.Describe())
}

func TestBuildDoesNotAliasInputs(t *testing.T) {
	prefs := Filters{Categories: []string{"science"}}
	p := NewBuilder(10).Build(Inputs{}, nil, prefs)
	prefs.Categories[0] = "sports"
	assert.Equal(t, "science", p.Categories[0])
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("   ")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseDate("03/01/2024")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	ok := Params{Limit: 10}
	assert.NoError(t, ok.Validate())

	assert.ErrorIs(t, Params{Limit: 0}.Validate(), ErrInvalidLimit)
	assert.ErrorIs(t, Params{Limit: 10, Offset: -1}.Validate(), ErrInvalidOffset)

	inverted := Params{Limit: 10, Start: date(t, "2024-03-02"), End: date(t, "2024-03-01")}
	assert.ErrorIs(t, inverted.Validate(), ErrInvertedRange)

	sameDay := Params{Limit: 10, Start: date(t, "2024-03-01"), End: date(t, "2024-03-01")}
	assert.NoError(t, sameDay.Validate())
}

func TestValuesEncoding(t *testing.T) {
	p := Params{
		Text:       "climate",
		Start:      date(t, "2024-01-01"),
		Categories: []string{"science", "health"},
		Sources:    []string{"News API"},
		Limit:      10,
		Offset:     20,
	}

	v := p.Values()
	assert.Equal(t, "climate", v.Get("query"))
	assert.Equal(t, "2024-01-01", v.Get("startDate"))
	assert.Equal(t, "", v.Get("endDate"))
	assert.True(t, v.Has("endDate"), "empty dates are still sent")
	assert.Equal(t, []string{"science", "health"}, v["categories[]"])
	assert.Equal(t, []string{"News API"}, v["sources[]"])
	assert.Equal(t, "10", v.Get("limit"))
	assert.Equal(t, "20", v.Get("offset"))
}

func TestWithOffsetKeepsFilters(t *testing.T) {
	p := Params{Text: "x", Categories: []string{"a"}, Limit: 10}
	next := p.WithOffset(30)

	assert.Equal(t, 30, next.Offset)
	assert.Equal(t, 0, p.Offset)
	assert.True(t, p.SameFilters(next))

	next.Categories[0] = "b"
	assert.Equal(t, "a", p.Categories[0])
}

func TestSameFilters(t *testing.T) {
	base := Params{Text: "x", Categories: []string{"a"}, Limit: 10}

	changed := base
	changed.Text = "y"
	assert.False(t, base.SameFilters(changed))

	reordered := base
	reordered.Categories = []string{"a", "b"}
	assert.False(t, base.SameFilters(reordered))

	bounded := base
	bounded.End = date(t, "2024-01-01")
	assert.False(t, base.SameFilters(bounded))
}
