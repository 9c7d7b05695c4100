package api

import (
	"encoding/json"
	"strings"
	"time"
)

// Article is one feed entry. Identity is positional within a feed; the API
// gives articles no stable id.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Published   time.Time `json:"date"`
}

// UnmarshalJSON accepts the publication date as either "date" or
// "publishedDate", in RFC 3339 or plain YYYY-MM-DD form.
func (a *Article) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		URL           string `json:"url"`
		Source        string `json:"source"`
		Date          string `json:"date"`
		PublishedDate string `json:"publishedDate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Article{
		Title:       raw.Title,
		Description: raw.Description,
		URL:         raw.URL,
		Source:      raw.Source,
	}
	ts := raw.Date
	if ts == "" {
		ts = raw.PublishedDate
	}
	a.Published = parseTime(ts)
	return nil
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// NewsPage is the /api/news response. Total is best-effort.
type NewsPage struct {
	Articles []Article `json:"articles"`
	Total    int       `json:"total"`
}

// Profile is the /api/profile response.
type Profile struct {
	PreferredCategories []string  `json:"preferredCategories"`
	PreferredSources    []string  `json:"preferredSources"`
	Articles            []Article `json:"articles,omitempty"`
}

// ProfileUpdate replaces the stored preferences wholesale.
type ProfileUpdate struct {
	PreferredCategories []string `json:"preferredCategories"`
	PreferredSources    []string `json:"preferredSources"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}
