package feed

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/matheuskafuri/newsdash/internal/api"
	"github.com/matheuskafuri/newsdash/internal/cache"
)

const maxDescription = 300

// ArticleID is the cache key for an article: a hash of its URL.
func ArticleID(link string) string {
	h := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", h[:16])
}

// ToCache converts a fetched page for the local history.
func ToCache(articles []api.Article, fetchedAt time.Time) []cache.Article {
	out := make([]cache.Article, 0, len(articles))
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		pub := a.Published
		if pub.IsZero() {
			pub = fetchedAt
		}
		out = append(out, cache.Article{
			ID:          ArticleID(a.URL),
			Source:      a.Source,
			Title:       a.Title,
			Link:        a.URL,
			Description: a.Description,
			Published:   pub,
			FetchedAt:   fetchedAt,
		})
	}
	return out
}

func normalize(articles []api.Article) []api.Article {
	out := make([]api.Article, len(articles))
	for i, a := range articles {
		a.Title = strings.TrimSpace(a.Title)
		a.Description = truncate(cleanText(a.Description), maxDescription)
		out[i] = a
	}
	return out
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// cleanText drops markup and collapses whitespace. Entities are decoded.
func cleanText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if tt == html.StartTagToken {
					skip++
				}
			case "br", "p", "div", "li":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li":
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}
