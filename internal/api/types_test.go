package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleDateFields(t *testing.T) {
	tests := []struct {
		name string
		json string
		want time.Time
	}{
		{"rfc3339 date", `{"date":"2024-05-01T10:30:00Z"}`, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{"plain date", `{"date":"2024-05-01"}`, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"publishedDate alias", `{"publishedDate":"2024-05-02"}`, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		{"date wins over alias", `{"date":"2024-05-01","publishedDate":"2024-05-02"}`, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"garbage", `{"date":"yesterday"}`, time.Time{}},
		{"missing", `{}`, time.Time{}},
	}
	for _, tt := range tests {
		var a Article
		require.NoError(t, json.Unmarshal([]byte(tt.json), &a), tt.name)
		assert.True(t, tt.want.Equal(a.Published), "%s: got %v", tt.name, a.Published)
	}
}

func TestArticleFields(t *testing.T) {
	var a Article
	raw := `{"title":"T","description":"D","url":"https://example.com","source":"News API"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, Article{Title: "T", Description: "D", URL: "https://example.com", Source: "News API"}, a)
}
