// Package api is the HTTP client for the news backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/matheuskafuri/newsdash/internal/logging"
	"github.com/matheuskafuri/newsdash/internal/query"
)

const (
	pathLogin   = "/api/login"
	pathProfile = "/api/profile"
	pathNews    = "/api/news"

	maxErrorBody = 1024
)

type Options struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is requests per second across all endpoints; 0 disables it.
	RateLimit  float64
	RateBurst  int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the news backend. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url scheme must be http or https, got %q", base.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		base:    base,
		http:    hc,
		limiter: limiter,
		log:     logging.OrNop(opts.Logger).Named("api"),
	}, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, pathLogin, "", nil, loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login: response contained no token")
	}
	return resp.Token, nil
}

func (c *Client) Profile(ctx context.Context, token string) (Profile, error) {
	if token == "" {
		return Profile{}, ErrMissingToken
	}
	var p Profile
	if err := c.do(ctx, http.MethodGet, pathProfile, token, nil, nil, &p); err != nil {
		return Profile{}, fmt.Errorf("fetching profile: %w", err)
	}
	return p, nil
}

// UpdateProfile replaces the stored preferences. Nil slices are sent as
// empty arrays so the server clears them rather than keeping old values.
func (c *Client) UpdateProfile(ctx context.Context, token string, u ProfileUpdate) error {
	if token == "" {
		return ErrMissingToken
	}
	if u.PreferredCategories == nil {
		u.PreferredCategories = []string{}
	}
	if u.PreferredSources == nil {
		u.PreferredSources = []string{}
	}
	if err := c.do(ctx, http.MethodPut, pathProfile, token, nil, u, nil); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// News fetches one page of articles.
func (c *Client) News(ctx context.Context, token string, p query.Params) (NewsPage, error) {
	if token == "" {
		return NewsPage{}, ErrMissingToken
	}
	if err := p.Validate(); err != nil {
		return NewsPage{}, fmt.Errorf("fetching news: %w", err)
	}
	var page NewsPage
	if err := c.do(ctx, http.MethodGet, pathNews, token, p.Values(), nil, &page); err != nil {
		return NewsPage{}, fmt.Errorf("fetching news: %w", err)
	}
	if page.Articles == nil {
		page.Articles = []Article{}
	}
	return page, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, q url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := *c.base
	u.Path = c.base.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
