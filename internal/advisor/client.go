// Package advisor is the client of the site-selection backend: one method per
// endpoint plus the pages and conversation built on top of them.
package advisor

import (
	"context"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-advisor/internal/fetcher"
	"github.com/sells-group/site-advisor/internal/idempotency"
	"github.com/sells-group/site-advisor/internal/model"
	"github.com/sells-group/site-advisor/internal/normalize"
)

// Endpoint paths relative to the backend base URL.
const (
	PathRecommendArea     = "/api/recommend/area"
	PathRecommendIndustry = "/api/recommend/industry"
	PathReport            = "/api/report"
	PathChat              = "/api/chat"
)

// DefaultBaseURL is where the backend listens in development.
const DefaultBaseURL = "http://localhost:5001"

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the backend base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithMaxAttempts sets the attempts per logical request.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// WithKeyFunc replaces the idempotency key source.
func WithKeyFunc(fn func() string) Option {
	return func(c *Client) {
		c.newKey = fn
	}
}

// Client calls the backend endpoints and normalizes their responses.
type Client struct {
	f           fetcher.Fetcher
	baseURL     string
	maxAttempts int
	newKey      func() string
}

// NewClient creates a Client that issues requests through f.
func NewClient(f fetcher.Fetcher, opts ...Option) *Client {
	c := &Client{
		f:           f,
		baseURL:     DefaultBaseURL,
		maxAttempts: fetcher.DefaultMaxAttempts,
		newKey:      idempotency.NewKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Recommendation is a normalized list together with the raw payload it came
// from.
type Recommendation struct {
	Items   model.Recommendations
	Payload fetcher.Payload
}

// RecommendArea ranks districts for a category.
func (c *Client) RecommendArea(ctx context.Context, q model.AreaQuery) (*Recommendation, error) {
	resp, err := c.post(ctx, PathRecommendArea, q, true)
	if err != nil {
		return nil, err
	}
	return &Recommendation{
		Items:   normalize.Recommendations(resp.Payload, model.KindArea, q.GroupKey()),
		Payload: resp.Payload,
	}, nil
}

// RecommendIndustry ranks categories for a district.
func (c *Client) RecommendIndustry(ctx context.Context, q model.IndustryQuery) (*Recommendation, error) {
	q = q.WithDistrict()
	resp, err := c.post(ctx, PathRecommendIndustry, q, true)
	if err != nil {
		return nil, err
	}
	return &Recommendation{
		Items:   normalize.Recommendations(resp.Payload, model.KindIndustry, q.GroupKey()),
		Payload: resp.Payload,
	}, nil
}

// Report fetches a market report. Failures the backend explains are
// returned as *normalize.BackendError.
func (c *Client) Report(ctx context.Context, q model.ReportQuery) (*model.Report, fetcher.Payload, error) {
	resp, err := c.post(ctx, PathReport, q, false)
	if err != nil {
		return nil, nil, backendOrErr(err)
	}
	r, err := normalize.Report(resp.Payload, resp.StatusCode)
	if err != nil {
		return nil, resp.Payload, err
	}
	return r, resp.Payload, nil
}

// Chat posts the conversation and returns the reply.
func (c *Client) Chat(ctx context.Context, req model.ChatRequest) (string, error) {
	resp, err := c.post(ctx, PathChat, req, false)
	if err != nil {
		return "", backendOrErr(err)
	}
	return normalize.Chat(resp.Payload, resp.StatusCode)
}

// post issues one logical request. Recommendation requests carry a fresh
// idempotency key, reused by every retried attempt.
func (c *Client) post(ctx context.Context, path string, body any, idempotent bool) (*fetcher.Response, error) {
	req := fetcher.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + path,
		Body:   body,
	}
	if idempotent {
		req.Headers = map[string]string{idempotency.Header: c.newKey()}
	}
	resp, err := c.f.Fetch(ctx, req, c.maxAttempts)
	if err != nil {
		if fetcher.IsCancelled(err) {
			return nil, err
		}
		if _, ok := fetcher.AsHTTPStatus(err); ok {
			return nil, err
		}
		return nil, eris.Wrapf(err, "post %s", path)
	}
	return resp, nil
}

func backendOrErr(err error) error {
	if he, ok := fetcher.AsHTTPStatus(err); ok {
		return normalize.FromStatusError(he)
	}
	return err
}
