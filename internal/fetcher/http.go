package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/site-advisor/internal/resilience"
)

// AdaptiveLimiter wraps a rate.Limiter with adaptive rate adjustment.
// On success it increases the rate by 20% (up to 2x initial).
// On 429 it halves the rate (down to initial/4 minimum).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	initialRate rate.Limit
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	if burst < 1 {
		burst = 1
	}
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		initialRate: initialRate,
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess increases the rate by 20%, up to 2x initial.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	newRate := a.currentRate * 1.2
	if newRate > a.maxRate {
		newRate = a.maxRate
	}
	a.currentRate = newRate
	a.limiter.SetLimit(newRate)
}

// OnRateLimit halves the rate on 429 responses.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	newRate := a.currentRate * 0.5
	if newRate < a.minRate {
		newRate = a.minRate
	}
	a.currentRate = newRate
	a.limiter.SetLimit(newRate)
	zap.L().Warn("adaptive rate limit: reducing rate after 429",
		zap.Float64("new_rate", float64(newRate)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// WithRateLimiter paces attempts. A non-positive rps disables pacing.
func WithRateLimiter(rps float64, burst int) Option {
	return func(f *HTTPFetcher) {
		if rps <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = NewAdaptiveLimiter(rate.Limit(rps), burst)
	}
}

// WithBreakers guards each endpoint path with its own circuit breaker.
func WithBreakers(sb *resilience.ServiceBreakers) Option {
	return func(f *HTTPFetcher) {
		f.breakers = sb
	}
}

// WithRetry sets the backoff shape between attempts. The attempt count is
// always taken from the Fetch call.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(f *HTTPFetcher) {
		f.retry = cfg
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// HTTPFetcher implements Fetcher over net/http.
type HTTPFetcher struct {
	client    *http.Client
	retry     resilience.RetryConfig
	limiter   *AdaptiveLimiter
	breakers  *resilience.ServiceBreakers
	userAgent string
}

// New creates an HTTPFetcher. Without options it retries immediately and
// neither paces nor breaks.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry:     resilience.DefaultRetryConfig(),
		userAgent: "site-advisor/1.0",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Limiter returns the attempt pacer, or nil when pacing is off.
func (f *HTTPFetcher) Limiter() *AdaptiveLimiter {
	return f.limiter
}

// Fetch issues req and returns the payload of the first 2xx response.
// Transport failures matching resilience.IsTransient are re-issued, up to
// maxAttempts in total; status errors and cancellations are returned as-is.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request, maxAttempts int) (*Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if ctx.Err() != nil {
		return nil, cancelled(ctx)
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	var body []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, eris.Wrap(err, "fetch: marshal request body")
		}
		body = b
	}

	endpoint := endpointOf(req.URL)
	cfg := f.retry
	cfg.MaxAttempts = maxAttempts
	cfg.ShouldRetry = shouldRetry
	cfg.OnRetry = func(attempt int, err error) {
		zap.L().Warn("transient fetch failure, retrying",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err),
		)
	}

	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*Response, error) {
		return f.attempt(ctx, method, req, body, endpoint)
	})
	if err != nil {
		if ctx.Err() != nil && !IsCancelled(err) {
			return nil, cancelled(ctx)
		}
		return nil, err
	}
	return resp, nil
}

func (f *HTTPFetcher) attempt(ctx context.Context, method string, req Request, body []byte, endpoint string) (*Response, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, cancelled(ctx)
			}
			return nil, eris.Wrap(err, "rate limiter wait")
		}
	}

	do := func(ctx context.Context) (*Response, error) {
		return f.do(ctx, method, req, body)
	}
	if f.breakers == nil {
		return do(ctx)
	}
	resp, err := resilience.ExecuteVal(ctx, f.breakers.Get(endpoint), do)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, eris.Wrapf(err, "fetch %s", endpoint)
	}
	return resp, err
}

func (f *HTTPFetcher) do(ctx context.Context, method string, req Request, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, reader)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		httpReq.Header.Set("User-Agent", f.userAgent)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests && f.limiter != nil {
			f.limiter.OnRateLimit()
		}
		return nil, newHTTPStatusError(resp.StatusCode, statusText(resp), text)
	}

	if f.limiter != nil {
		f.limiter.OnSuccess()
	}
	return &Response{StatusCode: resp.StatusCode, Payload: ParsePayload(text)}, nil
}

func shouldRetry(err error) bool {
	if IsCancelled(err) {
		return false
	}
	if _, ok := AsHTTPStatus(err); ok {
		return false
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return false
	}
	return resilience.IsTransient(err)
}

// statusText returns the reason phrase the server sent, falling back to the
// canonical text for the code.
func statusText(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		return http.StatusText(resp.StatusCode)
	}
	return reason
}

func endpointOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return rawURL
	}
	return u.Path
}

// ShouldTrip is the breaker policy for backend calls: transport failures and
// 5xx responses count, cancellations and 4xx responses do not.
func ShouldTrip(err error) bool {
	if err == nil || IsCancelled(err) {
		return false
	}
	if he, ok := AsHTTPStatus(err); ok {
		return he.StatusCode >= 500
	}
	return true
}
