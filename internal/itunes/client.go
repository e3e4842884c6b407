// Package itunes is a client for the iTunes Search API that returns the
// artwork URLs of the matching items.
package itunes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/SebastienMelki/artwall/internal/gallery"
	"github.com/SebastienMelki/artwall/internal/observability"
)

// maxBodyBytes bounds the response body read for one search.
const maxBodyBytes = 8 << 20

type searchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []searchResult `json:"results"`
}

type searchResult struct {
	ArtworkURL100 string `json:"artworkUrl100"`
}

// Client fetches artwork references from the iTunes Search API. It is safe
// for concurrent use. Requests are rate limited and transient failures
// (network errors, 429 and 5xx) are retried with exponential backoff.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      *ExponentialBackoff
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Client. metrics is optional (pass nil to disable).
func NewClient(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = 200
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60)
	}
	burst := max(cfg.Burst, 1)

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		retry: &ExponentialBackoff{
			BaseDelay:  cfg.RetryBaseDelay,
			MaxDelay:   cfg.RetryMaxDelay,
			MaxRetries: cfg.MaxRetries,
			Jitter:     0.2,
		},
		metrics: metrics,
		logger:  logger.With("component", "itunes-client"),
	}
}

// ValidateMedia reports whether media is accepted by the API.
func (c *Client) ValidateMedia(media string) error {
	_, err := ParseMedia(media)
	return err
}

// SearchURL builds the request URL for a search.
func (c *Client) SearchURL(query string, media Media) string {
	params := url.Values{}
	params.Set("term", query)
	params.Set("media", string(media))
	params.Set("limit", strconv.Itoa(c.cfg.ResultLimit))
	return c.cfg.BaseURL + "?" + params.Encode()
}

// Fetch searches for query and returns the artwork URLs of the results in
// response order. Results without artwork are skipped. Duplicates are kept;
// the gallery deduplicates.
func (c *Client) Fetch(ctx context.Context, query, media string) ([]gallery.CandidateID, error) {
	m, err := ParseMedia(media)
	if err != nil {
		return nil, err
	}
	reqURL := c.SearchURL(query, m)

	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("GET %s: rate limiter: %w", reqURL, err)
		}

		ids, retryAfter, err := c.do(ctx, reqURL)
		if err == nil {
			c.logger.Debug("search fetched", "url", reqURL, "artwork", len(ids), "attempt", attempt)
			return ids, nil
		}

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return nil, err
		}
		lastErr = retryable.err

		delay := retryAfterDelay(c.retry.NextDelay(attempt), retryAfter)
		if delay == 0 {
			break
		}

		if c.metrics != nil {
			c.metrics.FetchRetries.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("media", string(m))))
		}
		c.logger.Warn("search failed, retrying",
			"url", reqURL,
			"attempt", attempt+1,
			"max_retries", c.retry.MaxRetries,
			"delay", delay,
			"error", lastErr,
		)

		if !sleepWithContext(ctx, delay) {
			return nil, fmt.Errorf("GET %s: context canceled during retry wait: %w", reqURL, ctx.Err())
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}

// retryableError marks a failure worth another attempt.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// do performs one request. It returns the Retry-After header of retryable
// responses.
func (c *Client) do(ctx context.Context, reqURL string) ([]gallery.CandidateID, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("GET %s: %w", reqURL, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", fmt.Errorf("GET %s: %w", reqURL, err)
		}
		return nil, "", &retryableError{err: fmt.Errorf("GET %s: %w", reqURL, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		statusErr := fmt.Errorf("GET %s: %w: %d", reqURL, ErrUnexpectedStatus, resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, resp.Header.Get("Retry-After"), &retryableError{err: statusErr}
		}
		return nil, "", statusErr
	}

	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, "", fmt.Errorf("GET %s: %w: %w", reqURL, ErrDecode, err)
	}

	ids := make([]gallery.CandidateID, 0, len(body.Results))
	for _, r := range body.Results {
		if r.ArtworkURL100 == "" {
			continue
		}
		ids = append(ids, gallery.CandidateID(r.ArtworkURL100))
	}
	return ids, "", nil
}

// sleepWithContext sleeps for the given duration or until the context is
// canceled. Returns true if the full sleep completed.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
