// Package fetch provides the HTTP client for the opportunities backend.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yourorg/evdash/internal/config"
	"github.com/yourorg/evdash/internal/metrics"
	"github.com/yourorg/evdash/internal/model"
	otelx "github.com/yourorg/evdash/internal/otel"
)

// Client calls the opportunities backend. All failure modes (network error,
// non-2xx status, undecodable body) surface as a single "fetch failed"
// error; callers never branch on the cause.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a backend client with the configured retry policy.
func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:    trimSlash(cfg.BackendURL),
		httpClient: newRetryClient(cfg.FetchRetries),
		timeout:    cfg.RequestTimeout,
	}
}

// newRetryClient creates an HTTP client that retries failed fetches
// automatically before the error is surfaced.
func newRetryClient(retries int) *http.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = retries
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 3 * time.Second
	c.Logger = nil
	return c.StandardClient()
}

// FetchOpportunities retrieves the opportunities matching f. Empty filter
// values are omitted from the query string entirely.
func (c *Client) FetchOpportunities(ctx context.Context, f model.Filters) (*model.OpportunitiesResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := otelx.Tracer().Start(ctx, "fetch.opportunities")
	defer span.End()
	span.SetAttributes(
		attribute.String("filters.search", f.Search),
		attribute.String("filters.sport", f.Sport),
	)

	u := c.baseURL + "/api/opportunities"
	if q := f.Query().Encode(); q != "" {
		u += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logrus.Debugf("Fetching opportunities: %s", u)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		otelx.RecordError(ctx, err)
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetching opportunities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("backend error: status %d, body: %s", resp.StatusCode, string(body))
		otelx.RecordError(ctx, err)
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var out model.OpportunitiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		otelx.RecordError(ctx, err)
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	metrics.FetchesTotal.WithLabelValues("success").Inc()
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	logrus.Debugf("Received %d opportunities (backend %0.1fms)", len(out.Opportunities), out.ResponseTimeMS)
	return &out, nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
