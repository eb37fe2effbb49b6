package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goalkeeper/goals/internal/metrics"
)

// maxResponseBytes caps how much of a suggestion response is read.
const maxResponseBytes = 1 << 20

// Client asks a remote suggestion service for steps, one POST per call.
// There is no retry, no caching, and no timeout beyond the caller's context.
type Client struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
	metrics    *metrics.Metrics
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger failure causes are written to.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithMetrics records every round trip on m.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient returns a Client posting to url.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:        url,
		httpClient: http.DefaultClient,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SuggestSteps returns the service's suggested step texts for goalTitle, in
// the order given. A missing or malformed steps list is zero suggestions, not
// an error. Every failure is an *Error carrying only a user-facing message.
func (c *Client) SuggestSteps(ctx context.Context, goalTitle string) ([]string, error) {
	start := time.Now()
	steps, err := c.roundTrip(ctx, goalTitle)
	c.metrics.ObserveSuggestion("remote", outcomeOf(steps, err), time.Since(start))
	return steps, err
}

func (c *Client) roundTrip(ctx context.Context, goalTitle string) ([]string, error) {
	body, err := json.Marshal(Request{GoalTitle: goalTitle})
	if err != nil {
		return nil, c.fail(ctx, "", fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, c.fail(ctx, "", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(ctx, "", fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.fail(ctx, "", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, msg, _ := decodeResponse(data)
		return nil, c.fail(ctx, msg, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	steps, msg, ok := decodeResponse(data)
	if !ok {
		return nil, c.fail(ctx, "", fmt.Errorf("response body is not a JSON object"))
	}
	if msg != "" {
		return nil, c.fail(ctx, msg, fmt.Errorf("service reported an error"))
	}
	if steps == nil {
		steps = []string{}
	}
	return steps, nil
}

// fail logs cause and returns the user-facing *Error.
func (c *Client) fail(ctx context.Context, msg string, cause error) error {
	c.log.WarnContext(ctx, "suggestion request failed", "url", c.url, "error", cause)
	return failure(msg)
}

func outcomeOf(steps []string, err error) string {
	switch {
	case err != nil:
		return metrics.OutcomeFailure
	case len(steps) == 0:
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeSuccess
	}
}
