package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/acornak/healthcare-chatbot/internal/config"
	"github.com/acornak/healthcare-chatbot/internal/observability"
	"github.com/acornak/healthcare-chatbot/internal/resilience"
)

const (
	breakerName     = "backend"
	maxResponseSize = 4 << 20
)

// ErrNonJSONResponse is returned when the backend answers with something that is not JSON
var ErrNonJSONResponse = errors.New("backend returned a non-JSON response")

// Result is a backend answer ready to be relayed to the LLM
type Result struct {
	StatusCode int
	// Body is the compacted JSON document the backend returned
	Body json.RawMessage
}

// OK reports a 2xx status
func (r *Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Caller invokes a backend route with a raw JSON body
type Caller interface {
	Call(ctx context.Context, path string, arguments string) (*Result, error)
}

// HTTPClient implements Caller over HTTP
type HTTPClient struct {
	baseURL        string
	timeout        time.Duration
	httpClient     *http.Client
	circuitBreaker *resilience.CircuitBreaker
}

// NewHTTPClient creates a client for cfg.ServerURL
func NewHTTPClient(cfg *config.Config) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.ServerURL, "/"),
		timeout:    cfg.BackendRequestTimeout(),
		httpClient: &http.Client{},
		circuitBreaker: resilience.NewCircuitBreaker(
			breakerName,
			cfg.CircuitBreakerMaxFailures,
			time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second,
		),
	}
}

// URL returns the absolute URL of a route
func (c *HTTPClient) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Call POSTs arguments verbatim to {base}/{path}.
// Any JSON body is returned whatever the status code, so the LLM can see
// backend validation errors; only transport failures and non-JSON bodies fail.
func (c *HTTPClient) Call(ctx context.Context, path string, arguments string) (*Result, error) {
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}

	var result *Result
	err := c.circuitBreaker.Call(func() error {
		var callErr error
		result, callErr = c.post(ctx, c.URL(path), arguments)
		return callErr
	}, func(error) bool { return ctx.Err() != nil })

	state := c.circuitBreaker.GetState()
	observability.UpdateCircuitBreakerState(c.circuitBreaker.Name(), int(state))
	if err != nil {
		switch {
		case errors.Is(err, resilience.ErrCircuitOpen):
			observability.LoggerFromContext(ctx).Warn().
				Str("breaker", c.circuitBreaker.Name()).
				Str("state", state.String()).
				Msg("Upstream call rejected by circuit breaker")
		case ctx.Err() == nil:
			observability.IncrementCircuitBreakerFailures(c.circuitBreaker.Name())
		}
		return nil, fmt.Errorf("backend call %s failed: %w", path, err)
	}

	return result, nil
}

func (c *HTTPClient) post(ctx context.Context, url, body string) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, raw); err != nil {
		return nil, fmt.Errorf("%w (status %d): %v", ErrNonJSONResponse, resp.StatusCode, err)
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       compacted.Bytes(),
	}, nil
}

// Ping checks that the backend base URL answers at all
func (c *HTTPClient) Ping(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("backend unreachable: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return false, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return true, nil
}
