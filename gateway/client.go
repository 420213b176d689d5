// Package gateway sends assembled judge requests to a remote multimodal
// inference service. It is the harness's only network boundary: one blocking
// round trip per call, no internal retry, with failures classified as either
// fatal configuration errors or recoverable transport errors.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/c360studio/vizjudge/evidence"
	"github.com/google/uuid"
)

// maxResponseSize limits the judge response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Request is one fully assembled judge call: the captured evidence plus the
// rendered instruction block. Constructed fresh per call, never reused.
type Request struct {
	Evidence     evidence.Evidence
	Instructions string
}

// Usage holds best-effort token accounting for one judge call. It is
// telemetry only and never feeds the pass/fail decision.
type Usage struct {
	Prompt     int `json:"prompt"`
	Candidates int `json:"candidates"`
	Total      int `json:"total"`
}

// Reply is the raw outcome of one judge call before verdict parsing.
type Reply struct {
	// RequestID correlates this call in logs and artifacts.
	RequestID string

	// RawText is the judge's response text, expected to be a JSON verdict.
	RawText string

	// Usage is the provider-reported token accounting, zero when absent.
	Usage Usage
}

// Client performs single-shot judge calls against one provider endpoint.
type Client struct {
	provider   Provider
	model      string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithEndpoint overrides the provider's default API endpoint.
func WithEndpoint(url string) ClientOption {
	return func(client *Client) {
		client.endpoint = url
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a judge gateway client for the named provider. The
// provider's credential is verified immediately: a missing credential is a
// ConfigError raised here, before any request is attempted.
func NewClient(providerName, model string, opts ...ClientOption) (*Client, error) {
	provider := GetProvider(providerName)
	if provider == nil {
		return nil, NewConfigError(fmt.Errorf("unknown provider: %s", providerName))
	}
	if err := provider.CheckCredential(); err != nil {
		return nil, err
	}
	if model == "" {
		return nil, NewConfigError(fmt.Errorf("model is required"))
	}

	c := &Client{
		provider: provider,
		model:    model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // Allow time for multimodal inference
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Invoke submits one judge request and returns the raw response text plus
// token usage. The call is a single blocking round trip: retry belongs to
// the caller. Transport and service failures come back as TransportError;
// the caller degrades those to a synthetic FAIL verdict rather than
// aborting the scenario.
func (c *Client) Invoke(ctx context.Context, req *Request) (*Reply, error) {
	// Re-check the credential: the environment may have changed since
	// construction, and the check must precede any network attempt.
	if err := c.provider.CheckCredential(); err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	parts := req.Evidence.Parts()

	body, err := c.provider.BuildRequestBody(c.model, parts, req.Instructions)
	if err != nil {
		return nil, NewConfigError(fmt.Errorf("build request body: %w", err))
	}

	url := c.provider.BuildURL(c.endpoint, c.model)

	c.logger.Debug("Sending judge request",
		"request_id", requestID,
		"provider", c.provider.Name(),
		"model", c.model,
		"evidence_kind", req.Evidence.Kind(),
		"media_parts", len(parts))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewConfigError(fmt.Errorf("create HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	c.provider.SetHeaders(httpReq)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewTransportError(fmt.Errorf("judge request failed: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransportError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		bodyStr := string(respBody)
		if len(bodyStr) > 200 {
			bodyStr = bodyStr[:200] + "..."
		}
		return nil, NewTransportError(fmt.Errorf("judge API error (status %d): %s", httpResp.StatusCode, bodyStr))
	}

	reply, err := c.provider.ParseReply(respBody)
	if err != nil {
		return nil, NewTransportError(fmt.Errorf("parse provider response: %w", err))
	}
	reply.RequestID = requestID

	c.logger.Debug("Judge request completed",
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
		"total_tokens", reply.Usage.Total)

	return reply, nil
}
