// Package apiclient sends JSON requests to model providers and maps failures
// onto domain.ErrAuth and domain.ErrService.
package apiclient

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

	"github.com/custodia-labs/docqa/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// maxErrorBody caps how much of an error response is quoted in messages.
const maxErrorBody = 512

// Client is a rate-limited JSON HTTP client for one provider.
type Client struct {
	name    string
	http    *http.Client
	limiter *ratelimit.Limiter
}

// New creates a client. name prefixes every error message.
func New(name string, timeout time.Duration, limiter *ratelimit.Limiter) *Client {
	if limiter == nil {
		limiter = ratelimit.NewWithConfig(ratelimit.Config{})
	}
	return &Client{
		name:    name,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// PostJSON sends in as a JSON body and decodes a 2xx response into out.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, headers, out)
}

// Get sends a GET and decodes a 2xx response into out, which may be nil.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.name, err)
	}
	return c.do(req, headers, out)
}

func (c *Client) do(req *http.Request, headers map[string]string, out any) error {
	ctx := req.Context()
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", c.name, ctxErr)
		}
		return fmt.Errorf("%s: %w: %v", c.name, domain.ErrService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w: read response: %v", c.name, domain.ErrService, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: decode response: %v", c.name, domain.ErrService, err)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response, body []byte) error {
	msg := errorMessage(body)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w (status %d): %s", c.name, domain.ErrAuth, resp.StatusCode, msg)
	case http.StatusTooManyRequests:
		c.limiter.RecordRateLimitError(ratelimit.ParseRetryAfter(resp.Header.Get("Retry-After")))
		return fmt.Errorf("%s: %w: %w: %s", c.name, domain.ErrService, domain.ErrRateLimited, msg)
	default:
		return fmt.Errorf("%s: %w (status %d): %s", c.name, domain.ErrService, resp.StatusCode, msg)
	}
}

// errorMessage extracts a readable message from an error body.
// Handles {"error":{"message":...}}, {"error":"..."} and plain text.
func errorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if err := json.Unmarshal(envelope.Error, &flat); err == nil && flat != "" {
			return flat
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	if text == "" {
		return "empty response"
	}
	return text
}

// IsAuth reports whether err is a credential rejection.
func IsAuth(err error) bool {
	return errors.Is(err, domain.ErrAuth)
}
