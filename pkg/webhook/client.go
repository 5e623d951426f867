// Package webhook posts JSON payloads to admin-configured URLs.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single delivery
const DefaultTimeout = 5 * time.Second

const maxResponseBody = 4096

// Result describes a delivery attempt
type Result struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body,omitempty"`
	Duration   string `json:"duration"`
}

// Client sends webhook requests. Redirects are never followed.
type Client struct {
	http     *http.Client
	validate func(ctx context.Context, rawURL string) error
}

// NewClient creates a client that refuses private and loopback targets
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:                 nil,
		DialContext:           guardedDialContext(dialer),
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return newClient(timeout, transport, ValidateURL)
}

func newClient(timeout time.Duration, transport http.RoundTripper, validate func(context.Context, string) error) *Client {
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		validate: validate,
	}
}

// Post validates the target and sends payload as JSON. Any non-2xx
// response (including redirects) is returned as an error alongside the Result.
func (c *Client) Post(ctx context.Context, rawURL string, headers map[string]string, payload interface{}) (*Result, error) {
	if err := c.validate(ctx, rawURL); err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "angple-wiki-webhook/1.0")
	for k, v := range headers {
		if strings.TrimSpace(k) == "" || strings.EqualFold(k, "Host") {
			continue
		}
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	result := &Result{
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
		Duration:   time.Since(start).Round(time.Millisecond).String(),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return result, nil
}
