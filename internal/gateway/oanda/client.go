// Package oanda wraps the OANDA v20 REST API surface used by finboard.
package oanda

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
)

const defaultTimeout = 15 * time.Second

// Options tunes the client from configuration. Zero values fall back to the
// package defaults.
type Options struct {
	Timeout  time.Duration
	Defaults QueryDefaults
}

// Client is a single-use REST client bound to one user's resolved
// credentials. It is built per inbound request and never cached: tokens can
// change between calls, and a stale client would authenticate as the wrong
// credential set.
type Client struct {
	baseURL    *url.URL
	accountID  string
	token      string
	defaults   QueryDefaults
	httpClient *http.Client
}

// NewClient constructs a client from a resolved credential set. Requests
// always run under a timeout so a hung upstream never blocks the caller
// indefinitely.
func NewClient(creds CredentialSet, opts Options) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	parsed, err := url.Parse(creds.Environment.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("parsing oanda base url failed: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    parsed,
		accountID:  strings.TrimSpace(creds.AccountID),
		token:      strings.TrimSpace(creds.APIToken),
		defaults:   opts.Defaults.withFallbacks(),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// AccountID returns the broker account this client is bound to.
func (c *Client) AccountID() string {
	return c.accountID
}

// SetBaseURL overrides the broker host for testing.
func (c *Client) SetBaseURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	c.baseURL = parsed
	return nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) accountPath(suffix string) string {
	return "/v3/accounts/" + url.PathEscape(c.accountID) + suffix
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any, out any) error {
	if c == nil || c.httpClient == nil {
		return fmt.Errorf("oanda client not initialized")
	}
	endpoint, err := c.resolveEndpoint(path)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding oanda request failed: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("building oanda request failed: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling oanda failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return newAPIError(resp.StatusCode, resp.Status, data)
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding oanda response failed: %w", err)
	}
	return nil
}

func (c *Client) resolveEndpoint(path string) (*url.URL, error) {
	if c.baseURL == nil {
		return nil, fmt.Errorf("oanda base url not set")
	}
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = "/"
	}
	query := ""
	if idx := strings.Index(trimmed, "?"); idx >= 0 {
		query = trimmed[idx+1:]
		trimmed = trimmed[:idx]
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	base := *c.baseURL
	base.Path = strings.TrimSuffix(base.Path, "/") + trimmed
	base.RawPath = ""
	base.RawQuery = query
	base.Fragment = ""
	return &base, nil
}
