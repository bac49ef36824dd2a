// Package sdk provides a Go client for the basehive daemon's HTTP API.
// CLI commands and external tools use this to manage the fleet.
package sdk

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

	"basehive"
)

// Client talks to a basehive daemon.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// New returns a client for the daemon at baseURL authenticating with
// the given bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		http:  &http.Client{Timeout: 5 * time.Minute},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// do issues one API request and decodes the JSON response into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError maps an API error response back onto the domain sentinel
// errors so callers can use errors.Is across the wire.
func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w", msg, basehive.ErrValidation)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, basehive.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", msg, basehive.ErrConflict)
	case http.StatusBadGateway:
		return fmt.Errorf("%s: %w", msg, basehive.ErrContainerOp)
	default:
		return fmt.Errorf("daemon error (%d): %s", resp.StatusCode, msg)
	}
}

func projectPath(ref string) string {
	return "/v1/projects/" + url.PathEscape(ref)
}
