// Package batch talks to the backend that merges or removes subtitle tracks.
package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"subtitle-merger/internal/domain"
)

// Endpoint is the backend operation that processes one batch.
const Endpoint = "process_batch"

const (
	maxResponseBytes = 1 << 20
	maxErrorBody     = 512
)

// Client posts batch requests to the backend.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient builds a client for backendURL. A nil httpClient gets NewHTTPClient(0).
func NewClient(backendURL string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(backendURL))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url must be absolute, got %q", backendURL)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}

	return &Client{
		endpoint: base.JoinPath(Endpoint).String(),
		http:     httpClient,
	}, nil
}

// NewHTTPClient builds the transport used for batch calls. A zero timeout
// leaves the request unbounded, since a batch may run for a long time.
func NewHTTPClient(timeout time.Duration) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.TLSHandshakeTimeout = 10 * time.Second

	return &http.Client{
		Transport: base,
		Timeout:   timeout,
	}
}

// URL returns the full process_batch address.
func (c *Client) URL() string {
	return c.endpoint
}

// ProcessBatch sends req once and decodes the completed batch response.
func (c *Client) ProcessBatch(ctx context.Context, req domain.BatchRequest) (domain.BatchResponse, error) {
	if req.Settings == nil {
		req.Settings = map[string]any{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return domain.BatchResponse{}, fmt.Errorf("encode batch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.BatchResponse{}, &TransportError{Endpoint: Endpoint, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return domain.BatchResponse{}, &TransportError{Endpoint: Endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.BatchResponse{}, &StatusError{
			URL:        c.endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(snippet),
		}
	}

	var out domain.BatchResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty response body")
		}
		return domain.BatchResponse{}, &TransportError{Endpoint: Endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out, nil
}
