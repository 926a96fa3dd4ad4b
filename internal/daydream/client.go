package daydream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hthillman/daydream-mcp/internal/metrics"
)

// Client is a tiny HTTP client for the Daydream streams API. It holds
// no credential: every call forwards the caller's own API key as a
// bearer token.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// New returns a Client for the given base URL.
func New(base string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx response from the upstream API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daydream API returned %d: %s", e.StatusCode, e.Body)
}

// ValidateKey probes the list endpoint with the given key and reports
// whether upstream accepted it. A single probe, no retries: transient
// upstream failures read as an invalid key.
func (c *Client) ValidateKey(ctx context.Context, apiKey string) bool {
	_, err := c.do(ctx, apiKey, http.MethodGet, "/v1/streams", nil)
	return err == nil
}

// CreateStream creates a new stream.
func (c *Client) CreateStream(ctx context.Context, apiKey string, in CreateStreamRequest) (*Stream, error) {
	body, err := c.do(ctx, apiKey, http.MethodPost, "/v1/streams", in)
	if err != nil {
		return nil, err
	}
	return decodeStream(body)
}

// GetStream fetches one stream by id.
func (c *Client) GetStream(ctx context.Context, apiKey, id string) (*Stream, error) {
	body, err := c.do(ctx, apiKey, http.MethodGet, "/v1/streams/"+id, nil)
	if err != nil {
		return nil, err
	}
	return decodeStream(body)
}

// ListStreams fetches all streams visible to the key. The upstream
// response shape varies: a bare array, an object with a "streams"
// field, or a single bare object. All three normalize to a slice; the
// contract is unclear, so the defensive handling stays.
func (c *Client) ListStreams(ctx context.Context, apiKey string) ([]Stream, error) {
	body, err := c.do(ctx, apiKey, http.MethodGet, "/v1/streams", nil)
	if err != nil {
		return nil, err
	}
	return normalizeList(body)
}

// UpdateStream updates a stream's name, pipeline parameters, or webhook.
func (c *Client) UpdateStream(ctx context.Context, apiKey, id string, in UpdateStreamRequest) (*Stream, error) {
	body, err := c.do(ctx, apiKey, http.MethodPut, "/v1/streams/"+id, in)
	if err != nil {
		return nil, err
	}
	return decodeStream(body)
}

// StartStream starts video generation for a stream.
func (c *Client) StartStream(ctx context.Context, apiKey, id string) (*Stream, error) {
	body, err := c.do(ctx, apiKey, http.MethodPost, "/v1/streams/"+id+"/start", nil)
	if err != nil {
		return nil, err
	}
	return decodeStream(body)
}

// StopStream stops video generation for a stream.
func (c *Client) StopStream(ctx context.Context, apiKey, id string) (*Stream, error) {
	body, err := c.do(ctx, apiKey, http.MethodPost, "/v1/streams/"+id+"/stop", nil)
	if err != nil {
		return nil, err
	}
	return decodeStream(body)
}

// DeleteStream deletes a stream.
func (c *Client) DeleteStream(ctx context.Context, apiKey, id string) error {
	_, err := c.do(ctx, apiKey, http.MethodDelete, "/v1/streams/"+id, nil)
	return err
}

func (c *Client) do(ctx context.Context, apiKey, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveUpstreamRequest(method, time.Since(start))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func decodeStream(data []byte) (*Stream, error) {
	var s Stream
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode stream: %w", err)
	}
	return &s, nil
}

func normalizeList(data []byte) ([]Stream, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Stream
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode stream list: %w", err)
		}
		return list, nil
	}
	var wrapper struct {
		Streams []Stream `json:"streams"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Streams != nil {
		return wrapper.Streams, nil
	}
	single, err := decodeStream(data)
	if err != nil {
		return nil, err
	}
	return []Stream{*single}, nil
}
