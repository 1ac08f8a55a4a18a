// Package completion talks to an OpenAI-compatible chat completion API
// (Perplexity by default) and caches per-project clients.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrEmptyResponse = errors.New("completion response has no choices")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type Response struct {
	Model   string
	Content string
}

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion api returned status %d: %s", e.Status, e.Body)
}

type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

type HTTPClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

const defaultTimeout = 60 * time.Second

func NewHTTPClient(endpoint, apiKey string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPClient{endpoint: endpoint, apiKey: apiKey, http: hc}
}

type wireResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *HTTPClient) Complete(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(wr.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return &Response{Model: wr.Model, Content: wr.Choices[0].Message.Content}, nil
}
