package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a running NetPath server.
type Client struct {
	baseURL    string
	token      string
	routes     Routes
	httpClient *http.Client
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		baseURL: "http://localhost:8000",
		timeout: 45 * time.Second,
		routes:  DefaultRoutes(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.baseURL, "/"),
		token:      cfg.token,
		routes:     cfg.routes,
		httpClient: hc,
	}, nil
}

// Ask sends a question. userID may be empty.
func (c *Client) Ask(ctx context.Context, question, userID string) (*Answer, error) {
	var out Answer
	body := map[string]string{"question": question}
	if userID != "" {
		body["user_id"] = userID
	}
	if err := c.do(ctx, http.MethodPost, c.routes.Ask, body, &out); err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}
	return &out, nil
}

// Teach adds or overwrites a canned answer.
func (c *Client) Teach(ctx context.Context, question, answer string) (*TeachResult, error) {
	var out TeachResult
	body := map[string]string{"question": question, "answer": answer}
	if err := c.do(ctx, http.MethodPost, c.routes.Teach, body, &out); err != nil {
		return nil, fmt.Errorf("teach: %w", err)
	}
	return &out, nil
}

// Knowledge returns the server's whole knowledge base.
func (c *Client) Knowledge(ctx context.Context) (*KnowledgeDump, error) {
	var out KnowledgeDump
	if err := c.do(ctx, http.MethodGet, c.routes.Knowledge, nil, &out); err != nil {
		return nil, fmt.Errorf("knowledge: %w", err)
	}
	return &out, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return &out, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = apiErr.Message
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}
