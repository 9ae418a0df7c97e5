package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type Config struct {
	BaseURL           string
	APIKey            string
	ChatModel         string
	EmbeddingModel    string
	EmbeddingDim      int
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	// Temperature is sent with chat requests; a negative value omits it.
	Temperature       float64
}

// Client talks to an OpenAI-compatible API. All calls share one rate limiter.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.EmbeddingDim <= 0 {
		cfg.EmbeddingDim = 1536
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, cfg.Burst),
	}
}

func (c *Client) Dimension() int {
	return c.cfg.EmbeddingDim
}

func (c *Client) send(ctx context.Context, path string, body any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait rate limiter failed: %w", err)
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request failed: %w", path, err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build %s request failed: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", path, err)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	resp, err := c.send(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response failed: %w", path, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s status %d: %s", ErrUpstream, path, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s json failed: %w", path, err)
	}
	return nil
}
