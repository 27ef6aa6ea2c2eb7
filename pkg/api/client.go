package api

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

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "http://localhost:8000/api/v1"
	defaultUserAgent = "novels/0.1"
	requestTimeout   = 15 * time.Second
)

// Client talks to the novels REST backend. When the token store holds an
// access token it is sent as a bearer credential on every request.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    data.TokenStore
	userAgent string
	logger    *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func NewClient(baseURL string, tokens data.TokenStore, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = data.NewMemoryTokens()
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		tokens:    tokens,
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Tokens() data.TokenStore { return c.tokens }

func (c *Client) BaseURL() string { return c.baseURL.String() }

func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", dest)
}

func (c *Client) Post(ctx context.Context, path string, body, dest any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, dest)
}

func (c *Client) Put(ctx context.Context, path string, body, dest any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, dest)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "", nil)
}

// PostForm sends an application/x-www-form-urlencoded body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, dest any) error {
	body := strings.NewReader(form.Encode())
	return c.do(ctx, http.MethodPost, path, nil, body, "application/x-www-form-urlencoded", dest)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	return c.do(ctx, method, path, nil, reader, "application/json", dest)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, dest any) error {
	reqURL := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" && body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens.HasAccessToken() {
		if tokens, err := c.tokens.Tokens(); err == nil && tokens.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)),
	)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return &Error{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Detail: parseDetail(payload),
		}
	}
	if dest == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = DefaultBaseURL
	}
	if !strings.Contains(value, "://") {
		value = "http://" + value
	}
	u, err := url.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url: missing host in %q", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
