package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jestfail/internal/logging"
)

// Option configures a platform client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets a timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d < 0 {
			return fmt.Errorf("timeout must not be negative")
		}
		cfg.timeout = d
		return nil
	}
}

// api is the HTTP plumbing shared by the platform clients.
type api struct {
	baseURL    string
	token      string
	accept     string
	httpClient *http.Client
	logger     *slog.Logger
}

func newAPI(baseURL, token, accept string, opts []Option) (*api, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("sink: base URL is required")
	}

	cfg := &clientConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.timeout > 0 {
		c := *httpClient
		c.Timeout = cfg.timeout
		httpClient = &c
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &api{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		accept:     accept,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// errorBody covers both GitHub ({"message"}) and Bitbucket Server
// ({"errors":[{"message"}]}) error payloads.
type errorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	msgs := make([]string, 0, len(b.Errors))
	for _, e := range b.Errors {
		if e.Message != "" {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}

// doJSON sends payload as JSON and decodes the response into dst. Non-2xx
// responses become *APIError.
func (a *api) doJSON(ctx context.Context, method, url, operation string, payload, dst any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	if a.accept != "" {
		req.Header.Set("Accept", a.accept)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	a.logger.InfoContext(ctx, "API request", "operation", operation, "method", method, "url", url)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	a.logger.DebugContext(ctx, "API response", "operation", operation, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil && eb.text() != "" {
			return newAPIError(operation, resp.StatusCode, eb.text())
		}
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = resp.Status
		}
		return newAPIError(operation, resp.StatusCode, msg)
	}

	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("%s: decode response: %w", operation, err)
		}
	}
	return nil
}
