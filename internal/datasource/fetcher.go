package datasource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-page-builder/internal/model"

	"github.com/ohler55/ojg/oj"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// Fetcher retrieves the current payload of an http-api data source.
type Fetcher interface {
	Fetch(ctx context.Context, cfg model.HTTPConfig) (any, error)
}

// HTTPFetcher fetches JSON payloads over HTTP.
type HTTPFetcher struct {
	Client *http.Client
	Logger *slog.Logger
}

// NewHTTPFetcher returns a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	if logger == nil {
		logger = discardLogger()
	}
	return &HTTPFetcher{
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

// Fetch issues the configured request and decodes the JSON response. Query
// params are merged into the URL, the body is only sent for non-GET methods,
// and any non-2xx status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, cfg model.HTTPConfig) (any, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("http config has no url")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", cfg.URL, err)
	}
	if len(cfg.QueryParams) > 0 {
		q := u.Query()
		for k, v := range cfg.QueryParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if method != http.MethodGet && cfg.Body != "" {
		body = bytes.NewBufferString(cfg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := f.Logger
	if logger == nil {
		logger = discardLogger()
	}
	logger.Debug("Fetching data source", "method", method, "url", u.Redacted())

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("Received data source response", "status", resp.Status)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	payload, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	return payload, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
