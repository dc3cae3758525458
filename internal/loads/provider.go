// Package loads reads raw load records from the configured source and
// normalizes them into model.Load values.
package loads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"freight-ops-backend/config"
	"freight-ops-backend/internal/model"
)

// ErrUnsupportedSource is returned by New for an unknown loads.source.
var ErrUnsupportedSource = errors.New("unsupported loads source")

// Provider yields the current set of loads.
type Provider interface {
	Loads(ctx context.Context) ([]model.Load, error)
}

// New builds the Provider selected by cfg.Source.
func New(cfg config.LoadsConfig) (Provider, error) {
	switch cfg.Source {
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("loads.path is required for the file source")
		}
		return &FileProvider{Path: cfg.Path}, nil
	case "http":
		if cfg.URL == "" {
			return nil, fmt.Errorf("loads.url is required for the http source")
		}
		return NewHTTPProvider(cfg.URL, cfg.Headers, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, cfg.Source)
	}
}

// FileProvider reads a JSON array of raw records from disk on every call.
type FileProvider struct {
	Path string
}

// Loads implements Provider.
func (p *FileProvider) Loads(ctx context.Context) ([]model.Load, error) {
	body, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read loads file %q: %w", p.Path, err)
	}
	return decode(body)
}

// HTTPProvider fetches raw records from an upstream TMS endpoint.
type HTTPProvider struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewHTTPProvider creates a provider that GETs url with the given headers.
func NewHTTPProvider(url string, headers map[string]string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: timeout},
	}
}

// Loads implements Provider.
func (p *HTTPProvider) Loads(ctx context.Context) ([]model.Load, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range p.headers {
		req.Header.Set(key, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return decode(body)
}

// envelope is the wrapped upstream shape: {"loads": [...]}.
type envelope struct {
	Loads *[]map[string]any `json:"loads"`
}

// decode accepts either a bare array of records or an envelope.
func decode(body []byte) ([]model.Load, error) {
	var raws []map[string]any
	if err := json.Unmarshal(body, &raws); err != nil {
		var env envelope
		if envErr := json.Unmarshal(body, &env); envErr != nil {
			return nil, fmt.Errorf("failed to unmarshal loads: %w", err)
		}
		if env.Loads == nil {
			return nil, errors.New("response has no loads array")
		}
		raws = *env.Loads
	}

	out := make([]model.Load, 0, len(raws))
	for i, raw := range raws {
		l, err := Normalize(raw)
		if err != nil {
			log.Printf("Skipping load record %d: %v", i, err)
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
