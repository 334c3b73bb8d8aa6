// Package fetch downloads remote logo assets into the hash-named work
// directory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/matchmint/matchmint/pkg/naming"
)

// Default fetcher configuration constants.
const (
	defaultTimeout  = 15 * time.Second
	defaultMaxBytes = 16 << 20 // bound on a single asset download
)

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithWorkDir sets the directory downloaded assets are written to.
func WithWorkDir(dir string) Option {
	return func(f *Fetcher) {
		if dir != "" {
			f.workDir = dir
		}
	}
}

// WithTimeout sets the per-request timeout for the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithMaxBytes caps the accepted asset size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// Fetcher downloads assets over HTTP(S). Safe for concurrent use.
type Fetcher struct {
	client   *http.Client
	workDir  string
	timeout  time.Duration
	maxBytes int64
}

// New creates a Fetcher with configuration options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		workDir:  os.TempDir(),
		timeout:  defaultTimeout,
		maxBytes: defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

// Fetch issues a GET for url, reads the full body, and writes it to a file
// named by the content digest with a .png extension. Exactly one local file
// is created per successful call; the caller owns its deletion.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: unexpected status %s", ErrFetch, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", fmt.Errorf("%w: asset exceeds %d bytes", ErrFetch, f.maxBytes)
	}

	path := filepath.Join(f.workDir, naming.Filename(naming.Sum64(body), ".png"))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return path, nil
}
