// Package ipfs publishes byte streams to the IPFS HTTP API and renders
// gateway URLs for the returned content addresses.
package ipfs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
)

// Default client configuration constants.
const (
	defaultAPIURL  = "https://ipfs.infura.io:5001"
	defaultGateway = "https://ipfs.io"
	defaultTimeout = 60 * time.Second
)

// Publisher hands a byte stream to content-addressed storage and returns the
// resulting content address.
type Publisher interface {
	Publish(ctx context.Context, r io.Reader) (string, error)
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithAPIURL sets the storage API endpoint.
func WithAPIURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.apiURL = url
		}
	}
}

// WithCredentials sets the basic-auth credentials sent to the API.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithGateway sets the public gateway base used for fetchable URLs.
func WithGateway(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.gateway = base
		}
	}
}

// WithTimeout sets the timeout for the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// Client publishes over the IPFS HTTP API. The underlying shell is a
// stateless HTTP client, safe to share across concurrent requests.
type Client struct {
	sh         *shell.Shell
	httpClient *http.Client

	apiURL   string
	gateway  string
	username string
	password string
	timeout  time.Duration
}

// New creates a Client with configuration options.
func New(opts ...Option) *Client {
	c := &Client{
		apiURL:  defaultAPIURL,
		gateway: defaultGateway,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.username != "" || c.password != "" {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.httpClient = &http.Client{
			Timeout: c.httpClient.Timeout,
			Transport: &basicAuthTransport{
				base:     base,
				username: c.username,
				password: c.password,
			},
		}
	}

	c.sh = shell.NewShellWithClient(c.apiURL, c.httpClient)
	return c
}

// Publish adds the stream, pinned, and returns its content address. The
// operation is bounded by the HTTP client timeout rather than ctx; ctx is
// part of the Publisher contract for implementations that support it.
func (c *Client) Publish(_ context.Context, r io.Reader) (string, error) {
	cid, err := c.sh.Add(r, shell.Pin(true))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return cid, nil
}

// GatewayURL renders the fetchable URL for a content address.
func (c *Client) GatewayURL(cid string) string {
	return GatewayURL(c.gateway, cid)
}

// GatewayURL renders "{gateway}/ipfs/{cid}".
func GatewayURL(gateway, cid string) string {
	return strings.TrimSuffix(gateway, "/") + "/ipfs/" + cid
}

// basicAuthTransport attaches basic-auth credentials to every request.
type basicAuthTransport struct {
	base     http.RoundTripper
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	authed := req.Clone(req.Context())
	authed.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(authed)
}
