// Package client implements the HTTP side of the Git smart transport: ref
// discovery over GET info/refs and pack retrieval over POST
// git-upload-pack.
package client

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// defaultUserAgent identifies this client on the wire when no override is
// configured.
const defaultUserAgent = "microgit/0"

// Option configures a RawClient.
type Option func(*RawClient) error

// RawClient speaks the smart HTTP transport (protocol v0 discovery, v1
// negotiation) against a single repository URL.
type RawClient struct {
	// Base URL of the Git repository.
	base *url.URL
	// HTTP client used for making requests.
	client *http.Client
	// User-Agent header value for requests.
	userAgent string
}

// NewRawClient creates a transport client for the given repository URL.
// Only HTTP and HTTPS URLs are supported; a trailing slash or ".git" suffix
// is tolerated.
func NewRawClient(repo string, options ...Option) (*RawClient, error) {
	if repo == "" {
		return nil, errors.New("repository URL cannot be empty")
	}

	u, err := url.Parse(repo)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("only HTTP and HTTPS URLs are supported")
	}

	u.Path = strings.TrimRight(u.Path, "/")

	c := &RawClient{
		base:   u,
		client: &http.Client{},
	}

	for _, option := range options {
		if option == nil { // allow for easy optional options
			continue
		}
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// addDefaultHeaders adds the default headers to the request.
func (c *RawClient) addDefaultHeaders(req *http.Request) {
	ua := c.userAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Add("User-Agent", ua)
}

// UserAgent returns the agent string the client sends, which is also
// declared in the upload-pack capability list.
func (c *RawClient) UserAgent() string {
	if c.userAgent == "" {
		return defaultUserAgent
	}
	return c.userAgent
}

// WithUserAgent configures a custom User-Agent header for HTTP requests.
func WithUserAgent(agent string) Option {
	return func(c *RawClient) error {
		c.userAgent = agent
		return nil
	}
}

// WithHTTPClient configures a custom HTTP client, allowing timeouts,
// proxies and transport settings to be customized. The client must not be
// nil.
func WithHTTPClient(client *http.Client) Option {
	return func(c *RawClient) error {
		if client == nil {
			return errors.New("httpClient is nil")
		}
		c.client = client
		return nil
	}
}
