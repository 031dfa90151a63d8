package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ Doer = (*http.Client)(nil)

// Client talks to one backend. It holds the session credentials that are
// attached to every request built through it; nothing else is shared between
// calls.
type Client struct {
	baseURL     string
	apiVersion  string
	httpClient  Doer
	jar         http.CookieJar
	credentials CredentialSource
	logger      zerolog.Logger
	requestID   bool

	mu    sync.RWMutex
	token string
	csrf  string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiVersion: DefaultAPIVersion,
		httpClient: &http.Client{ //nolint:exhaustruct
			Timeout: DefaultTimeout,
		},
		jar:         nil,
		credentials: nil,
		logger:      zerolog.Nop(),
		requestID:   false,
		mu:          sync.RWMutex{},
		token:       "",
		csrf:        "",
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.credentials == nil && c.jar != nil {
		if u, err := url.Parse(c.baseURL); err == nil {
			c.credentials = CookieJarSource(c.jar, u)
		}
	}

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// BaseRoute is the base URL followed by the API version prefix.
func (c *Client) BaseRoute() string {
	return c.baseURL + c.apiVersion
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

func (c *Client) SetCSRF(csrf string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.csrf = csrf
}

func (c *Client) CSRF() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.csrf
}

func (c *Client) SetCredentialSource(source CredentialSource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.credentials = source
}

// ResolvedCSRF returns the anti-forgery token the next non-GET request will
// carry: the configured token, else the credential source's.
func (c *Client) ResolvedCSRF() string {
	return c.csrfToken()
}

func (c *Client) csrfToken() string {
	c.mu.RLock()
	csrf, source := c.csrf, c.credentials
	c.mu.RUnlock()

	if csrf != "" {
		return csrf
	}

	if source == nil {
		return ""
	}

	return source.CSRFToken()
}

// URL resolves path against BaseRoute and appends the encoded query.
func (c *Client) URL(path string, query url.Values) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	fullURL := c.BaseRoute() + path

	if len(query) == 0 {
		return fullURL
	}

	return fullURL + "?" + query.Encode()
}

// dispatch performs the network call and returns the response together with
// its fully read body. Raw.Body is replaced with a reader over those bytes.
func (c *Client) dispatch(ctx context.Context, rawURL string, opts RequestOptions) (*http.Response, []byte, error) {
	req, err := c.newRequest(ctx, rawURL, opts)
	if err != nil {
		return nil, nil, err
	}

	withCookies := opts.Credentials == CredentialsInclude && c.jar != nil
	if withCookies {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	body := resp.Body
	defer body.Close()

	if withCookies {
		if cookies := resp.Cookies(); len(cookies) > 0 {
			c.jar.SetCookies(req.URL, cookies)
		}
	}

	bodyBytes, readErr := io.ReadAll(body)
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Int("size", len(bodyBytes)).
		Dur("latency", time.Since(start)).
		Msg("Request completed")

	if readErr != nil {
		return resp, nil, newInvalidResponseError(rawURL)
	}

	return resp, bodyBytes, nil
}
