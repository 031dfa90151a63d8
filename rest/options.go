package rest

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultAPIVersion = "/api/v1"

	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderCSRFToken     = "X-CSRF-Token"
	HeaderRequestedWith = "X-Requested-With"
	HeaderXRequestID    = "X-Request-ID"

	BearerScheme    = "BEARER"
	RequestedWith   = "XMLHttpRequest"
	ContentTypeJSON = "application/json"

	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
	CSRFCookieName  = "KGCSRF"
)

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if httpClient, ok := c.httpClient.(*http.Client); ok {
			httpClient.Timeout = timeout
		}
	}
}

func WithHTTPClient(httpClient Doer) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRestyClient dispatches through the *http.Client owned by a resty client,
// so its transport, proxy and TLS settings apply to every call.
func WithRestyClient(restyClient *resty.Client) Option {
	return func(c *Client) {
		if restyClient != nil {
			c.httpClient = restyClient.GetClient()
		}
	}
}

func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithCSRF(csrf string) Option {
	return func(c *Client) {
		c.csrf = csrf
	}
}

// WithCredentialSource sets where the anti-forgery token is read from when no
// explicit value is configured.
func WithCredentialSource(source CredentialSource) Option {
	return func(c *Client) {
		c.credentials = source
	}
}

// WithCookieJar attaches jar cookies to requests built with CredentialsInclude
// and stores cookies set by the server. Unless another source is configured,
// the KGCSRF cookie in the jar becomes the anti-forgery token source.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.jar = jar
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestID tags every dispatched request with a fresh X-Request-ID unless
// the caller supplied one.
func WithRequestID() Option {
	return func(c *Client) {
		c.requestID = true
	}
}
