package config

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/oseducation/kgrest/rest"
	"github.com/oseducation/kgrest/validator"
	"github.com/rs/zerolog"
)

type Config struct {
	// Application
	LogLevel   string `env:"LOG_LEVEL"   envDefault:"info"  validate:"oneof=trace debug info warn warning error fatal panic disabled off"`
	LogConsole bool   `env:"LOG_CONSOLE" envDefault:"true"`

	// Backend API
	APIURL      string        `env:"KG_API_URL"      validate:"required,http_url"`
	APIVersion  string        `env:"KG_API_VERSION"  envDefault:"/api/v1" validate:"omitempty,startswith=/"`
	HTTPTimeout time.Duration `env:"KG_HTTP_TIMEOUT" envDefault:"30s"     validate:"gt=0"`
	RequestID   bool          `env:"KG_REQUEST_ID"   envDefault:"false"`

	// Session credentials
	Token  string `env:"KG_TOKEN"`
	CSRF   string `env:"KG_CSRF"`
	Cookie string `env:"KG_COOKIE"`
}

func New() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Validate(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// ClientOptions translates the backend settings into rest client options.
// KG_COOKIE is a raw "name=value; name=value" cookie string loaded into the
// client's cookie jar for KG_API_URL, so the cookies go out with every request
// and its KGCSRF cookie is the anti-forgery token when KG_CSRF is empty.
func (c *Config) ClientOptions(logger zerolog.Logger) ([]rest.Option, error) {
	opts := []rest.Option{
		rest.WithAPIVersion(c.APIVersion),
		rest.WithTimeout(c.HTTPTimeout),
		rest.WithToken(c.Token),
		rest.WithCSRF(c.CSRF),
		rest.WithLogger(logger),
	}

	if c.Cookie != "" {
		jar, err := c.cookieJar()
		if err != nil {
			return nil, err
		}

		opts = append(opts, rest.WithCookieJar(jar))
	}

	if c.RequestID {
		opts = append(opts, rest.WithRequestID())
	}

	return opts, nil
}

func (c *Config) cookieJar() (http.CookieJar, error) {
	apiURL, err := url.Parse(c.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid KG_API_URL: %w", err)
	}

	cookies, err := http.ParseCookie(c.Cookie)
	if err != nil {
		return nil, fmt.Errorf("invalid KG_COOKIE: %w", err)
	}

	for _, cookie := range cookies {
		cookie.Path = "/"
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	jar.SetCookies(apiURL, cookies)

	return jar, nil
}
