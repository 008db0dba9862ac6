// Package nethttp implements the default ConnectionFactory on top of net/http.
package nethttp

import (
	"crypto/tls"
	"maps"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/portal-sdk/portal-sdk-go/application/config"
	"github.com/portal-sdk/portal-sdk-go/domain/ports"
)

// Option is a functional option for configuring a ConnectionFactory.
type Option func(*factoryConfig)

type factoryConfig struct {
	headers      map[string]string
	client       *http.Client
	tlsConfig    *tls.Config
	userAgent    string
	timeout      time.Duration
	maxBodySize  int64
	maxRedirects int
}

// defaultFactoryConfig mirrors config.Default.
func defaultFactoryConfig() factoryConfig {
	return fromConfig(config.Default())
}

func fromConfig(c *config.Config) factoryConfig {
	cfg := factoryConfig{
		headers:      maps.Clone(c.Headers),
		userAgent:    c.UserAgent,
		timeout:      c.Timeout,
		maxBodySize:  c.MaxBodySize,
		maxRedirects: c.MaxRedirects,
	}
	if c.InsecureSkipVerify {
		cfg.tlsConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed portals
	}
	return cfg
}

// WithConfig replaces every setting with the values of c.
// Apply it before other options.
func WithConfig(c *config.Config) Option {
	return func(cfg *factoryConfig) {
		if c == nil {
			return
		}
		client := cfg.client
		*cfg = fromConfig(c)
		cfg.client = client
	}
}

// WithUserAgent sets the User-Agent header. Empty values are ignored.
func WithUserAgent(ua string) Option {
	return func(c *factoryConfig) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeaders merges h over the baseline headers.
func WithHeaders(h map[string]string) Option {
	return func(c *factoryConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string, len(h))
		}
		maps.Copy(c.headers, h)
	}
}

// WithDefaultTimeout sets the timeout used when a request specifies none.
// A zero or negative duration is ignored.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *factoryConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxRedirects sets the maximum number of redirects to follow.
// Setting to 0 disables following redirects. Negative values are ignored.
func WithMaxRedirects(n int) Option {
	return func(c *factoryConfig) {
		if n >= 0 {
			c.maxRedirects = n
		}
	}
}

// WithMaxBodySize sets the maximum decoded response body size.
func WithMaxBodySize(size int64) Option {
	return func(c *factoryConfig) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithTLSConfig sets a custom TLS configuration for the default transport.
func WithTLSConfig(t *tls.Config) Option {
	return func(c *factoryConfig) {
		c.tlsConfig = t
	}
}

// WithHTTPClient uses a copy of client to send requests. Its Jar and
// CheckRedirect are replaced: cookies and redirects are handled by the
// connection.
func WithHTTPClient(client *http.Client) Option {
	return func(c *factoryConfig) {
		if client != nil {
			c.client = client
		}
	}
}

// ConnectionFactory builds net/http backed connections.
type ConnectionFactory struct {
	client *http.Client
	cfg    factoryConfig
}

// NewConnectionFactory creates a factory. Without options it sends the
// default user agent and headers, times out after 30 seconds, follows up to
// 20 redirects and keeps at most 10MB of body.
func NewConnectionFactory(opts ...Option) *ConnectionFactory {
	cfg := defaultFactoryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ConnectionFactory{
		client: createHTTPClient(cfg),
		cfg:    cfg,
	}
}

// createHTTPClient returns a client that never follows redirects or stores
// cookies on its own.
func createHTTPClient(cfg factoryConfig) *http.Client {
	var client http.Client
	if cfg.client != nil {
		client = *cfg.client
	} else {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = cfg.tlsConfig
		client.Transport = transport
	}
	client.Jar = nil
	client.Timeout = 0
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &client
}

// CreateConnection implements ports.ConnectionFactory. No I/O happens here.
func (f *ConnectionFactory) CreateConnection(rawURL string, data, cookies map[string]string) (ports.Connection, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.cfg.userAgent)
	for k, v := range f.cfg.headers {
		req.Header.Set(k, v)
	}

	conn := &connection{
		factory: f,
		req:     req,
		cookies: make(map[string]string, len(cookies)),
	}
	if len(data) > 0 {
		conn.data = maps.Clone(data)
	}
	maps.Copy(conn.cookies, cookies)
	setCookieHeader(req, conn.cookies)

	return conn, nil
}

// setCookieHeader replaces the Cookie header with cookies sorted by name.
func setCookieHeader(req *http.Request, cookies map[string]string) {
	req.Header.Del("Cookie")
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		req.AddCookie(&http.Cookie{Name: name, Value: cookies[name]})
	}
}

var _ ports.ConnectionFactory = (*ConnectionFactory)(nil)
