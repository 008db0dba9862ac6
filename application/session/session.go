// Package session provides the cookie-aware portal session.
package session

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/portal-sdk/portal-sdk-go/domain/entities"
	"github.com/portal-sdk/portal-sdk-go/domain/errors"
	"github.com/portal-sdk/portal-sdk-go/domain/ports"
	"github.com/portal-sdk/portal-sdk-go/infrastructure/nethttp"
	sdklog "github.com/portal-sdk/portal-sdk-go/log"
)

// DefaultTimeout is the GET timeout used by callers that have no preference.
const DefaultTimeout = entities.DefaultTimeout

// Option is a functional option for configuring a DefaultSession.
type Option func(*sessionConfig)

type sessionConfig struct {
	factory ports.ConnectionFactory
	logger  *slog.Logger
}

// WithConnectionFactory sets the factory used to build connections.
// This is useful for injecting fakes during testing.
func WithConnectionFactory(f ports.ConnectionFactory) Option {
	return func(c *sessionConfig) {
		if f != nil {
			c.factory = f
		}
	}
}

// WithLogger sets the logger exchanges are reported to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *sessionConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// DefaultSession keeps the portal's cookies across requests.
//
// A DefaultSession is not safe for concurrent use. Callers that need
// concurrent requests must serialize access or use one session per line of
// work, in which case cookies are not shared.
type DefaultSession struct {
	factory ports.ConnectionFactory
	logger  *slog.Logger
	cookies entities.CookieStore
}

// NewSession creates a session with an empty cookie store. Without options it
// uses the net/http connection factory and discards logs.
func NewSession(opts ...Option) *DefaultSession {
	cfg := sessionConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.factory == nil {
		cfg.factory = nethttp.NewConnectionFactory()
	}
	if cfg.logger == nil {
		cfg.logger = sdklog.Discard()
	}
	return &DefaultSession{
		factory: cfg.factory,
		logger:  cfg.logger,
		cookies: entities.NewCookieStore(),
	}
}

// Get performs a GET to url. params are sent as query parameters. A zero
// timeout uses the factory default.
func (s *DefaultSession) Get(ctx context.Context, url string, params map[string]string, ignoreContentType bool, timeout time.Duration) entities.Result[*entities.HTTPResponse] {
	return s.execute(ctx, url, params, ports.RequestOptions{
		Method:            entities.MethodGet,
		Timeout:           timeout,
		IgnoreContentType: ignoreContentType,
	})
}

// Post performs a form POST to url with transport defaults.
func (s *DefaultSession) Post(ctx context.Context, url string, data map[string]string) entities.Result[*entities.HTTPResponse] {
	return s.execute(ctx, url, data, ports.RequestOptions{Method: entities.MethodPost})
}

// Cookies returns a copy of the cookie store.
func (s *DefaultSession) Cookies() map[string]string {
	return s.cookies.Snapshot()
}

// execute builds a connection seeded with the current cookies, runs it and
// folds the returned cookies into the store. The store is only touched on
// success.
func (s *DefaultSession) execute(ctx context.Context, url string, data map[string]string, opts ports.RequestOptions) entities.Result[*entities.HTTPResponse] {
	fail := func(err error) entities.Result[*entities.HTTPResponse] {
		commErr := &errors.CommunicationError{Method: string(opts.Method), URL: url, Err: err}
		var statusErr *errors.HTTPStatusError
		if stdErrors.As(err, &statusErr) {
			commErr.StatusCode = statusErr.StatusCode
		}
		s.logger.DebugContext(ctx, "portal request failed",
			"method", opts.Method, "url", url, "timeout", commErr.Timeout(), "error", err)
		return entities.Failure[*entities.HTTPResponse](commErr)
	}

	conn, err := s.factory.CreateConnection(url, data, s.cookies.Snapshot())
	if err != nil {
		return fail(err)
	}

	s.logger.DebugContext(ctx, "portal request",
		"method", opts.Method, "url", url, sdklog.Fields("data", data))

	raw, err := conn.Execute(ctx, opts)
	if err != nil {
		return fail(err)
	}

	s.cookies.Merge(raw.Cookies)

	s.logger.DebugContext(ctx, "portal response",
		"method", opts.Method, "url", url, "status", raw.StatusCode,
		"bytes", len(raw.Body), "truncated", raw.Truncated, "cookie_names", slices.Sorted(maps.Keys(raw.Cookies)))

	return entities.Success(&entities.HTTPResponse{
		StatusCode:    raw.StatusCode,
		StatusMessage: raw.StatusMessage,
		Content:       raw.Body,
		Cookies:       maps.Clone(raw.Cookies),
		Headers:       raw.Headers,
		URL:           raw.URL,
	})
}

var _ ports.Session = (*DefaultSession)(nil)
