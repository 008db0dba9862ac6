// Package communicator sends validated Actions through a portal session and
// maps the responses into caller-defined values.
package communicator

import (
	"context"
	"runtime/debug"

	"github.com/portal-sdk/portal-sdk-go/application/session"
	"github.com/portal-sdk/portal-sdk-go/application/validation"
	"github.com/portal-sdk/portal-sdk-go/domain/entities"
	"github.com/portal-sdk/portal-sdk-go/domain/errors"
	"github.com/portal-sdk/portal-sdk-go/domain/ports"
)

// Option is a functional option for configuring a Communicator.
type Option func(*Communicator)

// WithSession sets the session requests are sent through.
func WithSession(s ports.Session) Option {
	return func(c *Communicator) {
		if s != nil {
			c.session = s
		}
	}
}

// Communicator dispatches Actions to a session. It shares the session's
// cookie state and concurrency limits.
type Communicator struct {
	session ports.Session
}

// NewCommunicator creates a Communicator. Without WithSession it owns a fresh
// session.NewSession().
func NewCommunicator(opts ...Option) *Communicator {
	c := &Communicator{}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == nil {
		c.session = session.NewSession()
	}
	return c
}

// Session returns the underlying session.
func (c *Communicator) Session() ports.Session {
	return c.session
}

// Send validates action and dispatches it. POST actions go through
// Session.Post, which ignores Timeout and IgnoreContentType; everything else,
// including an action with no Method, is a GET with the action's settings.
func (c *Communicator) Send(ctx context.Context, action entities.Action) entities.Result[*entities.HTTPResponse] {
	if err := validation.Action(action); err != nil {
		return entities.Failure[*entities.HTTPResponse](err)
	}
	if action.IsPost() {
		return c.session.Post(ctx, action.URL, action.Data)
	}
	return c.session.Get(ctx, action.URL, action.Data, action.IgnoreContentType, action.Timeout)
}

// PerformRequest sends action and applies transform to a successful response.
// Communication failures propagate unchanged. An error returned by transform,
// or a panic inside it, becomes a *errors.TransformError.
func PerformRequest[T any](ctx context.Context, c *Communicator, action entities.Action, transform func(*entities.HTTPResponse) (T, error)) entities.Result[T] {
	return entities.MapResult(c.Send(ctx, action), func(resp *entities.HTTPResponse) (v T, err error) {
		defer func() {
			if p := recover(); p != nil {
				err = &errors.TransformError{Panic: p, Stack: debug.Stack()}
			}
		}()
		v, err = transform(resp)
		if err != nil {
			return v, &errors.TransformError{Err: err}
		}
		return v, nil
	})
}

// PerformURLRequest is PerformRequest for a plain GET of url with default
// settings.
func PerformURLRequest[T any](ctx context.Context, c *Communicator, url string, transform func(*entities.HTTPResponse) (T, error)) entities.Result[T] {
	return PerformRequest(ctx, c, entities.NewAction(url), transform)
}

var _ ports.Communicator = (*Communicator)(nil)
