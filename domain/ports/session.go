package ports

import (
	"context"
	"time"

	"github.com/portal-sdk/portal-sdk-go/domain/entities"
)

// Session sends requests to the portal while persisting cookies between calls.
// A Session is not safe for concurrent use.
type Session interface {
	// Get performs a GET. params are sent as query parameters.
	Get(ctx context.Context, url string, params map[string]string, ignoreContentType bool, timeout time.Duration) entities.Result[*entities.HTTPResponse]

	// Post performs a form POST with transport defaults.
	Post(ctx context.Context, url string, data map[string]string) entities.Result[*entities.HTTPResponse]

	// Cookies returns a copy of the current cookie store.
	Cookies() map[string]string
}

// Communicator dispatches Actions to a Session.
type Communicator interface {
	// Send executes action and returns the raw response.
	Send(ctx context.Context, action entities.Action) entities.Result[*entities.HTTPResponse]
}
