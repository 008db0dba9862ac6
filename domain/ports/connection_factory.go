package ports

import (
	"context"
	"net/http"
	"time"

	"github.com/portal-sdk/portal-sdk-go/domain/entities"
)

// ConnectionFactory builds configured, not-yet-executed connections.
// Implementations must not perform network I/O in CreateConnection.
type ConnectionFactory interface {
	// CreateConnection prepares a request to url carrying the factory's fixed
	// headers. Nil or empty data and cookies are not attached.
	CreateConnection(url string, data map[string]string, cookies map[string]string) (Connection, error)
}

// Connection is a prepared request that can be executed once.
type Connection interface {
	// Request returns the outgoing request as configured so far.
	Request() *http.Request

	// Data returns the form data attached on Execute: as the body for POST
	// and as query parameters otherwise.
	Data() map[string]string

	// Execute sends the request with the given options.
	Execute(ctx context.Context, opts RequestOptions) (*ConnectionResponse, error)
}

// RequestOptions carries method-specific execution options.
type RequestOptions struct {
	Method entities.HTTPMethod

	// Timeout bounds the whole exchange. Zero uses the factory default.
	Timeout time.Duration

	// IgnoreContentType accepts non-text responses.
	IgnoreContentType bool
}

// ConnectionResponse is the raw outcome of an executed connection.
type ConnectionResponse struct {
	Headers       map[string][]string
	Cookies       map[string]string
	StatusMessage string
	URL           string
	Body          []byte
	StatusCode    int

	// Truncated is set when Body was cut at the factory's size limit.
	Truncated bool
}
