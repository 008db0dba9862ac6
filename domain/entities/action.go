package entities

import "time"

// HTTPMethod is the request method of an Action.
type HTTPMethod string

const (
	// MethodGet sends the Action's data as query parameters.
	MethodGet HTTPMethod = "GET"

	// MethodPost sends the Action's data as an urlencoded form body.
	MethodPost HTTPMethod = "POST"
)

// DefaultTimeout is the GET timeout used when none is given.
const DefaultTimeout = 30 * time.Second

// Action describes one logical request to the portal.
// Actions are built by callers and consumed once by a communicator.
type Action struct {
	// Data holds form fields. They are attached as the body for POST and as
	// query parameters for GET.
	Data map[string]string `json:"data,omitempty"`

	// URL is the absolute target URL.
	URL string `json:"url" validate:"required"`

	// Method is GET or POST. Empty means GET.
	Method HTTPMethod `json:"method,omitempty" validate:"omitempty,oneof=GET POST"`

	// Timeout bounds a GET exchange. POST uses the transport default.
	Timeout time.Duration `json:"timeout" validate:"gte=0"`

	// IgnoreContentType accepts non-text responses on GET.
	IgnoreContentType bool `json:"ignore_content_type,omitempty"`
}

// ActionOption is a functional option for building an Action.
type ActionOption func(*Action)

// WithData sets the form data of the action.
func WithData(data map[string]string) ActionOption {
	return func(a *Action) {
		a.Data = data
	}
}

// WithMethod sets the request method.
func WithMethod(m HTTPMethod) ActionOption {
	return func(a *Action) {
		a.Method = m
	}
}

// WithIgnoreContentType controls whether non-text responses are accepted.
func WithIgnoreContentType(ignore bool) ActionOption {
	return func(a *Action) {
		a.IgnoreContentType = ignore
	}
}

// WithTimeout sets the request timeout. A zero or negative duration is ignored.
func WithTimeout(d time.Duration) ActionOption {
	return func(a *Action) {
		if d > 0 {
			a.Timeout = d
		}
	}
}

// NewAction creates a GET Action for url with a 30 second timeout,
// then applies opts.
func NewAction(url string, opts ...ActionOption) Action {
	a := Action{
		URL:     url,
		Method:  MethodGet,
		Timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// IsPost reports whether the action is sent as POST.
func (a Action) IsPost() bool {
	return a.Method == MethodPost
}
