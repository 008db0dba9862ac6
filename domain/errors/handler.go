package errors

import "strings"

const (
	// handlerSeparator joins the message and the rendered causes.
	handlerSeparator = " :: "
	// handlerDelimiter joins individual causes.
	handlerDelimiter = "; "
	// handlerPlaceholder stands in when no cause was found.
	handlerPlaceholder = "No specific error message"
)

// ErrorFactory creates the error returned by an ErrorHandler.
type ErrorFactory interface {
	CreateError(message string) error
}

// ErrorFactoryFunc adapts a function to ErrorFactory.
type ErrorFactoryFunc func(message string) error

// CreateError calls f(message).
func (f ErrorFactoryFunc) CreateError(message string) error {
	return f(message)
}

// KindFactory returns a factory producing *PortalError values of the given kind.
func KindFactory(kind error) ErrorFactory {
	return ErrorFactoryFunc(func(message string) error {
		return &PortalError{Kind: kind, Message: message}
	})
}

// ErrorHandler renders a message plus the sub-errors found in a portal
// response into a single error.
type ErrorHandler struct {
	factory ErrorFactory
}

// HandlerOption configures an ErrorHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	factory ErrorFactory
	kind    error
}

// WithErrorFactory sets the factory used to create errors.
// It takes precedence over WithErrorKind.
func WithErrorFactory(f ErrorFactory) HandlerOption {
	return func(c *handlerConfig) {
		if f != nil {
			c.factory = f
		}
	}
}

// WithErrorKind sets the kind of the PortalError produced by the default factory.
func WithErrorKind(kind error) HandlerOption {
	return func(c *handlerConfig) {
		if kind != nil {
			c.kind = kind
		}
	}
}

// NewErrorHandler creates an ErrorHandler. Without options it produces
// *PortalError values of kind ErrPortal.
func NewErrorHandler(opts ...HandlerOption) *ErrorHandler {
	cfg := handlerConfig{kind: ErrPortal}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.factory == nil {
		cfg.factory = KindFactory(cfg.kind)
	}
	return &ErrorHandler{factory: cfg.factory}
}

// HandleError builds "message :: e1; e2" from errs, or
// "message :: No specific error message" when errs is empty.
func (h *ErrorHandler) HandleError(message string, errs []string) error {
	detail := handlerPlaceholder
	if len(errs) > 0 {
		detail = strings.Join(errs, handlerDelimiter)
	}
	return h.factory.CreateError(message + handlerSeparator + detail)
}
