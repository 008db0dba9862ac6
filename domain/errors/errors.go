// Package errors provides domain-specific error types for the portal SDK.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/portal-sdk/portal-sdk-go/domain/entities"
)

// CommunicationMessage is the fixed message carried by every transport failure.
const CommunicationMessage = "There was a failure to communicate with the portal"

var (
	// ErrCommunication matches every transport failure.
	ErrCommunication = stdErrors.New("portal communication failed")

	// ErrTransform matches every failure raised while interpreting a response.
	ErrTransform = stdErrors.New("response transform failed")

	// ErrPortal is the default kind produced by an ErrorHandler.
	ErrPortal = stdErrors.New("portal error")

	// ErrLogin, ErrLogout and ErrLoadInfo are the kinds used by higher-level
	// operations to report what the portal refused.
	ErrLogin    = stdErrors.New("login failed")
	ErrLogout   = stdErrors.New("logout failed")
	ErrLoadInfo = stdErrors.New("load info failed")
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is an interface for error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return entities.NewErrorDetail("internal", err.Error())
}

// CommunicationError represents a transport-level failure: connection errors,
// timeouts, unacceptable status codes or content types.
type CommunicationError struct {
	Err        error
	Method     string
	URL        string
	StatusCode int
}

func (e *CommunicationError) Error() string {
	if e.Err == nil {
		return CommunicationMessage
	}
	return fmt.Sprintf("%s: %v", CommunicationMessage, e.Err)
}

// Unwrap exposes both the cause and ErrCommunication.
func (e *CommunicationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCommunication}
	}
	return []error{ErrCommunication, e.Err}
}

// Timeout reports whether the underlying cause was a timeout.
func (e *CommunicationError) Timeout() bool {
	var t interface{ Timeout() bool }
	if stdErrors.As(e.Err, &t) {
		return t.Timeout()
	}
	return false
}

// ToErrorDetail implements DetailedError.
func (e *CommunicationError) ToErrorDetail() *entities.ErrorDetail {
	detail := entities.NewErrorDetail("network", e.Error()).
		WithCode("request_failed").
		WithDetails(map[string]any{"method": e.Method, "url": e.URL})
	var ct *UnsupportedContentTypeError
	switch {
	case e.Timeout():
		detail.Type = "timeout"
		detail.Code = "timeout"
		detail.IsTimeout = true
	case stdErrors.As(e.Err, &ct):
		detail.Type = "content_type"
		detail.Code = "unsupported_content_type"
	case e.StatusCode > 0:
		detail.Code = fmt.Sprintf("http_%d", e.StatusCode)
	}
	return detail
}

// HTTPStatusError reports a response whose status the transport rejects.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d fetching %s", e.StatusCode, e.URL)
}

// UnsupportedContentTypeError reports a non-text response received on a
// request that does not ignore content types.
type UnsupportedContentTypeError struct {
	ContentType string
	URL         string
}

func (e *UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("unhandled content type %q fetching %s", e.ContentType, e.URL)
}

// TransformError represents a failure raised while turning a successful
// response into a domain value. Stack is captured when Panic is set.
type TransformError struct {
	Err   error
	Panic any
	Stack []byte
}

func (e *TransformError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("transform panicked: %v", e.Panic)
	}
	return fmt.Sprintf("transform failed: %v", e.Err)
}

func (e *TransformError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransform}
	}
	return []error{ErrTransform, e.Err}
}

// ToErrorDetail implements DetailedError.
func (e *TransformError) ToErrorDetail() *entities.ErrorDetail {
	detail := entities.NewErrorDetail("transform", e.Error()).WithCode("transform_failed")
	if e.Panic != nil {
		detail.WithCode("transform_panic")
		if len(e.Stack) > 0 {
			detail.WithDetails(map[string]any{"stack": string(e.Stack)})
		}
	}
	if e.Err != nil {
		detail.Wrapped = ToErrorDetail(e.Err)
	}
	return detail
}

// ValidationError represents an invalid Action or configuration value.
type ValidationError struct {
	Err   error
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ValidationError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("validation", e.Error()).
		WithCode(e.Field).
		WithDetails(map[string]any{"field": e.Field})
}

// PortalError is a logical failure reported by the portal itself, such as an
// error page listing rejected fields. Kind identifies the operation.
type PortalError struct {
	Kind    error
	Message string
}

func (e *PortalError) Error() string {
	return e.Message
}

func (e *PortalError) Unwrap() error {
	return e.Kind
}

// ToErrorDetail implements DetailedError.
func (e *PortalError) ToErrorDetail() *entities.ErrorDetail {
	code := ""
	if e.Kind != nil {
		code = e.Kind.Error()
	}
	return entities.NewErrorDetail("portal", e.Message).WithCode(code)
}
