package entities

import (
	"mime"
	"net/http"
)

// HTTPResponse is an immutable snapshot of one portal exchange.
type HTTPResponse struct {
	// Cookies holds the cookies set by the server during this exchange,
	// including those set along a redirect chain.
	Cookies map[string]string `json:"cookies,omitempty"`

	// Headers contains the response headers of the final hop.
	Headers map[string][]string `json:"headers,omitempty"`

	// StatusMessage is the reason phrase, e.g. "OK".
	StatusMessage string `json:"status_message"`

	// URL is the final URL after redirects.
	URL string `json:"url,omitempty"`

	// Content is the decoded response body.
	Content []byte `json:"content,omitempty"`

	// StatusCode is the HTTP status code.
	StatusCode int `json:"status_code"`
}

// Text returns the body as a string.
func (r *HTTPResponse) Text() string {
	return string(r.Content)
}

// ContentType returns the media type of the response without parameters.
func (r *HTTPResponse) ContentType() string {
	ct := http.Header(r.Headers).Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mt
}
