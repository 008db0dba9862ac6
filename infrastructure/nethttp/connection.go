package nethttp

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/portal-sdk/portal-sdk-go/domain/entities"
	"github.com/portal-sdk/portal-sdk-go/domain/errors"
	"github.com/portal-sdk/portal-sdk-go/domain/ports"
)

// xmlContentType matches the xml media types accepted alongside text/*.
var xmlContentType = regexp.MustCompile(`^(application|text)/\w*\+?xml`)

// connection is a prepared request. Data placement depends on the method and
// is decided at execution time.
type connection struct {
	factory *ConnectionFactory
	req     *http.Request
	data    map[string]string
	cookies map[string]string
}

// Request returns the prepared request. Data is not yet attached to it.
func (c *connection) Request() *http.Request {
	return c.req
}

// Data returns the form data that will be attached on Execute.
func (c *connection) Data() map[string]string {
	return c.data
}

// hop is the request state for one step of a redirect chain.
type hop struct {
	url    *url.URL
	method string
	form   string
}

// Execute sends the request, following redirects and collecting the cookies
// set along the way. A cookie is only sent to the host it belongs to: the
// connection's cookies to the first hop's host, and cookies set during the
// chain to the host that set them.
func (c *connection) Execute(ctx context.Context, opts ports.RequestOptions) (*ports.ConnectionResponse, error) {
	cfg := c.factory.cfg

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = cfg.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cur := hop{url: c.req.URL, method: string(entities.MethodGet)}
	if opts.Method != "" {
		cur.method = strings.ToUpper(string(opts.Method))
	}
	if len(c.data) > 0 {
		values := make(url.Values, len(c.data))
		for k, v := range c.data {
			values.Set(k, v)
		}
		if cur.method == http.MethodPost {
			cur.form = values.Encode()
		} else {
			u := *cur.url
			q := u.Query()
			for k, v := range values {
				q[k] = append(q[k], v...)
			}
			u.RawQuery = q.Encode()
			cur.url = &u
		}
	}

	jar := map[string]map[string]string{hostKey(cur.url): maps.Clone(c.cookies)}
	collected := make(map[string]string)

	for redirects := 0; ; redirects++ {
		req, err := c.buildRequest(ctx, cur, jar[hostKey(cur.url)])
		if err != nil {
			return nil, err
		}

		resp, err := c.factory.client.Do(req)
		if err != nil {
			return nil, err
		}

		host := hostKey(cur.url)
		for name, value := range responseCookies(resp) {
			collected[name] = value
			if jar[host] == nil {
				jar[host] = make(map[string]string)
			}
			jar[host][name] = value
		}

		location := resp.Header.Get("Location")
		if cfg.maxRedirects > 0 && isRedirect(resp.StatusCode) && location != "" {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()

			if redirects >= cfg.maxRedirects {
				return nil, fmt.Errorf("too many redirects occurred trying to load %s", c.req.URL)
			}
			next, err := cur.url.Parse(location)
			if err != nil {
				return nil, fmt.Errorf("invalid redirect location %q: %w", location, err)
			}
			cur.url = next
			if resp.StatusCode != http.StatusTemporaryRedirect && resp.StatusCode != http.StatusPermanentRedirect {
				cur.method = http.MethodGet
				cur.form = ""
			}
			continue
		}

		return c.finish(resp, opts.IgnoreContentType, collected)
	}
}

// buildRequest creates the request for one hop.
func (c *connection) buildRequest(ctx context.Context, h hop, cookies map[string]string) (*http.Request, error) {
	var body io.Reader
	if h.form != "" {
		body = strings.NewReader(h.form)
	}
	req, err := http.NewRequestWithContext(ctx, h.method, h.url.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header = c.req.Header.Clone()
	if h.form != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	setCookieHeader(req, cookies)
	return req, nil
}

// finish applies the status and content type policy and reads the body.
func (c *connection) finish(resp *http.Response, ignoreContentType bool, cookies map[string]string) (*ports.ConnectionResponse, error) {
	defer func() { _ = resp.Body.Close() }()

	finalURL := resp.Request.URL.String()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &errors.HTTPStatusError{URL: finalURL, StatusCode: resp.StatusCode}
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !ignoreContentType && contentType != "" && !isTextContentType(contentType) {
		return nil, &errors.UnsupportedContentTypeError{ContentType: contentType, URL: finalURL}
	}

	body, truncated, err := readBody(resp, c.factory.cfg.maxBodySize)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &ports.ConnectionResponse{
		StatusCode:    resp.StatusCode,
		StatusMessage: statusMessage(resp),
		Headers:       resp.Header.Clone(),
		Cookies:       cookies,
		URL:           finalURL,
		Body:          body,
		Truncated:     truncated,
	}, nil
}

// hostKey identifies the cookie scope of u.
func hostKey(u *url.URL) string {
	return strings.ToLower(u.Host)
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func isTextContentType(ct string) bool {
	return strings.HasPrefix(ct, "text/") || xmlContentType.MatchString(ct)
}

// responseCookies returns the cookies set by resp. The first occurrence of a
// name wins.
func responseCookies(resp *http.Response) map[string]string {
	out := make(map[string]string)
	for _, ck := range resp.Cookies() {
		if ck.Name == "" {
			continue
		}
		if _, seen := out[ck.Name]; !seen {
			out[ck.Name] = ck.Value
		}
	}
	return out
}

// statusMessage extracts the reason phrase from resp.Status.
func statusMessage(resp *http.Response) string {
	msg := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return msg
}

var _ ports.Connection = (*connection)(nil)
