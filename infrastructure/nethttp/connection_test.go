package nethttp

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	stdErrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal-sdk/portal-sdk-go/application/config"
	"github.com/portal-sdk/portal-sdk-go/domain/entities"
	"github.com/portal-sdk/portal-sdk-go/domain/errors"
	"github.com/portal-sdk/portal-sdk-go/domain/ports"
)

func execute(t *testing.T, f *ConnectionFactory, url string, data, cookies map[string]string, opts ports.RequestOptions) (*ports.ConnectionResponse, error) {
	t.Helper()
	conn, err := f.CreateConnection(url, data, cookies)
	require.NoError(t, err)
	return conn.Execute(context.Background(), opts)
}

func TestCreateConnection_NoIO(t *testing.T) {
	f := NewConnectionFactory()

	conn, err := f.CreateConnection("https://portal.invalid/login",
		map[string]string{"username": "a"},
		map[string]string{"b": "2", "a": "1"},
	)
	require.NoError(t, err)

	req := conn.Request()
	assert.Equal(t, config.DefaultUserAgent, req.Header.Get("User-Agent"))
	assert.Equal(t, "gzip, deflate, br", req.Header.Get("Accept-Encoding"))
	assert.Equal(t, "es-MX,es;q=0.8,en-US;q=0.5,en;q=0.3", req.Header.Get("Accept-Language"))
	assert.Equal(t, "a=1; b=2", req.Header.Get("Cookie"))
	assert.Equal(t, map[string]string{"username": "a"}, conn.Data())
}

func TestCreateConnection_EmptyDataAndCookies(t *testing.T) {
	conn, err := NewConnectionFactory().CreateConnection("https://portal.invalid/", map[string]string{}, nil)
	require.NoError(t, err)

	assert.Nil(t, conn.Data())
	assert.Empty(t, conn.Request().Header.Get("Cookie"))
}

func TestCreateConnection_InvalidURL(t *testing.T) {
	_, err := NewConnectionFactory().CreateConnection("://bad", nil, nil)
	assert.Error(t, err)
}

func TestExecute_GetWithParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "x", r.URL.Query().Get("keep"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, "<html>ok</html>")
	}))
	defer srv.Close()

	resp, err := execute(t, NewConnectionFactory(), srv.URL+"/list?keep=x", map[string]string{"page": "1"}, nil, ports.RequestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.StatusMessage)
	assert.Equal(t, "<html>ok</html>", string(resp.Body))
	assert.Empty(t, resp.Cookies)
}

func TestExecute_PostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "a", r.PostForm.Get("user"))
		assert.Equal(t, "b", r.PostForm.Get("pass"))
		assert.Empty(t, r.URL.RawQuery)
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "123"})
		w.Header().Set("Content-Type", "text/html")
	}))
	defer srv.Close()

	resp, err := execute(t, NewConnectionFactory(), srv.URL+"/login",
		map[string]string{"user": "a", "pass": "b"}, nil,
		ports.RequestOptions{Method: entities.MethodPost})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"sid": "123"}, resp.Cookies)
}

func TestExecute_RedirectCollectsCookies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "first"})
		http.SetCookie(w, &http.Cookie{Name: "step", Value: "login"})
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method, "302 switches to GET")
		if ck, err := r.Cookie("sid"); assert.NoError(t, err) {
			assert.Equal(t, "first", ck.Value, "cookies set during the chain are sent")
		}
		http.SetCookie(w, &http.Cookie{Name: "step", Value: "home"})
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "home")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := execute(t, NewConnectionFactory(), srv.URL+"/login",
		map[string]string{"user": "a"}, nil, ports.RequestOptions{Method: entities.MethodPost})
	require.NoError(t, err)

	assert.Equal(t, "home", string(resp.Body))
	assert.Equal(t, srv.URL+"/home", resp.URL)
	assert.Equal(t, map[string]string{"sid": "first", "step": "home"}, resp.Cookies)
}

func TestExecute_CrossHostRedirectScopesCookies(t *testing.T) {
	var foreignCookies []*http.Cookie
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignCookies = r.Cookies()
		http.SetCookie(w, &http.Cookie{Name: "tracker", Value: "x"})
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "elsewhere")
	}))
	defer foreign.Close()

	portal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("sid"); assert.NoError(t, err) {
			assert.Equal(t, "123", ck.Value)
		}
		http.SetCookie(w, &http.Cookie{Name: "step", Value: "portal"})
		http.Redirect(w, r, foreign.URL+"/landing", http.StatusFound)
	}))
	defer portal.Close()

	resp, err := execute(t, NewConnectionFactory(), portal.URL,
		nil, map[string]string{"sid": "123"}, ports.RequestOptions{})
	require.NoError(t, err)

	assert.Equal(t, "elsewhere", string(resp.Body))
	assert.Empty(t, foreignCookies, "portal cookies stay on the portal host")
	assert.Equal(t, map[string]string{"step": "portal", "tracker": "x"}, resp.Cookies)
}

func TestExecute_TemporaryRedirectKeepsMethod(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/b", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "v", r.PostForm.Get("k"))
		w.Header().Set("Content-Type", "text/plain")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := execute(t, NewConnectionFactory(), srv.URL+"/a",
		map[string]string{"k": "v"}, nil, ports.RequestOptions{Method: entities.MethodPost})
	require.NoError(t, err)
}

func TestExecute_TooManyRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer srv.Close()

	_, err := execute(t, NewConnectionFactory(WithMaxRedirects(3)), srv.URL, nil, nil, ports.RequestOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many redirects")
}

func TestExecute_RedirectsDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "1"})
		w.Header().Set("Location", "/elsewhere")
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	resp, err := execute(t, NewConnectionFactory(WithMaxRedirects(0)), srv.URL, nil, nil, ports.RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "1", resp.Cookies["sid"])
}

func TestExecute_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := execute(t, NewConnectionFactory(), srv.URL, nil, nil, ports.RequestOptions{})

	var statusErr *errors.HTTPStatusError
	require.True(t, stdErrors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestExecute_ContentTypePolicy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", r.URL.Query().Get("ct"))
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	f := NewConnectionFactory()

	_, err := execute(t, f, srv.URL+"?ct=image%2Fpng", nil, nil, ports.RequestOptions{})
	var ctErr *errors.UnsupportedContentTypeError
	require.True(t, stdErrors.As(err, &ctErr))
	assert.Equal(t, "image/png", ctErr.ContentType)

	resp, err := execute(t, f, srv.URL+"?ct=image%2Fpng", nil, nil, ports.RequestOptions{IgnoreContentType: true})
	require.NoError(t, err)
	assert.Len(t, resp.Body, 4)

	for _, ct := range []string{"text/plain", "application/xml", "application/xhtml+xml", "text/xml; charset=utf-8"} {
		_, err := execute(t, f, srv.URL+"?ct="+url.QueryEscape(ct), nil, nil, ports.RequestOptions{})
		assert.NoError(t, err, ct)
	}
}

func TestExecute_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := execute(t, NewConnectionFactory(), srv.URL, nil, nil, ports.RequestOptions{Timeout: 50 * time.Millisecond})
	require.Error(t, err)

	var te interface{ Timeout() bool }
	require.True(t, stdErrors.As(err, &te))
	assert.True(t, te.Timeout())
}

func TestExecute_ContentEncodings(t *testing.T) {
	const page = "<html>encoded body</html>"
	encoders := map[string]func(io.Writer) io.WriteCloser{
		"gzip": func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) },
		"br":   func(w io.Writer) io.WriteCloser { return brotli.NewWriter(w) },
		"deflate": func(w io.Writer) io.WriteCloser {
			return zlib.NewWriter(w)
		},
		"raw-deflate": func(w io.Writer) io.WriteCloser {
			fw, _ := flate.NewWriter(w, flate.DefaultCompression)
			return fw
		},
	}

	for name, enc := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			wc := enc(&buf)
			_, _ = io.WriteString(wc, page)
			require.NoError(t, wc.Close())

			header := name
			if name == "raw-deflate" {
				header = "deflate"
			}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Header().Set("Content-Encoding", header)
				_, _ = w.Write(buf.Bytes())
			}))
			defer srv.Close()

			resp, err := execute(t, NewConnectionFactory(), srv.URL, nil, nil, ports.RequestOptions{})
			require.NoError(t, err)
			assert.Equal(t, page, string(resp.Body))
		})
	}
}

func TestExecute_BodyTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, strings.Repeat("x", 100))
	}))
	defer srv.Close()

	resp, err := execute(t, NewConnectionFactory(WithMaxBodySize(10)), srv.URL, nil, nil, ports.RequestOptions{})
	require.NoError(t, err)
	assert.Len(t, resp.Body, 10)
	assert.True(t, resp.Truncated)

	resp, err = execute(t, NewConnectionFactory(WithMaxBodySize(100)), srv.URL, nil, nil, ports.RequestOptions{})
	require.NoError(t, err)
	assert.Len(t, resp.Body, 100)
	assert.False(t, resp.Truncated)
}

func TestExecute_EmptyGzipBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
	}))
	defer srv.Close()

	resp, err := execute(t, NewConnectionFactory(), srv.URL, nil, nil, ports.RequestOptions{})
	require.NoError(t, err)
	assert.Empty(t, resp.Body)
}
