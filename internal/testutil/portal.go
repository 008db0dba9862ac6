package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Portal credentials accepted by NewPortalServer.
const (
	PortalUser     = "alice"
	PortalPassword = "hunter2"
	PortalSession  = "123"
)

// NewPortalServer starts a small portal stand-in:
//
//	/login        checks user/pass (form or query), sets sid and redirects
//	              (302) to /home
//	GET  /home    requires the sid cookie
//	GET  /logo    serves image/png
//
// The server is closed with the test.
func NewPortalServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("user") != PortalUser || r.FormValue("pass") != PortalPassword {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: PortalSession, Path: "/"})
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("GET /home", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("sid")
		if err != nil || ck.Value != PortalSession {
			http.Error(w, "login required", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<html><body>Welcome %s</body></html>", PortalUser)
	})
	mux.HandleFunc("GET /logo", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = io.WriteString(w, "\x89PNG")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
