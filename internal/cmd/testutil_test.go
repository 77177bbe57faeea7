// Test utilities for exercising commands against a mock API gateway.
//
// Most tests follow the same shape: register mock responses on a
// routeHandler, call setupTestEnvWithHandler to point the CLI at the mock
// server via environment credentials, then run Execute and assert on
// captured output.
//
//	handler := newRouteHandler().
//	    On("GET", "/configuration/v2/groups", jsonResponse(200, `{"data": [["a"]], "total": 1}`))
//	setupTestEnvWithHandler(t, handler)
//
//	output := captureStdout(t, func() {
//	    if err := Execute(context.Background(), []string{"groups", "list"}); err != nil {
//	        t.Fatalf("command failed: %v", err)
//	    }
//	})
package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

// captureStdout executes a function and captures its stdout output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// captureStderr executes a function and captures its stderr output.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	_ = w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// setupTestEnvWithHandler starts a mock gateway and points the CLI at it
// through environment credentials. CENTRAL_TESTING skips URL validation
// for the localhost server and CENTRAL_NO_CACHE keeps group listings from
// leaking between tests.
func setupTestEnvWithHandler(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("CENTRAL_BASE_URL", server.URL)
	t.Setenv("CENTRAL_ACCESS_TOKEN", "test-token")
	t.Setenv("CENTRAL_TESTING", "1")
	t.Setenv("CENTRAL_OUTPUT", "text")
	t.Setenv("CENTRAL_NO_CACHE", "1")

	return server
}

// jsonResponse returns a handler that writes a fixed JSON response.
func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler routes requests by exact "METHOD PATH" match. Unmatched
// requests fail the test.
type routeHandler struct {
	t      *testing.T
	routes map[string]http.HandlerFunc
}

func newRouteHandler(t *testing.T) *routeHandler {
	return &routeHandler{t: t, routes: make(map[string]http.HandlerFunc)}
}

// On registers a handler for the given HTTP method and path and returns
// the routeHandler for chaining.
func (h *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	h.routes[method+" "+path] = handler
	return h
}

func (h *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handler, ok := h.routes[r.Method+" "+r.URL.Path]; ok {
		handler(w, r)
		return
	}
	h.t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"description": "no route"}`))
}
