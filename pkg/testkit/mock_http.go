// Package testkit holds test doubles shared by vendordesk's package tests.
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// ─── MockTransport ────────────────────────────────────────────────────────────

// MockTransport implements http.RoundTripper.
// It matches outgoing requests against registered routes and returns
// scripted responses instead of making real network calls. Every request is
// recorded so tests can assert on what was sent.
//
//	mt := testkit.NewMockTransport()
//	mt.On("POST", "/auth/login").Reply(200, map[string]any{"token": "abc", "user": u})
//	api := http.NewClient("http://api.test", http.WithTransport(mt))
//	// ... run test ...
//	mt.AssertAllCalled(t)
type MockTransport struct {
	mu     sync.Mutex
	routes []*Route
	calls  []Call
	strict bool
}

// Route is one method + path expectation.
type Route struct {
	method  string
	path    string
	replies []Reply
	hits    int
}

// Reply is a scripted response. A non-nil Err simulates a transport failure.
type Reply struct {
	Status int
	Body   interface{}
	Err    error
}

// Call is a recorded outgoing request.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body into dest.
func (c Call) JSON(dest interface{}) error { return json.Unmarshal(c.Body, dest) }

// NewMockTransport returns a transport that answers unmatched requests with
// 404 {"message":"no mock configured"}.
func NewMockTransport() *MockTransport { return &MockTransport{} }

// Strict makes unmatched requests fail with a transport error instead.
func (mt *MockTransport) Strict() *MockTransport {
	mt.strict = true
	return mt
}

// On registers a route. path is matched against the end of the request
// path, so "/orders/42" matches "http://api.test/api/orders/42".
// The first matching route wins.
func (mt *MockTransport) On(method, path string) *Route {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	r := &Route{method: method, path: path}
	mt.routes = append(mt.routes, r)
	return r
}

// Reply queues a response. Replies are served in order and the last one
// repeats.
func (r *Route) Reply(status int, body interface{}) *Route {
	r.replies = append(r.replies, Reply{Status: status, Body: body})
	return r
}

// Fail queues a transport error.
func (r *Route) Fail(err error) *Route {
	r.replies = append(r.replies, Reply{Err: err})
	return r
}

// RoundTrip intercepts the outgoing request and returns a synthetic response.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.calls = append(mt.calls, Call{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Header: req.Header.Clone(),
		Body:   body,
	})

	for _, r := range mt.routes {
		if r.method != req.Method || !strings.HasSuffix(req.URL.Path, r.path) {
			continue
		}
		if len(r.replies) == 0 {
			continue
		}
		idx := r.hits
		if idx >= len(r.replies) {
			idx = len(r.replies) - 1
		}
		r.hits++
		rep := r.replies[idx]
		if rep.Err != nil {
			return nil, rep.Err
		}
		return buildHTTPResponse(req, rep)
	}

	if mt.strict {
		return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call %s %s", req.Method, req.URL)
	}
	return buildHTTPResponse(req, Reply{Status: http.StatusNotFound, Body: map[string]string{"message": "no mock configured"}})
}

// Calls returns every recorded request.
func (mt *MockTransport) Calls() []Call {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]Call(nil), mt.calls...)
}

// CallsTo returns recorded requests whose method matches and whose path
// ends with path.
func (mt *MockTransport) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range mt.Calls() {
		if c.Method == method && strings.HasSuffix(c.Path, path) {
			out = append(out, c)
		}
	}
	return out
}

// Unmatched lists routes that were registered but never hit.
func (mt *MockTransport) Unmatched() []string {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	var out []string
	for _, r := range mt.routes {
		if r.hits == 0 {
			out = append(out, r.method+" "+r.path)
		}
	}
	return out
}

// Reset clears recorded calls and hit counters but keeps routes.
func (mt *MockTransport) Reset() {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.calls = nil
	for _, r := range mt.routes {
		r.hits = 0
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func buildHTTPResponse(req *http.Request, rep Reply) (*http.Response, error) {
	code := rep.Status
	if code == 0 {
		code = http.StatusOK
	}

	var bodyBytes []byte
	switch b := rep.Body.(type) {
	case nil:
	case []byte:
		bodyBytes = b
	case string:
		bodyBytes = []byte(b)
	default:
		var err error
		if bodyBytes, err = json.Marshal(b); err != nil {
			return nil, fmt.Errorf("testkit: marshal mock body: %w", err)
		}
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(bodyBytes)),
		Request:    req,
	}, nil
}
