// Package http is the fluent, retry-aware client vendordesk uses to talk to
// the vendor REST API.
//
// Usage:
//
//	api := http.NewClient(config.APIBaseURL(),
//	    http.WithTokenSource(store),
//	    http.WithRetry(3, 500*time.Millisecond),
//	)
//
//	var page OrderPage
//	err := api.Get("/orders/vendor/%s", vendorID).
//	    Query("page", "1").
//	    Decode(ctx, &page)
//
//	// POST JSON body
//	err = api.Post("/auth/login").
//	    Body(map[string]any{"phone_number": phone, "password": pw}).
//	    Decode(ctx, &out)
//
// The route template passed to Get/Post/... is used as the metrics label, so
// ids never explode label cardinality.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	gohttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shashiranjanraj/vendordesk/pkg/logger"
	"github.com/shashiranjanraj/vendordesk/pkg/metrics"
	"github.com/shashiranjanraj/vendordesk/pkg/reqid"
)

// defaultTransport is the connection-pooled transport used when no client
// is injected.
var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        50,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// TokenSource yields the bearer token to attach. It is consulted each time
// a request is built, so a login or logout takes effect on the next call.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// ------------------- Client -------------------

// Client holds the base URL and shared request defaults.
type Client struct {
	baseURL   string
	http      *gohttp.Client
	tokens    TokenSource
	timeout   time.Duration
	retries   int
	retryWait time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches "Authorization: Bearer <token>" when the source
// returns a non-empty token.
func WithTokenSource(ts TokenSource) Option { return func(c *Client) { c.tokens = ts } }

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *gohttp.Client) Option { return func(c *Client) { c.http = hc } }

// WithTransport swaps only the RoundTripper; tests pass a testkit.MockTransport.
func WithTransport(rt gohttp.RoundTripper) Option {
	return func(c *Client) { c.http = &gohttp.Client{Transport: rt} }
}

// WithTimeout sets the per-attempt timeout. Zero leaves timing to the
// transport and the caller's context.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithRetry sets the total number of attempts (1 = no retry) and the
// initial backoff, which doubles after every failed attempt.
func WithRetry(n int, wait time.Duration) Option {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		c.retries = n
		c.retryWait = wait
	}
}

// NewClient returns a client rooted at baseURL, e.g. "http://localhost:3000/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &gohttp.Client{Transport: defaultTransport},
		retries:   1,
		retryWait: 500 * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the URL every path is joined to.
func (c *Client) BaseURL() string { return c.baseURL }

// Get starts a GET request. route is a fmt template, args fill it in.
func (c *Client) Get(route string, args ...any) *Request {
	return c.newRequest(gohttp.MethodGet, route, args)
}

// Post starts a POST request.
func (c *Client) Post(route string, args ...any) *Request {
	return c.newRequest(gohttp.MethodPost, route, args)
}

// Put starts a PUT request.
func (c *Client) Put(route string, args ...any) *Request {
	return c.newRequest(gohttp.MethodPut, route, args)
}

// Patch starts a PATCH request.
func (c *Client) Patch(route string, args ...any) *Request {
	return c.newRequest(gohttp.MethodPatch, route, args)
}

// Delete starts a DELETE request.
func (c *Client) Delete(route string, args ...any) *Request {
	return c.newRequest(gohttp.MethodDelete, route, args)
}

func (c *Client) newRequest(method, route string, args []any) *Request {
	path := route
	if len(args) > 0 {
		path = fmt.Sprintf(route, args...)
	}
	return &Request{
		client:  c,
		method:  method,
		route:   route,
		path:    path,
		query:   url.Values{},
		headers: map[string]string{"Accept": "application/json"},
	}
}

// ------------------- Request -------------------

// File is one multipart file part.
type File struct {
	Field    string // form field, e.g. "images"
	Name     string // file name sent to the server
	Data     []byte
	MimeType string
}

// Request is a fluent HTTP request builder.
type Request struct {
	client  *Client
	method  string
	route   string
	path    string
	query   url.Values
	headers map[string]string
	body    interface{}

	multipart bool
	fields    map[string]string
	files     []File
}

// Query adds a query parameter. Empty values are skipped so optional
// filters can be passed unconditionally.
func (r *Request) Query(key, value string) *Request {
	if value != "" {
		r.query.Add(key, value)
	}
	return r
}

// Header adds a single header to the request.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Body sets a JSON body. Pass []byte to send raw bytes.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

// Multipart sends fields and files as multipart/form-data instead of JSON.
func (r *Request) Multipart(fields map[string]string, files []File) *Request {
	r.multipart = true
	r.fields = fields
	r.files = files
	return r
}

// ------------------- Send -------------------

// Send executes the request. Any non-2xx status is returned as *APIError.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	ctx, id := reqid.Ensure(ctx)
	log := logger.WithCtx(ctx)

	attempts := r.client.retries
	if !idempotent(r.method) {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := r.do(ctx, id)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() || attempt == attempts {
			break
		}

		backoff := time.Duration(float64(r.client.retryWait) * math.Pow(2, float64(attempt-1)))
		log.Warn("http: request failed, retrying",
			"method", r.method, "path", r.path, "attempt", attempt, "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("http: %s %s: %w", r.method, r.path, ctx.Err())
		case <-time.After(backoff):
		}
	}
	return nil, lastErr
}

// Decode sends the request and unmarshals a 2xx JSON body into dest. When
// dest has a Validate() error method it is run on the decoded value.
func (r *Request) Decode(ctx context.Context, dest interface{}) error {
	resp, err := r.Send(ctx)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := resp.JSON(dest); err != nil {
		return fmt.Errorf("http: %s %s: %w", r.method, r.route, err)
	}
	if v, ok := dest.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("http: %s %s: %w", r.method, r.route, err)
		}
	}
	return nil
}

func (r *Request) do(ctx context.Context, id string) (*Response, error) {
	body, ct, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	if r.client.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.client.timeout)
		defer cancel()
	}

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url(), body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	req.Header.Set(reqid.Header, id)
	if r.client.tokens != nil {
		if tok := r.client.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := r.client.http.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest(r.method, r.route, 0, start)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("http: %s %s: %w", r.method, r.path, ctx.Err())
		}
		return nil, &APIError{Kind: KindNetwork, Method: r.method, Path: r.path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	metrics.ObserveAPIRequest(r.method, r.route, resp.StatusCode, start)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Method: r.method, Path: r.path, Err: err}
	}

	out := &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}
	if !out.OK() {
		return out, newStatusError(r.method, r.path, resp.StatusCode, raw)
	}
	return out, nil
}

func (r *Request) url() string {
	u := r.client.baseURL + "/" + strings.TrimLeft(r.path, "/")
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	return u
}

// buildBody is called per attempt so retries resend the full payload.
func (r *Request) buildBody() (io.Reader, string, error) {
	if r.multipart {
		return r.buildMultipart()
	}
	if r.body == nil {
		return nil, "", nil
	}
	switch v := r.body.(type) {
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

func (r *Request) buildMultipart() (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range r.fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("http: multipart field %s: %w", k, err)
		}
	}
	for _, f := range r.files {
		part, err := mw.CreatePart(filePartHeader(f))
		if err != nil {
			return nil, "", fmt.Errorf("http: multipart file %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("http: multipart file %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("http: multipart close: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func filePartHeader(f File) map[string][]string {
	mime := f.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	quote := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quote.Replace(f.Field), quote.Replace(f.Name))},
		"Content-Type": {mime},
	}
}

func idempotent(method string) bool {
	switch method {
	case gohttp.MethodGet, gohttp.MethodHead, gohttp.MethodPut, gohttp.MethodDelete, gohttp.MethodOptions:
		return true
	}
	return false
}

// ------------------- Response -------------------

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}
	return nil
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Raw)
}
