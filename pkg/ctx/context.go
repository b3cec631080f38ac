// Package ctx wraps a request/response pair for the mock API handlers:
//
//	r.Get("/orders/{id}", "orders.show", ctx.Wrap(func(c *ctx.Context) {
//	    id, ok := c.ParamInt("id")
//	    if !ok {
//	        return
//	    }
//	    c.OK(store.Order(id))
//	}))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/vendordesk/pkg/auth"
	"github.com/shashiranjanraj/vendordesk/pkg/bind"
	"github.com/shashiranjanraj/vendordesk/pkg/middleware"
	"github.com/shashiranjanraj/vendordesk/pkg/response"
)

type HandlerFunc func(c *Context)

// Wrap adapts h to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{New: func() any { return &Context{} }}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R, c.status = w, r, 0
	return c
}

func release(c *Context) {
	c.W, c.R = nil, nil
	pool.Put(c)
}

// ─── Request ─────────────────────────────────────────────────────────────────

func (c *Context) Context() context.Context { return c.R.Context() }

func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

// ParamInt parses a numeric path parameter. On failure it answers 400 and
// returns false.
func (c *Context) ParamInt(key string) (int64, bool) {
	n, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || n <= 0 {
		c.Error(http.StatusBadRequest, "Invalid "+key)
		return 0, false
	}
	return n, true
}

func (c *Context) Query(key string) string { return strings.TrimSpace(c.R.URL.Query().Get(key)) }

// QueryInt returns the query value as an int, or def when it is missing,
// malformed or below 1.
func (c *Context) QueryInt(key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Claims returns the bearer token claims set by middleware.Auth.
func (c *Context) Claims() *auth.Claims { return middleware.Claims(c.R.Context()) }

// Bind decodes and validates the JSON body into dest. When it returns false
// the error response has been written.
func (c *Context) Bind(dest any) bool {
	errs, err := bind.JSON(c.W, c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if errs != nil {
		c.status = http.StatusBadRequest
		response.ValidationError(c.W, errs)
		return false
	}
	return true
}

// BindMultipart parses a multipart body. When it returns false the error
// response has been written.
func (c *Context) BindMultipart() bool {
	if err := bind.Multipart(c.W, c.R); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// FormValue reads a field of a parsed multipart form.
func (c *Context) FormValue(key string) string { return strings.TrimSpace(c.R.FormValue(key)) }

// FileNames lists the uploaded file names of a multipart field.
func (c *Context) FileNames(field string) []string {
	if c.R.MultipartForm == nil {
		return nil
	}
	var names []string
	for _, fh := range c.R.MultipartForm.File[field] {
		names = append(names, fh.Filename)
	}
	return names
}

// ─── Response ────────────────────────────────────────────────────────────────

func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

func (c *Context) OK(v any)      { c.JSON(http.StatusOK, v) }
func (c *Context) Created(v any) { c.JSON(http.StatusCreated, v) }

func (c *Context) Message(msg string) {
	c.JSON(http.StatusOK, map[string]string{"message": msg})
}

func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

func (c *Context) FieldError(code int, field, message string) {
	c.status = code
	response.FieldError(c.W, code, field, message)
}

func (c *Context) NotFound(message string) {
	c.status = http.StatusNotFound
	response.NotFound(c.W, message)
}

func (c *Context) Forbidden() {
	c.status = http.StatusForbidden
	response.Forbidden(c.W)
}

// WrittenStatus is the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
