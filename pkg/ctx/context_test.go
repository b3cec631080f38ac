package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	appctx "github.com/shashiranjanraj/vendordesk/pkg/ctx"
)

func serve(pattern, method, target, body string, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, appctx.Wrap(h))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func TestParamInt(t *testing.T) {
	rec := serve("/orders/{id}", http.MethodGet, "/orders/42", "", func(c *appctx.Context) {
		id, ok := c.ParamInt("id")
		assert.True(t, ok)
		c.OK(map[string]int64{"id": id})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":42}`, rec.Body.String())

	rec = serve("/orders/{id}", http.MethodGet, "/orders/abc", "", func(c *appctx.Context) {
		_, ok := c.ParamInt("id")
		assert.False(t, ok)
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryInt(t *testing.T) {
	serve("/", http.MethodGet, "/?page=3&limit=x&neg=-1", "", func(c *appctx.Context) {
		assert.Equal(t, 3, c.QueryInt("page", 1))
		assert.Equal(t, 10, c.QueryInt("limit", 10))
		assert.Equal(t, 1, c.QueryInt("neg", 1))
		assert.Equal(t, 7, c.QueryInt("missing", 7))
		c.Message("ok")
	})
}

type loginBody struct {
	Phone    string `json:"phone_number" validate:"required,phone"`
	Password string `json:"password"     validate:"required,min=6"`
}

func TestBindValidationFailure(t *testing.T) {
	rec := serve("/login", http.MethodPost, "/login", `{"phone_number":"+251911223344","password":"abc"}`, func(c *appctx.Context) {
		var in loginBody
		assert.False(t, c.Bind(&in))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"password"`)
}

func TestBindMalformed(t *testing.T) {
	rec := serve("/login", http.MethodPost, "/login", `{`, func(c *appctx.Context) {
		var in loginBody
		assert.False(t, c.Bind(&in))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestBindOK(t *testing.T) {
	rec := serve("/login", http.MethodPost, "/login", `{"phone_number":"+251911223344","password":"secret1"}`, func(c *appctx.Context) {
		var in loginBody
		if assert.True(t, c.Bind(&in)) {
			c.Created(in)
		}
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}
