package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/shashiranjanraj/vendordesk/pkg/logger"
	"github.com/shashiranjanraj/vendordesk/pkg/metrics"
	"github.com/shashiranjanraj/vendordesk/pkg/reqid"
	"github.com/shashiranjanraj/vendordesk/pkg/response"
)

// Recovery turns a handler panic into a 500 in the API's error shape and
// counts it per route. If the handler already started its response only
// the log line is written. http.ErrAbortHandler is re-raised for net/http.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := record(w)
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}

			route := routeOf(r)
			metrics.ServedPanics.WithLabelValues(route).Inc()
			logger.WithCtx(r.Context()).Error("mockapi: handler panicked",
				"request_id", reqid.FromCtx(r.Context()),
				"panic", fmt.Sprint(v),
				"method", r.Method,
				"route", route,
				"stack", string(debug.Stack()),
			)
			if !rec.wrote {
				response.Error(rec, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(rec, r)
	})
}
