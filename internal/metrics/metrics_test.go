package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware("test-svc"))
	r.Get("/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("test-svc", "GET", "/books/{id}", "418"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/42", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("test-svc", "GET", "/books/{id}", "418"))
	assert.Equal(t, before+1, after)
}

func TestMiddlewareCollapsesUnmatchedPaths(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware("test-svc"))
	r.Get("/books/{id}", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("test-svc", "GET", "unmatched", "404"))

	for _, p := range []string{"/nope/1", "/nope/2", "/wp-admin.php"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("test-svc", "GET", "unmatched", "404"))
	assert.Equal(t, before+3, after)
}
