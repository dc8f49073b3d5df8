package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/apps/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/plans", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/apps/1", "/apps/2", "/plans"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/apps/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/plans", "200")))
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.AppCreated()
	m.AppCreated()
	m.AppDeleted()
	m.PlanChanged("Pro")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.appsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.appsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.planChanges.WithLabelValues("Pro")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AppCreated()
		m.AppDeleted()
		m.PlanChanged("Free")
	})
}

func TestHandler_ExposesCounters(t *testing.T) {
	m := New()
	m.AppCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "appsubs_apps_created_total 1"))
}
