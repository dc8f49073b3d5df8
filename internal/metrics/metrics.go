// Package metrics собирает метрики Prometheus: HTTP-запросы и доменные события.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "appsubs"

// Metrics хранит собственный реестр и коллекторы сервиса.
// Методы безопасно вызывать на nil.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	appsCreated  prometheus.Counter
	appsDeleted  prometheus.Counter
	planChanges  *prometheus.CounterVec
}

// New создает реестр и регистрирует в нем все коллекторы.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		appsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apps_created_total",
			Help:      "Apps created, each with a Free subscription.",
		}),
		appsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apps_deleted_total",
			Help:      "Apps deleted together with their subscriptions.",
		}),
		planChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_plan_changes_total",
			Help:      "Subscription plan changes by target plan.",
		}, []string{"plan"}),
	}

	m.Registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.appsCreated,
		m.appsDeleted,
		m.planChanges,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler отдает метрики реестра в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware считает запросы и их длительность по шаблону маршрута chi.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// AppCreated учитывает созданное приложение.
func (m *Metrics) AppCreated() {
	if m == nil {
		return
	}
	m.appsCreated.Inc()
}

// AppDeleted учитывает удаленное приложение.
func (m *Metrics) AppDeleted() {
	if m == nil {
		return
	}
	m.appsDeleted.Inc()
}

// PlanChanged учитывает смену тарифа подписки.
func (m *Metrics) PlanChanged(plan string) {
	if m == nil {
		return
	}
	m.planChanges.WithLabelValues(plan).Inc()
}
