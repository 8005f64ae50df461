// metrics.go — Prometheus HTTP метрики FlowCenter.
// Регистрирует метрики: fc_http_requests_total, fc_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fc_http_requests_total",
			Help: "Общее количество HTTP-запросов к FlowCenter",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fc_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к FlowCenter в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем идентификаторы на {id} для предотвращения кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет динамические сегменты пути на {id}
// для предотвращения взрывного роста кардинальности метрик.
// /api/v1/admin/users/a1b2c3d4-... → /api/v1/admin/users/{id}
func normalizePath(path string) string {
	// Статические пути — возвращаем как есть
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/v1/auth/register", "/api/v1/auth/login", "/api/v1/auth/logout",
		"/api/v1/auth/password", "/api/v1/auth/reset", "/api/v1/auth/reset/confirm",
		"/api/v1/profile",
		"/api/v1/navigation",
		"/api/v1/events/modules",
		"/api/v1/tasks",
		"/api/v1/proxy",
		"/api/v1/modules",
		"/api/v1/clickup/test",
		"/api/v1/admin/users",
		"/api/v1/admin/clickup-config",
		"/api/v1/admin/clickup-config/test",
		"/api/v1/admin/assignees":
		return path
	}

	// Динамические пути с UUID
	if rest, ok := strings.CutPrefix(path, "/api/v1/admin/users/"); ok {
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/api/v1/admin/users/{id}" + rest[idx:]
		}
		return "/api/v1/admin/users/{id}"
	}
	if strings.HasPrefix(path, "/api/v1/admin/assignees/") {
		return "/api/v1/admin/assignees/{id}"
	}

	return path
}
