package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for application monitoring.
// All metrics are registered in the default Prometheus registry and
// exposed via the /metrics endpoint.

var (
	// httpRequestsTotal counts all HTTP requests by method, path, and status.
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration measures request processing time.
	// Use for latency analysis and SLO tracking (P50, P95, P99).
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// httpResponseSize tracks response body sizes for bandwidth monitoring.
	httpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// authAttemptsTotal counts authentication attempts by result.
	// Use for security monitoring and brute-force detection.
	authAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// oauthConnectionsTotal counts OAuth connection outcomes per platform.
	// The error results mirror the failure reasons in callback redirects,
	// so alerting can distinguish provider outages from state expiry.
	oauthConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_connections_total",
			Help: "Total number of OAuth connection attempts",
		},
		[]string{"platform", "result"},
	)

	// collectionJobsTotal counts dispatched collection jobs by platform
	// and final status.
	collectionJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_jobs_total",
			Help: "Total number of collection jobs by outcome",
		},
		[]string{"platform", "status"},
	)

	// dbQueriesTotal counts database queries by database, operation, and status.
	dbQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"database", "operation", "status"},
	)

	// dbQueryDuration measures database query execution time.
	dbQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"database", "operation"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpResponseSize)
	prometheus.MustRegister(authAttemptsTotal)
	prometheus.MustRegister(oauthConnectionsTotal)
	prometheus.MustRegister(collectionJobsTotal)
	prometheus.MustRegister(dbQueriesTotal)
	prometheus.MustRegister(dbQueryDuration)
}

// Metrics creates middleware for collecting HTTP metrics.
// Records request count, duration, and response size for every request.
//
// Example Prometheus queries:
//
//	# Request rate by endpoint
//	rate(http_requests_total[5m])
//
//	# P95 latency
//	histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(ww.Status())

			httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
			httpResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(ww.BytesWritten()))
		})
	}
}

// MetricsHandler returns the Prometheus metrics HTTP handler.
// Exposes all registered metrics in Prometheus text format for scraping.
//
// Usage:
//
//	r.Get("/metrics", middleware.MetricsHandler().ServeHTTP)
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// IncrementAuthAttempts increments the authentication attempts counter.
//
// Example:
//
//	middleware.IncrementAuthAttempts("invalid_credentials")
func IncrementAuthAttempts(result string) {
	authAttemptsTotal.WithLabelValues(result).Inc()
}

// IncrementOAuthConnections increments the OAuth connection counter.
//
// Example:
//
//	middleware.IncrementOAuthConnections("twitter", "success")
func IncrementOAuthConnections(platform, result string) {
	oauthConnectionsTotal.WithLabelValues(platform, result).Inc()
}

// IncrementCollectionJobs increments the collection job counter.
//
// Example:
//
//	middleware.IncrementCollectionJobs("reddit", "dispatched")
func IncrementCollectionJobs(platform, status string) {
	collectionJobsTotal.WithLabelValues(platform, status).Inc()
}

// RecordDBQuery records database query metrics including count and duration.
//
// Example:
//
//	start := time.Now()
//	user, err := db.GetUserByID(ctx, userID)
//	status := "success"
//	if err != nil {
//	    status = "error"
//	}
//	middleware.RecordDBQuery("postgres", "SELECT", status, time.Since(start))
func RecordDBQuery(database, operation, status string, duration time.Duration) {
	dbQueriesTotal.WithLabelValues(database, operation, status).Inc()
	dbQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}
