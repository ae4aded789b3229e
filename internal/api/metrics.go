package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/HappyEnt/flooja-cau-testbed/internal/storage"
)

const namespace = "tracestore"

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

// storeCollector exports the statistics of a trace store on every scrape.
type storeCollector struct {
	store storage.TraceStore

	nodes   *prometheus.Desc
	samples *prometheus.Desc
	hits    *prometheus.Desc
	misses  *prometheus.Desc
}

func newStoreCollector(store storage.TraceStore) *storeCollector {
	labels := []string{"backend"}
	return &storeCollector{
		store:   store,
		nodes:   prometheus.NewDesc(namespace+"_nodes", "Number of nodes with a trace.", labels, nil),
		samples: prometheus.NewDesc(namespace+"_samples", "Number of stored samples over all traces.", labels, nil),
		hits:    prometheus.NewDesc(namespace+"_downsample_cache_hits_total", "Downsample queries answered from the cache.", labels, nil),
		misses:  prometheus.NewDesc(namespace+"_downsample_cache_misses_total", "Downsample queries that read the trace.", labels, nil),
	}
}

func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nodes
	ch <- c.samples
	ch <- c.hits
	ch <- c.misses
}

func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.store.Stats(context.Background())
	ch <- prometheus.MustNewConstMetric(c.nodes, prometheus.GaugeValue, float64(stats.TotalNodes), stats.Backend)
	ch <- prometheus.MustNewConstMetric(c.samples, prometheus.GaugeValue, float64(stats.TotalSamples), stats.Backend)
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.CacheHits), stats.Backend)
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.CacheMisses), stats.Backend)
}

// httpMetrics counts and times requests by route template.
type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// statusRecorder implements http.ResponseWriter and records the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.ResponseWriter.Write(b)
}

// instrument returns middleware that assigns a request id, logs one access
// line per request and records request metrics.
func instrument(logger *zap.Logger, metrics *httpMetrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			elapsed := time.Since(start)

			metrics.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			metrics.duration.WithLabelValues(route).Observe(elapsed.Seconds())

			logger.Info("request",
				zap.String("request_id", id),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", rec.status),
				zap.Duration("duration", elapsed),
			)
		})
	}
}
