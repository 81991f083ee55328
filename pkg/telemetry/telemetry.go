package telemetry

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"blogchat/pkg/logger"
)

// Low-overhead request telemetry. Every request feeds the prometheus
// histogram; only slow requests produce a log line.

var (
	requestCtr    uint64
	slowThreshold atomic.Int64

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogchat_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blogchat_http_in_flight_requests",
		Help: "Requests currently being served.",
	})
)

func init() {
	slowThreshold.Store(int64(200 * time.Millisecond))
}

// SetSlowThreshold adjusts the latency above which a request is logged.
func SetSlowThreshold(d time.Duration) {
	if d > 0 {
		slowThreshold.Store(int64(d))
	}
}

// Middleware records timing for every request. Route labels come from
// the matched mux template so path parameters do not explode the
// metric cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := routeTemplate(r)
		httpDuration.WithLabelValues(route, r.Method, fmt.Sprintf("%d", rec.status)).Observe(elapsed.Seconds())

		if elapsed > time.Duration(slowThreshold.Load()) {
			logger.Warn("slow_request",
				"id", genRequestID(),
				"route", route,
				"method", r.Method,
				"status", rec.status,
				"duration_ms", elapsed.Milliseconds(),
			)
		}
	})
}

// routeTemplate returns the mux route pattern, falling back to the raw
// path for unrouted requests.
func routeTemplate(r *http.Request) string {
	if cur := mux.CurrentRoute(r); cur != nil {
		if tpl, err := cur.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

func genRequestID() string {
	n := atomic.AddUint64(&requestCtr, 1)
	return fmt.Sprintf("req-%d-%d", time.Now().UnixMilli(), n)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer so websocket upgrades
// work behind the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}
