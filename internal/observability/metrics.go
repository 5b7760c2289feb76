package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tap_requests_total",
			Help: "Total tap requests by HTTP status",
		}, []string{"code"},
	)
	TapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taps_total",
			Help: "Tap outcomes",
		}, []string{"outcome"},
	)
	ResolveLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tap_resolve_duration_seconds",
		Help:    "Time from tap request to resolved destination",
		Buckets: prometheus.DefBuckets,
	})
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tap_in_flight",
		Help: "In-flight HTTP requests",
	})
	GeoLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoip_lookups_total",
			Help: "Geolocation lookups by result",
		}, []string{"result"},
	)
	AnalyticsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analytics_events_dropped_total",
		Help: "Tap events dropped because the dispatch buffer was full",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal, TapsTotal, ResolveLatency, InFlight, GeoLookups, AnalyticsDropped)
}

func MetricsHandler() http.Handler { return promhttp.Handler() }

type rec struct {
	http.ResponseWriter
	code int
}

func (r *rec) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func Measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		InFlight.Inc()
		defer InFlight.Dec()

		rr := &rec{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rr, r)

		ResolveLatency.Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(strconv.Itoa(rr.code)).Inc()
	})
}
