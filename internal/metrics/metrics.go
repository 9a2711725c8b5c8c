package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "outswap",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outswap",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "outswap",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outswap",
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Outfit searches by ordering mode.",
		},
		[]string{"mode"},
	)

	searchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "outswap",
			Subsystem: "search",
			Name:      "matched_outfits",
			Help:      "Number of outfits matched per search before pagination.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	rentalTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outswap",
			Subsystem: "rentals",
			Name:      "transitions_total",
			Help:      "Rental status changes by target status and outcome.",
		},
		[]string{"to", "result"},
	)

	ratingRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outswap",
			Subsystem: "ratings",
			Name:      "recomputes_total",
			Help:      "Rating aggregate recomputations by target kind.",
		},
		[]string{"kind", "result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		searches,
		searchResults,
		rentalTransitions,
		ratingRecomputes,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with HTTP request metrics.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordSearch counts one search and the size of its matched set.
func RecordSearch(relevance bool, matched int) {
	mode := "field"
	if relevance {
		mode = "relevance"
	}
	searches.WithLabelValues(mode).Inc()
	searchResults.Observe(float64(matched))
}

// RecordTransition counts a rental status change attempt.
func RecordTransition(to string, err error) {
	rentalTransitions.WithLabelValues(to, result(err)).Inc()
}

// RecordRatingRecompute counts an aggregate recomputation.
func RecordRatingRecompute(kind string, err error) {
	ratingRecomputes.WithLabelValues(kind, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// canonicalPath collapses ids so label cardinality stays bounded:
// /api/rentals/abc/confirm becomes /api/rentals/:id/confirm.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" || len(parts) < 2 {
		return "/" + parts[0]
	}

	out := []string{"api", parts[1]}
	rest := parts[2:]
	if len(rest) > 0 {
		switch rest[0] {
		case "search":
			out = append(out, "search")
			rest = nil
		case "owner", "renter", "outfit", "user":
			out = append(out, rest[0], ":id")
			rest = nil
		case "nearby":
			out = append(out, "nearby", ":lat", ":lon")
			rest = nil
		default:
			out = append(out, ":id")
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		out = append(out, rest[0])
	}
	return "/" + strings.Join(out, "/")
}
