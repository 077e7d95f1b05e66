package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "tidedash"

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: subsystem,
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	cycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "cycle_duration",
			Subsystem: subsystem,
			Help:      "Time to build one product's animation, in seconds.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32, 64, 128, 256},
		},
		[]string{"product", "result"},
	)

	pulls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "pulls_total",
			Subsystem: subsystem,
			Help:      "Data API pulls by product and result.",
		},
		[]string{"product", "result"},
	)

	frames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "frames_rendered_total",
			Subsystem: subsystem,
			Help:      "Animation frames rendered by product.",
		},
		[]string{"product"},
	)

	stale = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:      "stale",
			Subsystem: subsystem,
			Help:      "1 when a product had no observations in its staleness window.",
		},
		[]string{"product"},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		cycleDuration,
		pulls,
		frames,
		stale,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

func ObserveCycle(product, result string, d time.Duration) {
	cycleDuration.With(prometheus.Labels{
		"product": product,
		"result":  result,
	}).Observe(d.Seconds())
}

func ObservePull(product, result string) {
	pulls.With(prometheus.Labels{
		"product": product,
		"result":  result,
	}).Inc()
}

func FrameRendered(product string) {
	frames.With(prometheus.Labels{"product": product}).Inc()
}

func SetStale(product string, isStale bool) {
	v := 0.0
	if isStale {
		v = 1
	}
	stale.With(prometheus.Labels{"product": product}).Set(v)
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := ""
		if r.URL != nil {
			path = r.URL.Path
		}
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(verb, path, strconv.Itoa(rec.code), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}
