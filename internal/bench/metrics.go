package bench

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors updated by Run.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	bytesTotal      *prometheus.CounterVec
	secondsTotal    *prometheus.CounterVec
	allocBytesTotal *prometheus.CounterVec
	nsPerByte       *prometheus.GaugeVec
	terms           prometheus.Gauge
	derivatives     prometheus.Gauge
	cacheHits       prometheus.Gauge
}

// NewMetrics creates the benchmark collectors in a fresh registry that
// also carries the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deriv",
			Subsystem: "bench",
			Name:      "runs_total",
		}, []string{"engine"}),
		bytesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deriv",
			Subsystem: "bench",
			Name:      "bytes_total",
		}, []string{"engine"}),
		secondsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deriv",
			Subsystem: "bench",
			Name:      "seconds_total",
		}, []string{"engine"}),
		allocBytesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deriv",
			Subsystem: "bench",
			Name:      "alloc_bytes_total",
		}, []string{"engine"}),
		nsPerByte: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "deriv",
			Subsystem: "bench",
			Name:      "ns_per_byte",
		}, []string{"engine"}),
		terms: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "deriv",
			Subsystem: "bench",
			Name:      "terms",
		}),
		derivatives: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "deriv",
			Subsystem: "bench",
			Name:      "derivatives",
		}),
		cacheHits: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "deriv",
			Subsystem: "bench",
			Name:      "cache_hits",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observe(res Result) {
	m.runsTotal.WithLabelValues(res.Engine).Inc()
	m.bytesTotal.WithLabelValues(res.Engine).Add(float64(res.Bytes))
	m.secondsTotal.WithLabelValues(res.Engine).Add(res.Elapsed.Seconds())
	m.allocBytesTotal.WithLabelValues(res.Engine).Add(float64(res.AllocBytes))
	m.nsPerByte.WithLabelValues(res.Engine).Set(res.NsPerByte())
}

func (m *Metrics) observeEngine(r *Report) {
	m.terms.Set(float64(r.Terms))
	m.derivatives.Set(float64(r.Stats.Derivatives))
	m.cacheHits.Set(float64(r.Stats.CacheHits))
}
