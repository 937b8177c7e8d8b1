package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "forcegraph"

// Metrics exports hook events as Prometheus collectors.
type Metrics struct {
	simulations     *prometheus.CounterVec
	simulationTime  prometheus.Histogram
	simulationTicks prometheus.Histogram
	staleMessages   prometheus.Counter
	layoutTime      *prometheus.HistogramVec
	indexTime       *prometheus.HistogramVec
	renderTime      *prometheus.HistogramVec
	cacheOps        *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpInFlight    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "simulations_total",
			Help: "Background simulations by outcome.",
		}, []string{"outcome"}),
		simulationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "simulation_duration_seconds",
			Help:    "Wall time of background simulations.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
		simulationTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "simulation_ticks",
			Help:    "Steps taken per background simulation.",
			Buckets: prometheus.LinearBuckets(0, 50, 10),
		}),
		staleMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "worker_stale_messages_total",
			Help: "Worker messages dropped because their request was superseded.",
		}),
		layoutTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_duration_seconds",
			Help:    "Pipeline layout stage duration.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"outcome"}),
		indexTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "index_build_duration_seconds",
			Help:    "Spatial index build duration.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"kind"}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "render_duration_seconds",
			Help:    "Render stage duration.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"formats", "outcome"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_operations_total",
			Help: "Cache lookups and writes.",
		}, []string{"type", "op"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP API responses by route and status.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP API handling time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "http_requests_in_flight",
			Help: "HTTP API requests being handled.",
		}),
	}
	reg.MustRegister(
		m.simulations, m.simulationTime, m.simulationTicks, m.staleMessages,
		m.layoutTime, m.indexTime, m.renderTime,
		m.cacheOps, m.cacheBytes,
		m.httpRequests, m.httpDuration, m.httpInFlight,
	)
	return m
}

// Register installs m for every event category.
func (m *Metrics) Register() {
	SetSimulationHooks(m)
	SetPipelineHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnSimulationStart(context.Context, string, int, int) {}

func (m *Metrics) OnSimulationComplete(_ context.Context, _ string, ticks int, d time.Duration, err error) {
	m.simulations.WithLabelValues(outcome(err)).Inc()
	m.simulationTime.Observe(d.Seconds())
	if err == nil {
		m.simulationTicks.Observe(float64(ticks))
	}
}

func (m *Metrics) OnStaleMessage(context.Context, string) { m.staleMessages.Inc() }

func (m *Metrics) OnLayoutStart(context.Context, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, _ int, d time.Duration, err error) {
	m.layoutTime.WithLabelValues(outcome(err)).Observe(d.Seconds())
}

func (m *Metrics) OnIndexBuild(_ context.Context, kind string, _ int, d time.Duration) {
	m.indexTime.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	m.renderTime.WithLabelValues(strings.Join(formats, ","), outcome(err)).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) { m.httpInFlight.Inc() }

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
