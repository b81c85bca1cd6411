// Package metrics exposes Prometheus collectors for the panel sync layer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Slice names label per-data-slice fetch metrics.
const (
	SliceChannels = "channels"
	SliceConfig   = "config"
	SliceStatus   = "status"
	SliceLogs     = "logs"
	SlicePreview  = "preview"
)

type Recorder interface {
	ObserveFetch(slice string, duration time.Duration, err error)
	IncPushEvents()
	AddMergedChannels(n int)
	SetConnected(connected bool)
	IncCommand(command string, success bool)
	IncPreviewCache(hit bool)
	SetBreakerOpen(name string, open bool)
	Handler() http.Handler
}

type PromRecorder struct {
	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	pushEvents     prometheus.Counter
	mergedChannels prometheus.Counter
	connected      prometheus.Gauge
	commands       *prometheus.CounterVec
	previewCache   *prometheus.CounterVec
	breakerOpen    *prometheus.GaugeVec
	gatherer       prometheus.Gatherer
}

// New returns a Prometheus-backed recorder, or a no-op one when disabled.
// channelCount feeds a gauge read at scrape time and may be nil.
func New(enabled bool, reg *prometheus.Registry, channelCount func() int) Recorder {
	if !enabled {
		return Noop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	m := &PromRecorder{
		fetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_fetch_total",
			Help: "Total number of backend fetches per data slice",
		}, []string{"slice", "result"}),

		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "panel_fetch_duration_seconds",
			Help:    "Backend fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"slice"}),

		pushEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "panel_push_events_total",
			Help: "Total number of status_update push events received",
		}),

		mergedChannels: factory.NewCounter(prometheus.CounterOpts{
			Name: "panel_push_merged_channels_total",
			Help: "Total number of channel deltas merged from push events",
		}),

		connected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "panel_push_connected",
			Help: "1 while the push connection is up",
		}),

		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_commands_total",
			Help: "Operator commands sent to the backend",
		}, []string{"command", "result"}),

		previewCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_preview_cache_total",
			Help: "Preview cache lookups",
		}, []string{"result"}),

		breakerOpen: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "panel_circuit_open",
			Help: "1 while the named circuit breaker is open",
		}, []string{"name"}),

		gatherer: reg,
	}

	if channelCount != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "panel_channels",
			Help: "Channels currently held by the panel store",
		}, func() float64 {
			return float64(channelCount())
		})
	}

	return m
}

func (m *PromRecorder) ObserveFetch(slice string, duration time.Duration, err error) {
	m.fetchTotal.WithLabelValues(slice, resultLabel(err == nil)).Inc()
	m.fetchDuration.WithLabelValues(slice).Observe(duration.Seconds())
}

func (m *PromRecorder) IncPushEvents() {
	m.pushEvents.Inc()
}

func (m *PromRecorder) AddMergedChannels(n int) {
	if n > 0 {
		m.mergedChannels.Add(float64(n))
	}
}

func (m *PromRecorder) SetConnected(connected bool) {
	m.connected.Set(boolGauge(connected))
}

func (m *PromRecorder) IncCommand(command string, success bool) {
	m.commands.WithLabelValues(command, resultLabel(success)).Inc()
}

func (m *PromRecorder) IncPreviewCache(hit bool) {
	if hit {
		m.previewCache.WithLabelValues("hit").Inc()
		return
	}
	m.previewCache.WithLabelValues("miss").Inc()
}

func (m *PromRecorder) SetBreakerOpen(name string, open bool) {
	m.breakerOpen.WithLabelValues(name).Set(boolGauge(open))
}

func (m *PromRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Noop returns a recorder that discards everything.
func Noop() Recorder {
	return noopRecorder{}
}

type noopRecorder struct{}

func (noopRecorder) ObserveFetch(_ string, _ time.Duration, _ error) {}
func (noopRecorder) IncPushEvents()                                  {}
func (noopRecorder) AddMergedChannels(_ int)                         {}
func (noopRecorder) SetConnected(_ bool)                             {}
func (noopRecorder) IncCommand(_ string, _ bool)                     {}
func (noopRecorder) IncPreviewCache(_ bool)                          {}
func (noopRecorder) SetBreakerOpen(_ string, _ bool)                 {}
func (noopRecorder) Handler() http.Handler                           { return http.NotFoundHandler() }
