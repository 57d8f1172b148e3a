package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/tileorg/pkg/observability"
)

// Metrics holds the Prometheus collectors of the server. It implements the
// pool, layout and cache hooks so library code reports into it.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	slotsAcquired    *prometheus.CounterVec
	slotsReleased    prometheus.Counter
	capacityExceeded prometheus.Counter
	passesTotal      *prometheus.CounterVec
	passDuration     prometheus.Histogram
	visibleTiles     prometheus.Gauge
	cacheOps         *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tileorg_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		slotsAcquired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tileorg_slots_acquired_total",
			Help: "Streams bound to a slot; reused is true when the stream already held one",
		}, []string{"reused"}),
		slotsReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tileorg_slots_released_total",
			Help: "Slots freed by stream removal",
		}),
		capacityExceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tileorg_capacity_exceeded_total",
			Help: "Binds refused because every slot was taken",
		}),
		passesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tileorg_layout_passes_total",
			Help: "Layout passes by mode",
		}, []string{"mode"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tileorg_layout_pass_duration_seconds",
			Help:    "Duration of a layout pass",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		visibleTiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tileorg_layout_visible_tiles",
			Help: "Visible tiles in the most recent layout pass",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tileorg_cache_operations_total",
			Help: "Cache lookups and writes by key type and result",
		}, []string{"key_type", "result"}),
	}
	m.registry.MustRegister(
		m.requestsTotal,
		m.slotsAcquired,
		m.slotsReleased,
		m.capacityExceeded,
		m.passesTotal,
		m.passDuration,
		m.visibleTiles,
		m.cacheOps,
	)
	return m
}

// Install registers m as the global pool, layout and cache hooks.
func (m *Metrics) Install() {
	observability.SetPoolHooks(m)
	observability.SetLayoutHooks(m)
	observability.SetCacheHooks(m)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests and embedding.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

func (m *Metrics) observeRequest(route string, status int) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// =============================================================================
// Hooks
// =============================================================================

func (m *Metrics) OnAcquire(_ context.Context, _ int, reused bool) {
	m.slotsAcquired.WithLabelValues(strconv.FormatBool(reused)).Inc()
}

func (m *Metrics) OnRelease(context.Context, int) { m.slotsReleased.Inc() }

func (m *Metrics) OnCapacityExceeded(context.Context, int) { m.capacityExceeded.Inc() }

func (m *Metrics) OnPassStart(_ context.Context, visible int) {
	m.visibleTiles.Set(float64(visible))
}

func (m *Metrics) OnPassComplete(_ context.Context, mode string, _ int, d time.Duration) {
	m.passesTotal.WithLabelValues(mode).Inc()
	m.passDuration.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
}

var (
	_ observability.PoolHooks   = (*Metrics)(nil)
	_ observability.LayoutHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
)
