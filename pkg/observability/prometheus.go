package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stackgrid"

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	opDuration  *prometheus.HistogramVec
	vetoes      *prometheus.CounterVec
	displaced   prometheus.Histogram
	syncChanges *prometheus.CounterVec

	gestures      *prometheus.CounterVec
	layoutChanges prometheus.Counter
	layoutItems   prometheus.Gauge

	cacheOps   *prometheus.CounterVec
	cacheBytes prometheus.Counter

	requests    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
	reqErrors   *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them on reg.
// It panics if a collector is already registered, like MustRegister.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of layout operations.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"op"}),
		vetoes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vetoes_total",
			Help:      "Moves and resizes rejected as a whole.",
		}, []string{"op"}),
		displaced: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "move_displaced_items",
			Help:      "Items displaced by a single move.",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
		syncChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_items_total",
			Help:      "Items added or removed by synchronization.",
		}, []string{"change"}),
		gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gestures_total",
			Help:      "Gesture steps handled by sessions.",
		}, []string{"kind", "phase"}),
		layoutChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_changes_total",
			Help:      "Layout change notifications.",
		}),
		layoutItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layout_items",
			Help:      "Items in the most recently notified layout.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by route and status.",
		}, []string{"method", "route", "status"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "HTTP requests that failed with an error.",
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		p.opDuration, p.vetoes, p.displaced, p.syncChanges,
		p.gestures, p.layoutChanges, p.layoutItems,
		p.cacheOps, p.cacheBytes,
		p.requests, p.reqDuration, p.reqErrors,
	)
	return p
}

func (p *Prometheus) OnCompact(_ context.Context, _ string, _ int, d time.Duration) {
	p.opDuration.WithLabelValues("compact").Observe(d.Seconds())
}

func (p *Prometheus) OnMove(_ context.Context, _ string, displaced int, vetoed bool, d time.Duration) {
	p.opDuration.WithLabelValues("move").Observe(d.Seconds())
	if vetoed {
		p.vetoes.WithLabelValues("move").Inc()
		return
	}
	p.displaced.Observe(float64(displaced))
}

func (p *Prometheus) OnResize(_ context.Context, _ string, vetoed bool, d time.Duration) {
	p.opDuration.WithLabelValues("resize").Observe(d.Seconds())
	if vetoed {
		p.vetoes.WithLabelValues("resize").Inc()
	}
}

func (p *Prometheus) OnSync(_ context.Context, added, removed int, d time.Duration) {
	p.opDuration.WithLabelValues("sync").Observe(d.Seconds())
	p.syncChanges.WithLabelValues("added").Add(float64(added))
	p.syncChanges.WithLabelValues("removed").Add(float64(removed))
}

func (p *Prometheus) OnGesture(_ context.Context, kind, phase string) {
	p.gestures.WithLabelValues(kind, phase).Inc()
}

func (p *Prometheus) OnLayoutChange(_ context.Context, items int) {
	p.layoutChanges.Inc()
	p.layoutItems.Set(float64(items))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.reqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method, route string, _ error) {
	p.reqErrors.WithLabelValues(method, route).Inc()
}

var (
	_ EngineHooks  = (*Prometheus)(nil)
	_ SessionHooks = (*Prometheus)(nil)
	_ CacheHooks   = (*Prometheus)(nil)
	_ HTTPHooks    = (*Prometheus)(nil)
)
