package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "liga"

// Metrics holds the Prometheus collectors of the service.
// A nil *Metrics is valid and records nothing.
// ⭐ SSOT: 메트릭 정의는 여기서만
type Metrics struct {
	registry *prometheus.Registry

	recomputes        *prometheus.CounterVec
	recomputeDuration *prometheus.HistogramVec
	rankedPlayers     *prometheus.GaugeVec
	cacheLookups      *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	liveClients       prometheus.Gauge
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_total",
			Help:      "Standings recomputations by trigger and result.",
		}, []string{"trigger", "result"}),
		recomputeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Duration of one division recompute (load, compute, save).",
			Buckets:   prometheus.DefBuckets,
		}, []string{"trigger"}),
		rankedPlayers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ranked_players",
			Help:      "Players in the latest ranking of a division, by eligibility.",
		}, []string{"stage", "division", "eligible"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "standings_cache_lookups_total",
			Help:      "Standings cache lookups by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status class.",
		}, []string{"route", "status"}),
		liveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_clients",
			Help:      "Connected live standings websocket clients.",
		}),
	}

	registry.MustRegister(
		m.recomputes,
		m.recomputeDuration,
		m.rankedPlayers,
		m.cacheLookups,
		m.httpRequests,
		m.liveClients,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRecompute records one division recompute
func (m *Metrics) ObserveRecompute(trigger string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.recomputes.WithLabelValues(trigger, result).Inc()
	m.recomputeDuration.WithLabelValues(trigger).Observe(elapsed.Seconds())
}

// SetRankedPlayers records the population of a division's latest ranking
func (m *Metrics) SetRankedPlayers(stageID, divisionID string, eligible, ineligible int) {
	if m == nil {
		return
	}
	m.rankedPlayers.WithLabelValues(stageID, divisionID, "true").Set(float64(eligible))
	m.rankedPlayers.WithLabelValues(stageID, divisionID, "false").Set(float64(ineligible))
}

// CacheLookup records a standings cache hit or miss
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// HTTPRequest records one served request
func (m *Metrics) HTTPRequest(route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, statusClass(status)).Inc()
}

// LiveClients sets the number of connected websocket clients
func (m *Metrics) LiveClients(n int) {
	if m == nil {
		return
	}
	m.liveClients.Set(float64(n))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
