package monitoring

import (
	"roomrelay/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector implements ports.SignalMetrics.
type PrometheusCollector struct {
	roomsActive           prometheus.Gauge
	participantsConnected prometheus.Gauge
	connectionsTotal      prometheus.Counter

	eventsRoutedTotal  *prometheus.CounterVec
	routingMissesTotal *prometheus.CounterVec

	broadcastFanout    prometheus.Histogram
	connectionDuration prometheus.Histogram
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		roomsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "roomrelay_rooms_active",
			Help: "Number of rooms with at least one participant",
		}),

		participantsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "roomrelay_participants_connected",
			Help: "Number of participants currently registered in a room",
		}),

		connectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roomrelay_connections_total",
			Help: "Total number of signaling connections accepted",
		}),

		eventsRoutedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roomrelay_events_routed_total",
			Help: "Total number of signaling events delivered, by event type",
		}, []string{"event_type"}),

		routingMissesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roomrelay_routing_misses_total",
			Help: "Total number of events dropped because the target was not registered",
		}, []string{"event_type"}),

		broadcastFanout: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "roomrelay_broadcast_fanout",
			Help:    "Number of endpoints reached per room broadcast",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		connectionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "roomrelay_connection_duration_seconds",
			Help:    "Lifetime of signaling connections",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
}

func (p *PrometheusCollector) RecordEventRouted(eventType domain.EventType) {
	p.eventsRoutedTotal.WithLabelValues(string(eventType)).Inc()
}

func (p *PrometheusCollector) RecordRoutingMiss(eventType domain.EventType) {
	p.routingMissesTotal.WithLabelValues(string(eventType)).Inc()
}

func (p *PrometheusCollector) RecordBroadcastFanout(n int) {
	p.broadcastFanout.Observe(float64(n))
}

func (p *PrometheusCollector) SetRegistrySize(rooms, participants int) {
	p.roomsActive.Set(float64(rooms))
	p.participantsConnected.Set(float64(participants))
}

func (p *PrometheusCollector) RecordConnectionOpened() {
	p.connectionsTotal.Inc()
}

func (p *PrometheusCollector) RecordConnectionClosed(durationSeconds float64) {
	p.connectionDuration.Observe(durationSeconds)
}
