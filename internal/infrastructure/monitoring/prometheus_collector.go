package monitoring

import (
	"beamcast/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector implements ports.Metrics for the relay pipeline.
type PrometheusCollector struct {
	connectionsActive prometheus.Gauge
	roomsActive       prometheus.Gauge

	joinsTotal   *prometheus.CounterVec
	relayedTotal *prometheus.CounterVec
	droppedTotal *prometheus.CounterVec

	payloadBytes prometheus.Histogram
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		connectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "beamcast_connections_active",
			Help: "Number of live WebSocket connections",
		}),

		roomsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "beamcast_rooms_active",
			Help: "Number of rooms with at least one member",
		}),

		joinsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "beamcast_joins_total",
			Help: "Completed join registrations by role",
		}, []string{"role"}),

		relayedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "beamcast_envelopes_relayed_total",
			Help: "Signal envelopes relayed between peers by direction",
		}, []string{"direction"}),

		droppedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "beamcast_envelopes_dropped_total",
			Help: "Envelopes dropped instead of relayed by reason",
		}, []string{"reason"}),

		payloadBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "beamcast_signal_payload_bytes",
			Help:    "Size of relayed negotiation payloads",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}),
	}
}

func (p *PrometheusCollector) ConnectionOpened() {
	p.connectionsActive.Inc()
}

func (p *PrometheusCollector) ConnectionClosed() {
	p.connectionsActive.Dec()
}

func (p *PrometheusCollector) JoinRecorded(role domain.Role) {
	p.joinsTotal.WithLabelValues(string(role)).Inc()
}

func (p *PrometheusCollector) EnvelopeRelayed(direction string, payloadBytes int) {
	p.relayedTotal.WithLabelValues(direction).Inc()
	p.payloadBytes.Observe(float64(payloadBytes))
}

func (p *PrometheusCollector) EnvelopeDropped(reason string) {
	p.droppedTotal.WithLabelValues(reason).Inc()
}

func (p *PrometheusCollector) SetRooms(n int) {
	p.roomsActive.Set(float64(n))
}
