package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics exported by the monitor.
type Metrics struct {
	PacketsReceived *prometheus.CounterVec
	DecodeErrors    *prometheus.CounterVec
	BytesReceived   *prometheus.CounterVec
	ActiveConns     prometheus.Gauge
	FeedClients     prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		PacketsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tsl_packets_received_total",
			Help: "Total number of TSL packets received",
		}, []string{"transport", "protocol"}),
		DecodeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tsl_decode_errors_total",
			Help: "Total number of packets that failed to decode",
		}, []string{"transport"}),
		BytesReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tsl_bytes_received_total",
			Help: "Total bytes received from the transports",
		}, []string{"transport"}),
		ActiveConns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tsl_active_tcp_connections",
			Help: "Current number of open TCP connections",
		}),
		FeedClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tsl_feed_clients",
			Help: "Current number of connected web feed clients",
		}),
	}
}

// RecordPacket records one packet event for a transport.
func (m *Metrics) RecordPacket(transport string, protocol string, decodeFailed bool, bytes int) {
	m.PacketsReceived.WithLabelValues(transport, protocol).Inc()
	m.BytesReceived.WithLabelValues(transport).Add(float64(bytes))
	if decodeFailed {
		m.DecodeErrors.WithLabelValues(transport).Inc()
	}
}
