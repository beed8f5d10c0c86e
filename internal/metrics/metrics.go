package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the relay's Prometheus instruments.
type Metrics struct {
	MessagesTotal    prometheus.Counter
	InvalidTotal     prometheus.Counter
	LapsTotal        prometheus.Counter
	TelemetryDropped prometheus.Counter
	ActiveAgents     prometheus.Gauge
	Viewers          prometheus.Gauge
}

// New registers the relay's instruments against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Total number of messages received from agent connections",
		}),
		InvalidTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_messages_invalid_total",
			Help: "Total number of malformed messages rejected",
		}),
		LapsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_laps_recorded_total",
			Help: "Total number of laps appended to the ledger",
		}),
		TelemetryDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_telemetry_dropped_total",
			Help: "Total number of telemetry events dropped for slow viewers",
		}),
		ActiveAgents: factory.NewGauge(prometheus.GaugeOpts{
			Name: "relay_active_agents",
			Help: "Number of registered agent sessions",
		}),
		Viewers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "relay_viewers",
			Help: "Number of attached feed subscribers",
		}),
	}
}
