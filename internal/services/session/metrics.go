package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"saxiib/internal/domain"
)

// Metrics counts session activity.
type Metrics struct {
	Messages *prometheus.CounterVec
	Connects prometheus.Counter
	Dropped  prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Messages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saxiib",
			Name:      "messages_total",
			Help:      "Messages appended to the log, by direction and type.",
		}, []string{"direction", "kind"}),
		Connects: f.NewCounter(prometheus.CounterOpts{
			Namespace: "saxiib",
			Name:      "session_connects_total",
			Help:      "Outbound connection attempts.",
		}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "saxiib",
			Name:      "frames_dropped_total",
			Help:      "Inbound frames ignored as unknown or malformed.",
		}),
	}
}

func (m *Metrics) message(status domain.MessageStatus, kind domain.MessageKind) {
	m.Messages.WithLabelValues(string(status), string(kind)).Inc()
}
