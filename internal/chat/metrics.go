package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	messages *prometheus.CounterVec
	clients  prometheus.Gauge
}

// newMetrics registers the chat metrics. A nil registerer disables them;
// all methods are nil-safe.
func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &metrics{
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatline",
			Name:      "messages_total",
			Help:      "Messages dispatched, by kind.",
		}, []string{"kind"}),
		clients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "chatline",
			Name:      "connected_clients",
			Help:      "Currently connected websocket clients.",
		}),
	}
}

func (mt *metrics) message(kind string) {
	if mt == nil {
		return
	}
	mt.messages.WithLabelValues(kind).Inc()
}

func (mt *metrics) setClients(n int) {
	if mt == nil {
		return
	}
	mt.clients.Set(float64(n))
}
