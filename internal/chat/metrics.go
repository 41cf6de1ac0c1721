package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_clients",
		Help: "Number of currently connected clients",
	})

	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total input lines processed by command type",
	}, []string{"type"})

	EventProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_event_processing_seconds",
		Help:    "Time to process each command type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})

	DeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_deliveries_total",
		Help: "Lines relayed to peer sessions by kind and result",
	}, []string{"kind", "result"})

	RejectedConnections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_rejected_connections_total",
		Help: "Connections refused because the session pool was full",
	})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(EventProcessingDuration)
	prometheus.MustRegister(DeliveriesTotal)
	prometheus.MustRegister(RejectedConnections)
}
