package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type dispatchMetrics struct {
	attemptsTotal   *prometheus.CounterVec
	deliveriesTotal *prometheus.CounterVec
	sendLatency     *prometheus.HistogramVec
	queueDepth      prometheus.Gauge
}

var dispatchMetricsSingleton = sync.OnceValue(func() *dispatchMetrics {
	return &dispatchMetrics{
		attemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "staff_absence",
			Subsystem: "dispatch",
			Name:      "attempts_total",
			Help:      "Total number of transport send attempts.",
		}, []string{"channel", "result"}),
		deliveriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "staff_absence",
			Subsystem: "dispatch",
			Name:      "deliveries_total",
			Help:      "Total number of messages delivered or given up on.",
		}, []string{"channel", "result"}),
		sendLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "staff_absence",
			Subsystem: "dispatch",
			Name:      "send_latency_seconds",
			Help:      "Latency of single transport send attempts.",
			Buckets: []float64{
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10,
			},
		}, []string{"channel", "result"}),
		queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "staff_absence",
			Subsystem: "dispatch",
			Name:      "queue_depth",
			Help:      "Messages waiting for a dispatch worker.",
		}),
	}
})

func getDispatchMetrics() *dispatchMetrics {
	return dispatchMetricsSingleton()
}
