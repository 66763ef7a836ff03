package inbound

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type inboundMetrics struct {
	eventsTotal    *prometheus.CounterVec
	handleDuration prometheus.Histogram
	queueDepth     prometheus.Gauge
}

var inboundMetricsSingleton = sync.OnceValue(func() *inboundMetrics {
	return &inboundMetrics{
		eventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "staff_absence",
			Subsystem: "inbound",
			Name:      "events_total",
			Help:      "Inbound events by how they were handled.",
		}, []string{"result"}),
		handleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "staff_absence",
			Subsystem: "inbound",
			Name:      "handle_duration_seconds",
			Help:      "Time spent handling one inbound event.",
			Buckets:   prometheus.DefBuckets,
		}),
		queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "staff_absence",
			Subsystem: "inbound",
			Name:      "queue_depth",
			Help:      "Events waiting for an inbound worker.",
		}),
	}
})
