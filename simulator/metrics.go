package simulator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedsim_records_generated_total",
		Help: "The total number of records written to the buffer",
	}, []string{"source"})

	cycleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedsim_cycle_errors_total",
		Help: "The total number of failed generation cycles",
	}, []string{"op"})

	bufferRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feedsim_buffer_records",
		Help: "The number of records in the buffer after the last write",
	})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedsim_cycle_duration_seconds",
		Help:    "Duration of a generate, merge and write cycle",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // Start at 0.5ms, double each bucket
	})
)
