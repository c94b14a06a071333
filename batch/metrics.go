package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsRequested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadnav_batch_jobs_requested_total",
		Help: "Route jobs accepted by batch processors",
	})

	jobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadnav_batch_jobs_completed_total",
		Help: "Route jobs planned by batch workers",
	})

	// callbacksDispatched and callbacksDropped split completed results by
	// whether the target was still alive at dispatch.
	callbacksDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadnav_batch_callbacks_dispatched_total",
		Help: "Completed results delivered to their callback",
	})

	callbacksDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadnav_batch_callbacks_dropped_total",
		Help: "Completed results dropped because the target was released",
	})

	planDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quadnav_batch_plan_duration_seconds",
		Help:    "Time spent planning one route job",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	})
)
