// Package metrics holds the Prometheus collectors for the background jobs.
// HTTP request metrics live with the monitoring middleware.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ChoresReset = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chores_reset_total",
			Help: "Chores flipped back to incomplete by a reset sweep",
		},
		[]string{"policy"},
	)
	ChoreResetFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chore_reset_failures_total",
			Help: "Chore or user reads and updates that failed during a sweep",
		},
		[]string{"policy"},
	)
	SweepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Wall time of a full reset sweep",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"policy"},
	)
	SnapshotsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshots_built_total",
			Help: "Progress snapshot builds by result",
		},
		[]string{"result"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(ChoresReset, ChoreResetFailures, SweepDuration, SnapshotsBuilt)
}
