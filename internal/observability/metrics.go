package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "log",
		Name:      "workouts_created_total",
		Help:      "Number of workouts added from form submissions, labeled by kind.",
	}, []string{"kind"})

	workoutsRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "log",
		Name:      "workouts_removed_total",
		Help:      "Number of workouts removed by delete or reset.",
	})

	liveWorkouts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workoutmap",
		Subsystem: "log",
		Name:      "live_workouts",
		Help:      "Number of workouts currently in the log.",
	})

	validationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "form",
		Name:      "validation_failures_total",
		Help:      "Number of rejected form submissions, labeled by field.",
	}, []string{"field"})

	snapshotCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "storage",
		Name:      "snapshots_total",
		Help:      "Number of slot writes, labeled by operation and result.",
	}, []string{"op", "result"})

	lastSnapshotGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workoutmap",
		Subsystem: "storage",
		Name:      "last_snapshot_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful slot write.",
	})
)

func init() {
	prometheus.MustRegister(workoutsCreated, workoutsRemoved, liveWorkouts, validationFailures, snapshotCounter, lastSnapshotGauge)
}

// RecordWorkoutCreated counts a new workout of the given kind.
func RecordWorkoutCreated(kind string) {
	workoutsCreated.WithLabelValues(kind).Inc()
}

// RecordWorkoutsRemoved counts removed workouts.
func RecordWorkoutsRemoved(n int) {
	workoutsRemoved.Add(float64(n))
}

// SetLiveWorkouts updates the live workout gauge.
func SetLiveWorkouts(n int) {
	liveWorkouts.Set(float64(n))
}

// RecordValidationFailure counts a rejected submission.
func RecordValidationFailure(field string) {
	validationFailures.WithLabelValues(field).Inc()
}

// RecordSnapshot counts a slot write ("save" or "clear") and its outcome.
func RecordSnapshot(op string, err error, ts time.Time) {
	if err != nil {
		snapshotCounter.WithLabelValues(op, "error").Inc()
		return
	}
	snapshotCounter.WithLabelValues(op, "ok").Inc()
	if !ts.IsZero() {
		lastSnapshotGauge.Set(float64(ts.Unix()))
	}
}
