package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		sweepDurationSeconds,
		sweepRecordFailuresTotal,
		sweepSkippedTotal,
	)
}

var (
	sweepDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "renewal_sweep_duration_seconds",
			Help:    "Duration of one full renewal sweep.",
			Buckets: prometheus.DefBuckets,
		},
	)

	sweepRecordFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "renewal_sweep_record_failures_total",
			Help: "Subscriptions the sweep failed to transition; the sweep continues past them.",
		},
	)

	sweepSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "renewal_sweep_skipped_total",
			Help: "Sweep runs skipped because the previous run still held the lock.",
		},
	)
)

func ObserveSweepDuration(d time.Duration) { sweepDurationSeconds.Observe(d.Seconds()) }
func IncSweepRecordFailures()              { sweepRecordFailuresTotal.Inc() }
func IncSweepSkipped()                     { sweepSkippedTotal.Inc() }
