package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "remindd"
	metricsSubsystem = "scheduler"
)

// Metrics holds Prometheus metrics for the scanner, escalation and
// pre-notification.
//
// Metrics:
//   - remindd_scheduler_reminders_fired_total
//   - remindd_scheduler_reminders_rescheduled_total
//   - remindd_scheduler_reminders_expired_total
//   - remindd_scheduler_prenotifications_total
//   - remindd_scheduler_scans_skipped_total
//   - remindd_scheduler_scan_errors_total
//   - remindd_scheduler_scan_duration_seconds
//   - remindd_scheduler_active_reminders
//   - remindd_scheduler_malformed_records_total
type Metrics struct {
	Fired            prometheus.Counter
	Rescheduled      prometheus.Counter
	Expired          prometheus.Counter
	PreNotified      prometheus.Counter
	SkippedScans     prometheus.Counter
	ScanErrors       prometheus.Counter
	ScanDuration     prometheus.Histogram
	Active           prometheus.Gauge
	MalformedRecords prometheus.Counter
}

// NewMetrics registers the scheduler metrics with reg. A nil reg creates
// unregistered metrics, which is what tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Fired: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "reminders_fired_total",
			Help:      "Total number of reminder announcements made by the scanner",
		}),
		Rescheduled: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "reminders_rescheduled_total",
			Help:      "Total number of reminders rescheduled for another announcement",
		}),
		Expired: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "reminders_expired_total",
			Help:      "Total number of reminders dropped after their last announcement",
		}),
		PreNotified: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "prenotifications_total",
			Help:      "Total number of early announcements",
		}),
		SkippedScans: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "scans_skipped_total",
			Help:      "Scans skipped because another scan was still running",
		}),
		ScanErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "scan_errors_total",
			Help:      "Scans that failed or panicked",
		}),
		ScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "scan_duration_seconds",
			Help:      "Duration of a due-reminder scan",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		Active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "active_reminders",
			Help:      "Triggered reminders that can still be canceled or snoozed",
		}),
		MalformedRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "malformed_records_total",
			Help:      "Stored reminders skipped because their timestamps could not be decoded",
		}),
	}
}
