// Package metrics provides Prometheus metrics for monitoring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. All methods are safe on a nil
// receiver so components can run without metrics wired in.
type Metrics struct {
	// Scheduler metrics
	paymentsClaimed prometheus.Counter
	tickDuration    prometheus.Histogram

	// Queue metrics
	jobsEnqueued prometheus.Counter
	jobsStarted  prometheus.Counter
	jobsComplete prometheus.Counter
	jobsRetried  prometheus.Counter
	jobsFailed   prometheus.Counter
	jobsRequeued prometheus.Counter
	jobDuration  prometheus.Histogram
	queueDepth   *prometheus.GaugeVec

	// Execution metrics
	bridgeLegs  *prometheus.CounterVec
	paymentLegs *prometheus.CounterVec

	// Confirmation tracking metrics
	activeWatches prometheus.Gauge
	watchOutcomes *prometheus.CounterVec

	// Notification metrics
	notificationsSent   prometheus.Counter
	notificationsFailed prometheus.Counter
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		paymentsClaimed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crosspay_payments_claimed_total",
				Help: "Total number of due payments claimed by the scheduler",
			},
		),
		tickDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crosspay_scheduler_tick_seconds",
				Help:    "Duration of scheduler ticks",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
		),
		jobsEnqueued: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crosspay_jobs_enqueued_total",
				Help: "Total number of jobs enqueued",
			},
		),
		jobsStarted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crosspay_jobs_started_total",
				Help: "Total number of job attempts started by workers",
			},
		),
		jobsComplete: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crosspay_jobs_completed_total",
				Help: "Total number of jobs completed successfully",
			},
		),
		jobsRetried: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crosspay_jobs_retried_total",
				Help: "Total number of job attempts scheduled for retry",
			},
		),
		jobsFailed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crosspay_jobs_failed_total",
				Help: "Total number of jobs failed terminally",
			},
		),
		jobsRequeued: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crosspay_jobs_requeued_total",
				Help: "Total number of stale jobs returned to the queue",
			},
		),
		jobDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crosspay_job_duration_seconds",
				Help:    "Duration of job attempts",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		queueDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crosspay_queue_depth",
				Help: "Number of jobs per queue state",
			},
			[]string{"state"},
		),
		bridgeLegs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crosspay_bridge_legs_total",
				Help: "Total number of bridge legs by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		paymentLegs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crosspay_payment_legs_total",
				Help: "Total number of payment legs by chain and outcome",
			},
			[]string{"chain", "outcome"},
		),
		activeWatches: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crosspay_active_watches",
				Help: "Number of transactions currently being watched",
			},
		),
		watchOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crosspay_watch_outcomes_total",
				Help: "Total number of confirmation watches by terminal outcome",
			},
			[]string{"outcome"},
		),
		notificationsSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crosspay_notifications_sent_total",
				Help: "Total number of notifications sent",
			},
		),
		notificationsFailed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crosspay_notifications_failed_total",
				Help: "Total number of failed notifications",
			},
		),
	}
}

// ObserveTickDuration records the duration of a scheduler tick.
func (m *Metrics) ObserveTickDuration(seconds float64) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(seconds)
}

// AddPaymentsClaimed adds to the claimed payment counter.
func (m *Metrics) AddPaymentsClaimed(n int) {
	if m == nil {
		return
	}
	m.paymentsClaimed.Add(float64(n))
}

// IncJobsEnqueued increments the enqueued job counter.
func (m *Metrics) IncJobsEnqueued() {
	if m == nil {
		return
	}
	m.jobsEnqueued.Inc()
}

// IncJobsStarted increments the started attempt counter.
func (m *Metrics) IncJobsStarted() {
	if m == nil {
		return
	}
	m.jobsStarted.Inc()
}

// IncJobsCompleted increments the completed job counter.
func (m *Metrics) IncJobsCompleted() {
	if m == nil {
		return
	}
	m.jobsComplete.Inc()
}

// IncJobsRetried increments the retried attempt counter.
func (m *Metrics) IncJobsRetried() {
	if m == nil {
		return
	}
	m.jobsRetried.Inc()
}

// IncJobsFailed increments the terminally failed job counter.
func (m *Metrics) IncJobsFailed() {
	if m == nil {
		return
	}
	m.jobsFailed.Inc()
}

// AddJobsRequeued adds to the stale requeue counter.
func (m *Metrics) AddJobsRequeued(n int64) {
	if m == nil {
		return
	}
	m.jobsRequeued.Add(float64(n))
}

// ObserveJobDuration records the duration of a job attempt.
func (m *Metrics) ObserveJobDuration(seconds float64) {
	if m == nil {
		return
	}
	m.jobDuration.Observe(seconds)
}

// SetQueueDepth records the number of jobs in a queue state.
func (m *Metrics) SetQueueDepth(state string, n float64) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(state).Set(n)
}

// IncBridgeLeg counts a bridge leg outcome for a provider.
func (m *Metrics) IncBridgeLeg(provider, outcome string) {
	if m == nil {
		return
	}
	m.bridgeLegs.WithLabelValues(provider, outcome).Inc()
}

// IncPaymentLeg counts a payment leg outcome on a chain.
func (m *Metrics) IncPaymentLeg(chain, outcome string) {
	if m == nil {
		return
	}
	m.paymentLegs.WithLabelValues(chain, outcome).Inc()
}

// SetActiveWatches records the number of in-flight confirmation watches.
func (m *Metrics) SetActiveWatches(n int) {
	if m == nil {
		return
	}
	m.activeWatches.Set(float64(n))
}

// IncWatchOutcome counts a terminal confirmation watch outcome.
func (m *Metrics) IncWatchOutcome(outcome string) {
	if m == nil {
		return
	}
	m.watchOutcomes.WithLabelValues(outcome).Inc()
}

// IncNotificationsSent increments the sent notification counter.
func (m *Metrics) IncNotificationsSent() {
	if m == nil {
		return
	}
	m.notificationsSent.Inc()
}

// IncNotificationsFailed increments the failed notification counter.
func (m *Metrics) IncNotificationsFailed() {
	if m == nil {
		return
	}
	m.notificationsFailed.Inc()
}
