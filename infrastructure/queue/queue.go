// Package queue implements the durable job queue and its worker pool.
// Jobs live in the database, workers claim them with a lease, and failed
// attempts are retried with exponential backoff until the attempt budget
// runs out.
package queue

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"crosspay-engine/domain/dto"
	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"crosspay-engine/infrastructure/metrics"
	"github.com/google/uuid"
)

// Default worker pool tuning.
const (
	DefaultWorkers       = 4
	DefaultPollInterval  = 500 * time.Millisecond
	DefaultLeaseDuration = 2 * time.Minute
	DefaultBackoffBase   = 2 * time.Second
	DefaultBackoffCap    = 5 * time.Minute
)

// Config holds worker pool tuning.
type Config struct {
	Workers       int
	PollInterval  time.Duration
	LeaseDuration time.Duration
	BackoffBase   time.Duration
	BackoffCap    time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.LeaseDuration <= 0 {
		c.LeaseDuration = DefaultLeaseDuration
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = DefaultBackoffCap
	}
	return c
}

// jobQueue implements the JobQueue interface.
type jobQueue struct {
	cfg      Config
	jobs     interfaces.JobRepository
	payments interfaces.ScheduledPaymentRepository
	handler  interfaces.JobHandler
	notifier interfaces.Notifier
	metrics  *metrics.Metrics
	logger   interfaces.Logger
	poolID   string

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewJobQueue creates a new durable job queue backed by the job repository.
func NewJobQueue(
	cfg Config,
	jobs interfaces.JobRepository,
	payments interfaces.ScheduledPaymentRepository,
	handler interfaces.JobHandler,
	notifier interfaces.Notifier,
	m *metrics.Metrics,
	logger interfaces.Logger,
) interfaces.JobQueue {
	return &jobQueue{
		cfg:      cfg.withDefaults(),
		jobs:     jobs,
		payments: payments,
		handler:  handler,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		poolID:   uuid.NewString()[:8],
	}
}

// Enqueue persists a job in the waiting state.
func (q *jobQueue) Enqueue(ctx context.Context, job *entities.Job) error {
	if err := q.jobs.Create(ctx, job); err != nil {
		return err
	}

	q.metrics.IncJobsEnqueued()
	q.logger.Info("job enqueued",
		"job_id", job.ID.String(),
		"payment_id", job.PaymentID.String(),
		"priority", job.Priority,
	)
	return nil
}

// Start launches the worker pool.
func (q *jobQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cancel != nil {
		return errors.NewDomainError(errors.ErrInternal, "worker pool already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	for i := 1; i <= q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(runCtx, fmt.Sprintf("%s-%d", q.poolID, i))
	}

	q.logger.Info("worker pool started", "workers", q.cfg.Workers, "pool", q.poolID)
	return nil
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (q *jobQueue) Stop() {
	q.mu.Lock()
	cancel := q.cancel
	q.cancel = nil
	q.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	q.wg.Wait()
	q.logger.Info("worker pool stopped", "pool", q.poolID)
}

// worker polls for claimable jobs until the pool shuts down. Each tick
// drains the queue rather than taking a single job, so a backlog clears at
// handler speed instead of poll speed.
func (q *jobQueue) worker(ctx context.Context, workerID string) {
	defer q.wg.Done()

	q.logger.Debug("worker started", "worker", workerID)

	ticker := time.NewTicker(q.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			q.logger.Debug("worker shutting down", "worker", workerID)
			return
		case <-ticker.C:
			q.drain(ctx, workerID)
		}
	}
}

func (q *jobQueue) drain(ctx context.Context, workerID string) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := q.jobs.ClaimNext(ctx, workerID, q.cfg.LeaseDuration)
		if err != nil {
			if ctx.Err() == nil {
				q.logger.Error("failed to claim job", "worker", workerID, "error", err)
			}
			return
		}
		if job == nil {
			return
		}

		q.process(ctx, workerID, job)
	}
}

// process runs one claimed attempt and settles its outcome.
func (q *jobQueue) process(ctx context.Context, workerID string, job *entities.Job) {
	log := q.logger.WithFields(map[string]interface{}{
		"worker":     workerID,
		"job_id":     job.ID.String(),
		"payment_id": job.PaymentID.String(),
		"attempt":    job.Attempts,
	})
	log.Info("job attempt started")
	q.metrics.IncJobsStarted()

	start := time.Now()
	err := q.runHandler(ctx, job)
	q.metrics.ObserveJobDuration(time.Since(start).Seconds())

	if err == nil {
		if mErr := q.jobs.MarkCompleted(ctx, job.ID); mErr != nil {
			log.Error("failed to mark job completed", "error", mErr)
			return
		}
		q.metrics.IncJobsCompleted()
		log.Info("job completed", "duration", time.Since(start).String())
		return
	}

	q.settleFailure(ctx, log, job, err)
}

// runHandler shields the pool from handler panics. A panicking attempt is
// settled like any other failed attempt.
func (q *jobQueue) runHandler(ctx context.Context, job *entities.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewDomainError(errors.ErrInternal, fmt.Sprintf("job handler panic: %v", r))
		}
	}()
	return q.handler(ctx, job)
}

// settleFailure decides between retry and terminal failure. Only transient
// errors consume further attempts; everything else fails the job and its
// payment immediately.
func (q *jobQueue) settleFailure(ctx context.Context, log interfaces.Logger, job *entities.Job, jobErr error) {
	class := errors.Classify(jobErr)

	if errors.IsRetryable(jobErr) && !job.AttemptsExhausted() {
		delay := Backoff(q.cfg.BackoffBase, q.cfg.BackoffCap, job.Attempts)
		nextAttempt := time.Now().UTC().Add(delay)

		if dErr := q.jobs.Delay(ctx, job.ID, nextAttempt, jobErr.Error()); dErr != nil {
			log.Error("failed to delay job for retry", "error", dErr)
			return
		}
		if rErr := q.payments.RecordAttempt(ctx, job.PaymentID, job.Attempts, jobErr.Error()); rErr != nil {
			log.Warn("failed to record attempt on payment", "error", rErr)
		}

		q.metrics.IncJobsRetried()
		log.Warn("job attempt failed, retry scheduled",
			"class", string(class),
			"delay", delay.String(),
			"error", jobErr,
		)
		return
	}

	if fErr := q.jobs.MarkFailed(ctx, job.ID, jobErr.Error()); fErr != nil {
		log.Error("failed to mark job failed", "error", fErr)
		return
	}
	if uErr := q.payments.UpdateStatus(ctx, job.PaymentID, entities.PaymentStatusFailed, jobErr.Error()); uErr != nil {
		log.Error("failed to mark payment failed", "error", uErr)
	}

	q.metrics.IncJobsFailed()
	log.Error("job failed terminally",
		"class", string(class),
		"attempts", job.Attempts,
		"error", jobErr,
	)
	q.notifyFailure(ctx, job, jobErr)
}

func (q *jobQueue) notifyFailure(ctx context.Context, job *entities.Job, jobErr error) {
	if q.notifier == nil || !q.notifier.IsConfigured() {
		return
	}

	event := &dto.PaymentEvent{
		Kind:      dto.EventFailed,
		PaymentID: job.PaymentID,
		JobID:     job.ID,
		Detail:    jobErr.Error(),
		Timestamp: time.Now().UTC(),
	}
	if req, err := job.Request(); err == nil {
		event.OwnerID = req.OwnerID
	}

	if err := q.notifier.Notify(ctx, event); err != nil {
		q.metrics.IncNotificationsFailed()
		q.logger.Warn("failed to send failure notification",
			"job_id", job.ID.String(),
			"error", err,
		)
		return
	}
	q.metrics.IncNotificationsSent()
}

// Backoff returns the wait before re-running a job that has already made
// `attempts` attempts. The delay doubles with every further attempt, so
// the first retry waits exactly base.
func Backoff(base, max time.Duration, attempts int) time.Duration {
	if base <= 0 {
		base = DefaultBackoffBase
	}
	if max <= 0 {
		max = DefaultBackoffCap
	}
	if attempts < 1 {
		attempts = 1
	}

	delay := time.Duration(float64(base) * math.Pow(2, float64(attempts-1)))
	if delay <= 0 || delay > max {
		delay = max
	}
	return delay
}
