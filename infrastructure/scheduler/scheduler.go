// Package scheduler moves due payment intents into the job queue. A single
// tick claims due rows and enqueues their jobs in one transaction, then runs
// queue maintenance: promoting delayed retries and requeueing jobs whose
// worker lease expired.
package scheduler

import (
	"context"
	"time"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/interfaces"
	"crosspay-engine/infrastructure/metrics"
)

// Default scheduler tuning.
const (
	DefaultTickInterval = 5 * time.Second
	DefaultClaimBatch   = 50
	DefaultMaxAttempts  = 3
)

// Config holds scheduler tuning.
type Config struct {
	TickInterval time.Duration
	ClaimBatch   int
	MaxAttempts  int
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.ClaimBatch <= 0 {
		c.ClaimBatch = DefaultClaimBatch
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// paymentScheduler implements the PaymentScheduler interface.
type paymentScheduler struct {
	cfg     Config
	uowf    interfaces.UnitOfWorkFactory
	jobs    interfaces.JobRepository
	metrics *metrics.Metrics
	logger  interfaces.Logger
}

// NewPaymentScheduler creates a new payment scheduler.
func NewPaymentScheduler(
	cfg Config,
	uowf interfaces.UnitOfWorkFactory,
	jobs interfaces.JobRepository,
	m *metrics.Metrics,
	logger interfaces.Logger,
) interfaces.PaymentScheduler {
	return &paymentScheduler{
		cfg:     cfg.withDefaults(),
		uowf:    uowf,
		jobs:    jobs,
		metrics: m,
		logger:  logger,
	}
}

// DiscoverAndEnqueue claims due payments and enqueues one job per claimed
// row. Claim and enqueue share a transaction: either a payment is claimed
// with its job durably queued, or neither happened and the next tick tries
// again. A competing scheduler instance claiming concurrently wins disjoint
// rows, so no payment is enqueued twice.
func (s *paymentScheduler) DiscoverAndEnqueue(ctx context.Context) (int, error) {
	uow, err := s.uowf.Begin(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	claimed, err := uow.Payments().ClaimDue(ctx, now, s.cfg.ClaimBatch)
	if err != nil {
		_ = uow.Rollback()
		return 0, err
	}
	if len(claimed) == 0 {
		_ = uow.Rollback()
		return 0, nil
	}

	for i := range claimed {
		payment := &claimed[i]

		// Jobs dispatch oldest due time first.
		job, err := entities.NewJob(payment.RouteRequest(), payment.ScheduledFor.Unix(), s.cfg.MaxAttempts)
		if err != nil {
			_ = uow.Rollback()
			return 0, err
		}
		if err := uow.Jobs().Create(ctx, job); err != nil {
			_ = uow.Rollback()
			return 0, err
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, err
	}

	s.metrics.AddPaymentsClaimed(len(claimed))
	s.logger.Info("due payments dispatched", "count", len(claimed))
	return len(claimed), nil
}

// Run ticks discovery and maintenance until the context is cancelled.
func (s *paymentScheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"tick", s.cfg.TickInterval.String(),
		"claim_batch", s.cfg.ClaimBatch,
	)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *paymentScheduler) tick(ctx context.Context) {
	start := time.Now()

	if _, err := s.DiscoverAndEnqueue(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("payment discovery failed", "error", err)
	}
	s.maintain(ctx)

	s.metrics.ObserveTickDuration(time.Since(start).Seconds())
}

// maintain promotes delayed retries whose backoff elapsed and returns jobs
// with expired leases to the pool, then refreshes the queue depth gauges.
func (s *paymentScheduler) maintain(ctx context.Context) {
	now := time.Now().UTC()

	promoted, err := s.jobs.PromoteDelayed(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("failed to promote delayed jobs", "error", err)
		}
	} else if promoted > 0 {
		s.logger.Debug("delayed jobs promoted", "count", promoted)
	}

	requeued, err := s.jobs.RequeueStale(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("failed to requeue stale jobs", "error", err)
		}
	} else if requeued > 0 {
		s.metrics.AddJobsRequeued(requeued)
		s.logger.Warn("stale jobs returned to the queue", "count", requeued)
	}

	for _, state := range []entities.JobState{
		entities.JobStateWaiting,
		entities.JobStateActive,
		entities.JobStateDelayed,
		entities.JobStateFailed,
	} {
		n, err := s.jobs.CountByState(ctx, state)
		if err != nil {
			continue
		}
		s.metrics.SetQueueDepth(string(state), float64(n))
	}
}
