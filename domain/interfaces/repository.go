package interfaces

import (
	"context"
	"time"

	"crosspay-engine/domain/entities"
	"github.com/google/uuid"
)

// ScheduledPaymentRepository handles scheduled payment persistence
type ScheduledPaymentRepository interface {
	// Create persists a new payment intent
	Create(ctx context.Context, payment *entities.ScheduledPayment) error

	// FindByID finds a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ScheduledPayment, error)

	// FindByOwner lists an owner's payments, newest first. A non-empty
	// status narrows the listing; limit <= 0 means no limit.
	FindByOwner(ctx context.Context, ownerID string, status entities.PaymentStatus, limit int) ([]entities.ScheduledPayment, error)

	// ClaimDue atomically flips due pending payments to claimed and returns
	// the rows this caller won. Concurrent callers never claim the same row.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]entities.ScheduledPayment, error)

	// UpdateStatus transitions a payment and records the latest error text.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PaymentStatus, lastError string) error

	// RecordAttempt mirrors a failed job attempt on the payment row
	// without changing its status.
	RecordAttempt(ctx context.Context, id uuid.UUID, retryCount int, lastError string) error

	// CancelPending atomically flips a pending payment to cancelled. It
	// reports false when the payment was not pending anymore.
	CancelPending(ctx context.Context, id uuid.UUID) (bool, error)
}

// JobRepository handles durable job persistence
type JobRepository interface {
	// Create persists a new job in its current state
	Create(ctx context.Context, job *entities.Job) error

	// FindByID finds a job by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Job, error)

	// FindByPayment finds the jobs created for a payment
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]entities.Job, error)

	// ClaimNext atomically claims the next waiting job for a worker: lowest
	// priority first, then oldest. Claiming increments the attempt counter
	// and takes a lease until now+lease. Returns nil when nothing is
	// claimable.
	ClaimNext(ctx context.Context, workerID string, lease time.Duration) (*entities.Job, error)

	// MarkCompleted transitions an active job to completed
	MarkCompleted(ctx context.Context, id uuid.UUID) error

	// MarkFailed transitions an active job to failed with its final error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error

	// Delay parks an active job until nextAttempt, recording the error that
	// caused the retry
	Delay(ctx context.Context, id uuid.UUID, nextAttempt time.Time, lastError string) error

	// PromoteDelayed returns delayed jobs whose next attempt time has come
	// back to the waiting state, reporting how many were promoted
	PromoteDelayed(ctx context.Context, now time.Time) (int64, error)

	// RequeueStale returns active jobs whose lease expired back to the
	// waiting state so another worker can resume them
	RequeueStale(ctx context.Context, now time.Time) (int64, error)

	// CountByState counts jobs currently in a state
	CountByState(ctx context.Context, state entities.JobState) (int64, error)
}

// LegRepository handles execution leg persistence
type LegRepository interface {
	// Create persists a new leg
	Create(ctx context.Context, leg *entities.Leg) error

	// Update persists leg mutations (handle, status, confirmations)
	Update(ctx context.Context, leg *entities.Leg) error

	// FindByJob returns a job's legs in creation order
	FindByJob(ctx context.Context, jobID uuid.UUID) ([]entities.Leg, error)

	// FindByPayment returns a payment's legs across all of its jobs in
	// creation order
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]entities.Leg, error)
}

// UnitOfWork represents a unit of work pattern for transactions
type UnitOfWork interface {
	// Payments returns the scheduled payment repository bound to the
	// transaction
	Payments() ScheduledPaymentRepository

	// Jobs returns the job repository bound to the transaction
	Jobs() JobRepository

	// Legs returns the leg repository bound to the transaction
	Legs() LegRepository

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error
}

// UnitOfWorkFactory opens new units of work
type UnitOfWorkFactory interface {
	// Begin opens a transaction-scoped unit of work
	Begin(ctx context.Context) (UnitOfWork, error)
}
