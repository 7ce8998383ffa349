package interfaces

import (
	"context"

	"crosspay-engine/domain/entities"
)

// JobHandler executes one claimed job attempt. Handlers must be safe to
// invoke more than once for the same job: the queue redelivers work whose
// lease expired.
type JobHandler func(ctx context.Context, job *entities.Job) error

// JobQueue is the durable work queue and its worker pool.
type JobQueue interface {
	// Enqueue persists a job in the waiting state so a worker picks it up.
	Enqueue(ctx context.Context, job *entities.Job) error

	// Start launches the worker pool. It returns once the workers are
	// running; Stop drains them.
	Start(ctx context.Context) error

	// Stop signals the workers and blocks until in-flight jobs finish.
	Stop()
}

// PaymentScheduler moves due payment intents into the job queue.
type PaymentScheduler interface {
	// DiscoverAndEnqueue claims due payments and enqueues one job per
	// claimed row, returning how many were enqueued.
	DiscoverAndEnqueue(ctx context.Context) (int, error)

	// Run ticks discovery and queue maintenance until the context is
	// cancelled.
	Run(ctx context.Context) error
}
