// Package interfaces defines contracts and interfaces for the crosspay domain layer.
// It contains interfaces for external payment capabilities, repositories, use cases,
// and logging.
package interfaces

import (
	"context"
	"time"

	"crosspay-engine/domain/dto"
	"crosspay-engine/domain/entities"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SchedulePaymentUseCase registers a payment intent for future execution.
type SchedulePaymentUseCase interface {
	// Execute validates and persists the intent in the pending state.
	Execute(ctx context.Context, params SchedulePaymentParams) (*entities.ScheduledPayment, error)
}

// SchedulePaymentParams represents parameters for scheduling a payment.
type SchedulePaymentParams struct {
	OwnerID             string
	Recipient           string
	TokenSymbol         string
	Amount              decimal.Decimal
	SourceChain         string
	TargetChain         string
	ScheduledFor        time.Time
	CheapestRoute       bool
	AnyChainWithBalance bool
}

// SubmitPaymentUseCase executes a payment as soon as a worker is free,
// bypassing the scheduler.
type SubmitPaymentUseCase interface {
	// Execute validates the request, persists the intent and its job in one
	// transaction, and returns the job for status tracking.
	Execute(ctx context.Context, params SubmitPaymentParams) (*SubmitPaymentResult, error)
}

// SubmitPaymentParams represents parameters for an immediate payment.
type SubmitPaymentParams struct {
	OwnerID             string
	Recipient           string
	TokenSymbol         string
	Amount              decimal.Decimal
	SourceChain         string
	TargetChain         string
	CheapestRoute       bool
	AnyChainWithBalance bool
}

// SubmitPaymentResult represents an accepted immediate payment.
type SubmitPaymentResult struct {
	Payment *entities.ScheduledPayment
	JobID   uuid.UUID
}

// CancelPaymentUseCase cancels a payment that has not been claimed yet.
type CancelPaymentUseCase interface {
	// Execute cancels the payment when it is still pending. Claimed or
	// terminal payments fail with an already-in-progress error.
	Execute(ctx context.Context, params CancelPaymentParams) (*entities.ScheduledPayment, error)
}

// CancelPaymentParams represents parameters for cancelling a payment.
type CancelPaymentParams struct {
	PaymentID uuid.UUID
}

// ListPaymentsUseCase lists an owner's payment intents.
type ListPaymentsUseCase interface {
	// Execute returns the owner's payments, newest first.
	Execute(ctx context.Context, params ListPaymentsParams) (*ListPaymentsResult, error)
}

// ListPaymentsParams represents parameters for listing payments.
type ListPaymentsParams struct {
	OwnerID string

	// Status, when non-empty, narrows the listing to one state.
	Status entities.PaymentStatus

	// Limit caps the result size; zero or negative means no limit.
	Limit int
}

// ListPaymentsResult represents a payment listing.
type ListPaymentsResult struct {
	Payments   []entities.ScheduledPayment
	TotalCount int
}

// GetJobStatusUseCase reports a job's progress.
type GetJobStatusUseCase interface {
	// Execute returns the job, its payment, and its legs.
	Execute(ctx context.Context, params GetJobStatusParams) (*dto.JobStatusResult, error)
}

// GetJobStatusParams represents parameters for a job status query.
type GetJobStatusParams struct {
	JobID uuid.UUID
}

// RoutePaymentUseCase executes one payment job end to end: resolve the
// recipient and source chain, bridge when the chains differ, pay on the
// target chain, and confirm. Re-executions of the same job resume from the
// persisted legs instead of repeating completed movements.
type RoutePaymentUseCase interface {
	// Execute runs one job attempt to a terminal outcome.
	Execute(ctx context.Context, params RoutePaymentParams) (*RoutePaymentResult, error)
}

// RoutePaymentParams represents one claimed job execution.
type RoutePaymentParams struct {
	Job *entities.Job
}

// RoutePaymentResult represents a completed payment execution.
type RoutePaymentResult struct {
	SourceChain     string
	TargetChain     string
	Bridged         bool
	BridgeProvider  string
	BridgeTxHandle  entities.TxHandle
	PaymentTxHandle entities.TxHandle
	Confirmations   uint64
}

// ChainSelector resolves which chain funds a payment.
type ChainSelector interface {
	// SelectSourceChain applies the request's routing policy: an explicit
	// source wins; the any-chain policy walks the configured chain priority
	// for the first sufficient balance; otherwise the home chain is used.
	SelectSourceChain(ctx context.Context, req *entities.RouteRequest) (string, error)
}
