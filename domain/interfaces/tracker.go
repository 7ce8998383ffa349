package interfaces

import (
	"context"
	"time"

	"crosspay-engine/domain/entities"
)

// MilestoneFunc is invoked at most once per crossed confirmation milestone.
type MilestoneFunc func(confirmations uint64)

// ArrivalProbe reports an external transfer's progress, used for bridge
// transfers whose arrival only the provider can observe.
type ArrivalProbe func(ctx context.Context) (entities.BridgeTransferState, error)

// WatchParams describes a transaction confirmation watch.
type WatchParams struct {
	Chain                 string
	TxHandle              entities.TxHandle
	RequiredConfirmations uint64

	// Timeout bounds the watch; zero means the tracker's configured
	// maximum wait.
	Timeout time.Duration

	// OnMilestone, when set, fires as confirmation thresholds are crossed.
	OnMilestone MilestoneFunc
}

// ArrivalParams describes a bridge arrival watch.
type ArrivalParams struct {
	Chain    string
	TxHandle entities.TxHandle
	Probe    ArrivalProbe

	// Timeout bounds the watch; zero means the tracker's configured
	// maximum wait.
	Timeout time.Duration
}

// WatchOutcome is the terminal result of a watch. Every watch resolves to
// an outcome within its deadline.
type WatchOutcome struct {
	State         entities.WatchState
	Confirmations uint64
	Waited        time.Duration
	Reason        string
}

// ConfirmationTracker follows submitted transactions to a terminal state.
// Watches are registered by (chain, handle); starting a second watch on a
// live key fails with a conflict error.
type ConfirmationTracker interface {
	// Watch polls the chain until the transaction confirms, fails, or the
	// deadline passes. The returned outcome is always terminal.
	Watch(ctx context.Context, params WatchParams) (*WatchOutcome, error)

	// WatchArrival polls an arrival probe the same way, for transfers
	// tracked through a provider rather than a chain receipt.
	WatchArrival(ctx context.Context, params ArrivalParams) (*WatchOutcome, error)

	// ActiveWatches reports how many watches are currently live.
	ActiveWatches() int
}
