// Package entities contains the core domain entities for the crosspay engine.
// It defines structures for scheduled payments, jobs, execution legs, and
// related data types.
package entities

import (
	"github.com/shopspring/decimal"
)

// TxHandle identifies a transaction submitted to some chain or bridge. For
// EVM chains it is the transaction hash; bridge providers may return their
// own transfer identifiers.
type TxHandle string

// String returns the handle as a plain string.
func (h TxHandle) String() string {
	return string(h)
}

// BridgeRoute is one quoted option for moving funds between chains.
type BridgeRoute struct {
	Provider         string
	FromChain        string
	ToChain          string
	TokenSymbol      string
	Amount           decimal.Decimal
	Fee              decimal.Decimal
	EstimatedSeconds int
}

// TotalCost is the amount plus the provider fee, used to rank routes when
// the cheapest-route policy is set.
func (r *BridgeRoute) TotalCost() decimal.Decimal {
	return r.Amount.Add(r.Fee)
}

// TxStatus reports a transaction's confirmation progress on a chain.
type TxStatus struct {
	Found         bool
	Confirmations uint64
	Succeeded     bool
}

// BridgeTransferState reports a bridge transfer's progress as seen by its
// provider.
type BridgeTransferState string

// Bridge transfer state constants.
const (
	BridgeTransferPending BridgeTransferState = "pending"
	BridgeTransferArrived BridgeTransferState = "arrived"
	BridgeTransferFailed  BridgeTransferState = "failed"
)

// WatchState is the terminal outcome of a confirmation watch. Every watch
// resolves to exactly one of these within its deadline.
type WatchState string

// Watch state constants.
const (
	WatchConfirmed WatchState = "confirmed"
	WatchFailed    WatchState = "failed"
	WatchStale     WatchState = "stale"
)

// ChainBalance pairs a chain with an owner's balance on it, used when
// reporting why no funding chain could be selected.
type ChainBalance struct {
	Chain   string
	Balance decimal.Decimal
}
