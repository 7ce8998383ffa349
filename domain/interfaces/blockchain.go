// Package interfaces defines contracts and interfaces for the crosspay domain layer.
// It contains interfaces for external payment capabilities, repositories, use cases,
// and logging.
package interfaces

import (
	"context"

	"crosspay-engine/domain/entities"
	"github.com/shopspring/decimal"
)

// ChainReader reads transaction state from a chain. Implementations connect
// to one RPC endpoint per configured chain.
type ChainReader interface {
	// TxStatus returns the confirmation progress of a transaction. A
	// not-yet-visible transaction reports Found=false with no error.
	TxStatus(ctx context.Context, chain string, handle entities.TxHandle) (*entities.TxStatus, error)

	// Close releases the underlying RPC connections.
	Close() error
}

// BalanceOracle reads token balances for route selection.
type BalanceOracle interface {
	// Balance returns the owner's balance of a token on a chain, in token
	// units.
	Balance(ctx context.Context, chain, owner, tokenSymbol string) (decimal.Decimal, error)
}
