package interfaces

import (
	"context"

	"crosspay-engine/domain/entities"
	"github.com/shopspring/decimal"
)

// PaymentExecutor submits token transfers through the external custody
// service. Key management and transaction signing live behind this
// interface, never in the engine.
type PaymentExecutor interface {
	// Execute submits a transfer of amount tokens from the owner's identity
	// to the recipient address on the given chain and returns the
	// transaction handle.
	Execute(ctx context.Context, chain, owner, recipient, tokenSymbol string, amount decimal.Decimal) (entities.TxHandle, error)
}

// BridgeProvider quotes and executes cross-chain transfers.
type BridgeProvider interface {
	// Quote returns the provider's preferred route for the transfer.
	Quote(ctx context.Context, fromChain, toChain, tokenSymbol string, amount decimal.Decimal) (*entities.BridgeRoute, error)

	// Quotes returns every available route for the transfer, for callers
	// that rank routes themselves.
	Quotes(ctx context.Context, fromChain, toChain, tokenSymbol string, amount decimal.Decimal) ([]entities.BridgeRoute, error)

	// Execute starts a quoted transfer and returns its handle.
	Execute(ctx context.Context, route *entities.BridgeRoute, owner string) (entities.TxHandle, error)

	// Status reports the transfer's progress as seen by the provider.
	Status(ctx context.Context, handle entities.TxHandle) (entities.BridgeTransferState, error)
}

// DirectoryService resolves recipient handles to chain addresses.
type DirectoryService interface {
	// Resolve maps a directory handle to an address. Unknown handles
	// return a not found error.
	Resolve(ctx context.Context, recipient string) (string, error)
}
