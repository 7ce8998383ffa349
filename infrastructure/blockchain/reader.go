package blockchain

import (
	"context"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	goerrors "github.com/pkg/errors"
)

// reader implements the ChainReader interface over a client pool.
type reader struct {
	pool   *ClientPool
	logger interfaces.Logger
}

// NewReader creates a chain reader over the pool.
func NewReader(pool *ClientPool, logger interfaces.Logger) interfaces.ChainReader {
	return &reader{pool: pool, logger: logger}
}

// TxStatus reports a transaction's confirmation progress. A transaction the
// chain has not seen yet reports Found=false with no error.
func (r *reader) TxStatus(ctx context.Context, chain string, handle entities.TxHandle) (*entities.TxStatus, error) {
	client, err := r.pool.Client(chain)
	if err != nil {
		return nil, err
	}

	receipt, err := client.TransactionReceipt(ctx, common.HexToHash(handle.String()))
	if err != nil {
		if goerrors.Is(err, ethereum.NotFound) {
			return &entities.TxStatus{}, nil
		}
		return nil, &errors.BlockchainError{
			Operation: "TransactionReceipt",
			Chain:     chain,
			Err:       goerrors.Wrap(err, "fetching receipt"),
		}
	}

	head, err := client.BlockNumber(ctx)
	if err != nil {
		return nil, &errors.BlockchainError{
			Operation: "BlockNumber",
			Chain:     chain,
			Err:       goerrors.Wrap(err, "fetching head"),
		}
	}

	status := &entities.TxStatus{
		Found:     true,
		Succeeded: receipt.Status == types.ReceiptStatusSuccessful,
	}
	if receipt.BlockNumber != nil {
		minedAt := receipt.BlockNumber.Uint64()
		if head >= minedAt {
			status.Confirmations = head - minedAt + 1
		}
	}
	return status, nil
}

// Close releases the pool's RPC connections.
func (r *reader) Close() error {
	r.pool.Close()
	return nil
}
