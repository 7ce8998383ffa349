package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	goerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// erc20ABI carries the single view function the oracle needs.
const erc20ABI = `[
	{
		"constant": true,
		"inputs": [
			{
				"name": "_owner",
				"type": "address"
			}
		],
		"name": "balanceOf",
		"outputs": [
			{
				"name": "balance",
				"type": "uint256"
			}
		],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	}
]`

// balanceOracle implements the BalanceOracle interface with ERC-20
// balanceOf calls over the client pool.
type balanceOracle struct {
	pool   *ClientPool
	abi    abi.ABI
	logger interfaces.Logger
}

// NewBalanceOracle creates a balance oracle over the pool.
func NewBalanceOracle(pool *ClientPool, logger interfaces.Logger) (interfaces.BalanceOracle, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, goerrors.Wrap(err, "parsing ERC20 ABI")
	}
	return &balanceOracle{pool: pool, abi: parsed, logger: logger}, nil
}

// Balance returns the owner's token balance on a chain, scaled to token
// units by the configured decimals.
func (o *balanceOracle) Balance(ctx context.Context, chain, owner, tokenSymbol string) (decimal.Decimal, error) {
	if !common.IsHexAddress(owner) {
		return decimal.Zero, errors.NewDomainError(errors.ErrInvalidInput,
			fmt.Sprintf("owner %q is not a chain address", owner))
	}

	client, err := o.pool.Client(chain)
	if err != nil {
		return decimal.Zero, err
	}
	token, err := o.pool.Token(chain, tokenSymbol)
	if err != nil {
		return decimal.Zero, err
	}

	contract := bind.NewBoundContract(token.Address, o.abi, client, client, client)

	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(owner)); err != nil {
		return decimal.Zero, &errors.BlockchainError{
			Operation: "BalanceOf",
			Chain:     chain,
			Err:       goerrors.Wrapf(err, "token %s", tokenSymbol),
		}
	}
	if len(out) == 0 || out[0] == nil {
		return decimal.Zero, &errors.BlockchainError{
			Operation: "BalanceOf",
			Chain:     chain,
			Err:       fmt.Errorf("empty balanceOf response for token %s", tokenSymbol),
		}
	}

	raw, ok := out[0].(*big.Int)
	if !ok {
		return decimal.Zero, &errors.BlockchainError{
			Operation: "BalanceOf",
			Chain:     chain,
			Err:       fmt.Errorf("unexpected balanceOf response type %T", out[0]),
		}
	}

	balance := decimal.NewFromBigInt(raw, -token.Decimals)
	o.logger.Debug("Balance read",
		"chain", chain, "token", tokenSymbol, "owner", owner, "balance", balance.String())
	return balance, nil
}
