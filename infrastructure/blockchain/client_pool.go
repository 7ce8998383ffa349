// Package blockchain connects the engine to its configured EVM chains. It
// maintains one RPC client per chain and implements the chain reader and
// balance oracle over that pool.
package blockchain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"crosspay-engine/domain/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// dialTimeout bounds the chain ID handshake when a pool is built.
const dialTimeout = 10 * time.Second

// TokenSpec describes an ERC-20 deployment on one chain.
type TokenSpec struct {
	Address  common.Address
	Decimals int32
}

// ChainSpec describes one configured chain endpoint.
type ChainSpec struct {
	Name    string
	ChainID int64
	RPCURL  string

	// Tokens is keyed by upper-case symbol.
	Tokens map[string]TokenSpec
}

// ClientPool holds one RPC client per configured chain. The pool is built
// once at startup and read-only afterwards, so lookups need no locking.
type ClientPool struct {
	clients map[string]*ethclient.Client
	specs   map[string]ChainSpec

	closeOnce sync.Once
}

// NewClientPool dials every configured chain and verifies each endpoint
// serves the expected chain ID.
func NewClientPool(specs []ChainSpec) (*ClientPool, error) {
	pool := &ClientPool{
		clients: make(map[string]*ethclient.Client, len(specs)),
		specs:   make(map[string]ChainSpec, len(specs)),
	}

	for _, spec := range specs {
		client, err := dial(spec)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.clients[spec.Name] = client
		pool.specs[spec.Name] = spec
	}
	return pool, nil
}

func dial(spec ChainSpec) (*ethclient.Client, error) {
	client, err := ethclient.Dial(spec.RPCURL)
	if err != nil {
		return nil, &errors.BlockchainError{
			Operation: "Dial",
			Chain:     spec.Name,
			Err:       err,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	networkID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, &errors.BlockchainError{
			Operation: "ChainID",
			Chain:     spec.Name,
			Err:       err,
		}
	}
	if networkID.Int64() != spec.ChainID {
		client.Close()
		return nil, &errors.BlockchainError{
			Operation: "ChainID",
			Chain:     spec.Name,
			Err:       fmt.Errorf("chain ID mismatch: expected %d, got %d", spec.ChainID, networkID.Int64()),
		}
	}
	return client, nil
}

// Client returns the RPC client for a chain.
func (p *ClientPool) Client(chain string) (*ethclient.Client, error) {
	client, ok := p.clients[chain]
	if !ok {
		return nil, errors.NewDomainError(errors.ErrNotFound,
			fmt.Sprintf("chain %s is not configured", chain))
	}
	return client, nil
}

// Token returns a token's deployment on a chain.
func (p *ClientPool) Token(chain, symbol string) (TokenSpec, error) {
	spec, ok := p.specs[chain]
	if !ok {
		return TokenSpec{}, errors.NewDomainError(errors.ErrNotFound,
			fmt.Sprintf("chain %s is not configured", chain))
	}

	token, ok := spec.Tokens[strings.ToUpper(symbol)]
	if !ok {
		return TokenSpec{}, errors.NewDomainError(errors.ErrNotFound,
			fmt.Sprintf("token %s is not configured on chain %s", symbol, chain))
	}
	return token, nil
}

// Chains returns the configured chain names.
func (p *ClientPool) Chains() []string {
	names := make([]string, 0, len(p.specs))
	for name := range p.specs {
		names = append(names, name)
	}
	return names
}

// Close releases every RPC connection. Safe to call more than once.
func (p *ClientPool) Close() {
	p.closeOnce.Do(func() {
		for _, client := range p.clients {
			client.Close()
		}
	})
}
