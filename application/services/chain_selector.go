package services

import (
	"context"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
)

// chainSelector implements the ChainSelector interface
type chainSelector struct {
	priority  []string
	homeChain string
	oracle    interfaces.BalanceOracle
	logger    interfaces.Logger
}

// NewChainSelector creates a new chain selector. The priority slice fixes
// the walk order for the any-chain-with-balance policy, so selection is
// deterministic for a given balance snapshot.
func NewChainSelector(
	priority []string,
	homeChain string,
	oracle interfaces.BalanceOracle,
	logger interfaces.Logger,
) interfaces.ChainSelector {
	return &chainSelector{
		priority:  priority,
		homeChain: homeChain,
		oracle:    oracle,
		logger:    logger,
	}
}

// SelectSourceChain applies the request's routing policy.
func (s *chainSelector) SelectSourceChain(ctx context.Context, req *entities.RouteRequest) (string, error) {
	if req.SourceChain != "" {
		return req.SourceChain, nil
	}

	if !req.AnyChainWithBalance {
		return s.homeChain, nil
	}

	best := entities.ChainBalance{}
	for _, chain := range s.priority {
		balance, err := s.oracle.Balance(ctx, chain, req.OwnerID, req.TokenSymbol)
		if err != nil {
			// A failed read must not silently skip a funded chain; the
			// attempt is retried instead.
			return "", err
		}

		s.logger.Debug("balance considered",
			"chain", chain,
			"owner", req.OwnerID,
			"token", req.TokenSymbol,
			"balance", balance.String(),
		)

		if balance.GreaterThanOrEqual(req.Amount) {
			return chain, nil
		}

		if best.Chain == "" || balance.GreaterThan(best.Balance) {
			best = entities.ChainBalance{Chain: chain, Balance: balance}
		}
	}

	if best.Chain == "" {
		best.Chain = s.homeChain
	}
	return "", &errors.InsufficientFundsError{
		Chain:       best.Chain,
		TokenSymbol: req.TokenSymbol,
		Needed:      req.Amount,
		Available:   best.Balance,
	}
}
