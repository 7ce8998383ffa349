package services

import (
	"context"
	"testing"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/infrastructure/logger"
	"crosspay-engine/test/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelectorFixture(t *testing.T) (*mocks.MockBalanceOracle, *chainSelector) {
	t.Helper()
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockBalanceOracle(ctrl)
	selector := NewChainSelector([]string{"polygon", "base", "arbitrum"}, "polygon", oracle, logger.NewNopLogger())
	return oracle, selector.(*chainSelector)
}

func TestSelectSourceChain_ExplicitSourcePinned(t *testing.T) {
	_, selector := newSelectorFixture(t)

	// No oracle expectation: any balance read fails the test.
	chain, err := selector.SelectSourceChain(context.Background(), &entities.RouteRequest{
		OwnerID:     "user-1",
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(50),
		SourceChain: "arbitrum",
	})
	require.NoError(t, err)
	assert.Equal(t, "arbitrum", chain)
}

func TestSelectSourceChain_HomeChainDefault(t *testing.T) {
	_, selector := newSelectorFixture(t)

	chain, err := selector.SelectSourceChain(context.Background(), &entities.RouteRequest{
		OwnerID:     "user-1",
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.Equal(t, "polygon", chain)
}

func TestSelectSourceChain_FirstFundedChainInPriorityOrder(t *testing.T) {
	oracle, selector := newSelectorFixture(t)

	// The walk stops at the first funded chain, so arbitrum is never read.
	gomock.InOrder(
		oracle.EXPECT().
			Balance(gomock.Any(), "polygon", "user-1", "USDC").
			Return(decimal.NewFromInt(10), nil),
		oracle.EXPECT().
			Balance(gomock.Any(), "base", "user-1", "USDC").
			Return(decimal.NewFromInt(80), nil),
	)

	chain, err := selector.SelectSourceChain(context.Background(), &entities.RouteRequest{
		OwnerID:             "user-1",
		TokenSymbol:         "USDC",
		Amount:              decimal.NewFromInt(50),
		AnyChainWithBalance: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "base", chain)
}

func TestSelectSourceChain_InsufficientEverywhere(t *testing.T) {
	oracle, selector := newSelectorFixture(t)

	oracle.EXPECT().Balance(gomock.Any(), "polygon", "user-1", "USDC").Return(decimal.NewFromInt(10), nil)
	oracle.EXPECT().Balance(gomock.Any(), "base", "user-1", "USDC").Return(decimal.NewFromInt(25), nil)
	oracle.EXPECT().Balance(gomock.Any(), "arbitrum", "user-1", "USDC").Return(decimal.NewFromInt(5), nil)

	_, err := selector.SelectSourceChain(context.Background(), &entities.RouteRequest{
		OwnerID:             "user-1",
		TokenSymbol:         "USDC",
		Amount:              decimal.NewFromInt(50),
		AnyChainWithBalance: true,
	})
	require.Error(t, err)

	// The error names the best candidate so the caller sees how close the
	// owner was.
	var fundsErr *errors.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.Equal(t, "base", fundsErr.Chain)
	assert.True(t, fundsErr.Available.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, errors.ClassFunds, errors.Classify(err))
	assert.False(t, errors.IsRetryable(err))
}

func TestSelectSourceChain_OracleErrorPropagates(t *testing.T) {
	oracle, selector := newSelectorFixture(t)

	outage := errors.NewDomainError(errors.ErrInternal, "rpc endpoint unreachable")
	oracle.EXPECT().Balance(gomock.Any(), "polygon", "user-1", "USDC").Return(decimal.Zero, outage)

	_, err := selector.SelectSourceChain(context.Background(), &entities.RouteRequest{
		OwnerID:             "user-1",
		TokenSymbol:         "USDC",
		Amount:              decimal.NewFromInt(50),
		AnyChainWithBalance: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInternal)
	assert.True(t, errors.IsRetryable(err))
}
