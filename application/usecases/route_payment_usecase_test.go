package usecases

import (
	"context"
	"testing"
	"time"

	"crosspay-engine/domain/dto"
	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"crosspay-engine/infrastructure/logger"
	"crosspay-engine/test/fakes"
	"crosspay-engine/test/mocks"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipientAddr = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

// routeHarness wires the routing use case over in-memory stores and mocked
// external capabilities.
type routeHarness struct {
	payments  *fakes.PaymentStore
	legs      *fakes.LegStore
	notifier  *fakes.Notifier
	selector  *mocks.MockChainSelector
	directory *mocks.MockDirectoryService
	bridge    *mocks.MockBridgeProvider
	executor  *mocks.MockPaymentExecutor
	tracker   *mocks.MockConfirmationTracker
	uc        interfaces.RoutePaymentUseCase
}

func newRouteHarness(t *testing.T) *routeHarness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &routeHarness{
		payments:  fakes.NewPaymentStore(),
		legs:      fakes.NewLegStore(),
		notifier:  fakes.NewNotifier(),
		selector:  mocks.NewMockChainSelector(ctrl),
		directory: mocks.NewMockDirectoryService(ctrl),
		bridge:    mocks.NewMockBridgeProvider(ctrl),
		executor:  mocks.NewMockPaymentExecutor(ctrl),
		tracker:   mocks.NewMockConfirmationTracker(ctrl),
	}
	h.uc = NewRoutePaymentUseCase(
		h.payments,
		h.legs,
		h.selector,
		h.directory,
		h.bridge,
		h.executor,
		h.tracker,
		h.notifier,
		logger.NewNopLogger(),
		map[string]uint64{"base": 3},
		12,
		time.Minute,
	)
	return h
}

// seedJob stores a claimed payment and returns the job a worker would run
// for it.
func (h *routeHarness) seedJob(t *testing.T, req *entities.RouteRequest) *entities.Job {
	t.Helper()

	err := h.payments.Create(context.Background(), &entities.ScheduledPayment{
		ID:           req.PaymentID,
		OwnerID:      req.OwnerID,
		Recipient:    req.Recipient,
		TokenSymbol:  req.TokenSymbol,
		Amount:       req.Amount,
		SourceChain:  req.SourceChain,
		TargetChain:  req.TargetChain,
		ScheduledFor: time.Now().UTC(),
		Status:       entities.PaymentStatusClaimed,
	})
	require.NoError(t, err)

	job, err := entities.NewJob(req, time.Now().Unix(), 3)
	require.NoError(t, err)
	job.State = entities.JobStateActive
	job.Attempts = 1
	return job
}

func confirmedOutcome(confirmations uint64) *interfaces.WatchOutcome {
	return &interfaces.WatchOutcome{State: entities.WatchConfirmed, Confirmations: confirmations}
}

func TestRoutePayment_SameChainPaysDirectly(t *testing.T) {
	h := newRouteHarness(t)
	req := &entities.RouteRequest{
		PaymentID:   uuid.New(),
		OwnerID:     "user-1",
		Recipient:   recipientAddr,
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(25),
		TargetChain: "polygon",
	}
	job := h.seedJob(t, req)

	h.selector.EXPECT().SelectSourceChain(gomock.Any(), gomock.Any()).Return("polygon", nil)
	h.executor.EXPECT().
		Execute(gomock.Any(), "polygon", "user-1", recipientAddr, "USDC", gomock.Any()).
		Return(entities.TxHandle("0xpay"), nil)
	h.tracker.EXPECT().
		Watch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params interfaces.WatchParams) (*interfaces.WatchOutcome, error) {
			assert.Equal(t, "polygon", params.Chain)
			assert.Equal(t, uint64(12), params.RequiredConfirmations)
			return confirmedOutcome(12), nil
		})

	result, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{Job: job})
	require.NoError(t, err)

	assert.Equal(t, "polygon", result.SourceChain)
	assert.Equal(t, "polygon", result.TargetChain)
	assert.False(t, result.Bridged)
	assert.Equal(t, entities.TxHandle("0xpay"), result.PaymentTxHandle)
	assert.Equal(t, uint64(12), result.Confirmations)

	payment := h.payments.Snapshot(req.PaymentID)
	assert.Equal(t, entities.PaymentStatusCompleted, payment.Status)
	require.NotNil(t, payment.CompletedAt)

	legs, err := h.legs.FindByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, entities.LegKindPayment, legs[0].Kind)
	assert.Equal(t, entities.LegStatusConfirmed, legs[0].Status)

	events := h.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, dto.EventCompleted, events[0].Kind)
	assert.Equal(t, "0xpay", events[0].TxHandle)
}

func TestRoutePayment_CrossChainBridgesThenPays(t *testing.T) {
	h := newRouteHarness(t)
	req := &entities.RouteRequest{
		PaymentID:   uuid.New(),
		OwnerID:     "user-1",
		Recipient:   "@bob",
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(25),
		SourceChain: "polygon",
		TargetChain: "base",
	}
	job := h.seedJob(t, req)

	route := &entities.BridgeRoute{
		Provider:         "hop",
		FromChain:        "polygon",
		ToChain:          "base",
		TokenSymbol:      "USDC",
		Amount:           decimal.NewFromInt(25),
		Fee:              decimal.NewFromInt(1),
		EstimatedSeconds: 300,
	}

	h.directory.EXPECT().Resolve(gomock.Any(), "@bob").Return(recipientAddr, nil)
	h.selector.EXPECT().SelectSourceChain(gomock.Any(), gomock.Any()).Return("polygon", nil)
	h.bridge.EXPECT().
		Quote(gomock.Any(), "polygon", "base", "USDC", gomock.Any()).
		Return(route, nil)
	h.bridge.EXPECT().
		Execute(gomock.Any(), gomock.Any(), "user-1").
		DoAndReturn(func(_ context.Context, got *entities.BridgeRoute, _ string) (entities.TxHandle, error) {
			assert.Equal(t, "hop", got.Provider)
			assert.Equal(t, "polygon", got.FromChain)
			assert.Equal(t, "base", got.ToChain)
			return entities.TxHandle("br-1"), nil
		})
	h.tracker.EXPECT().
		WatchArrival(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params interfaces.ArrivalParams) (*interfaces.WatchOutcome, error) {
			assert.Equal(t, "base", params.Chain)
			assert.Equal(t, entities.TxHandle("br-1"), params.TxHandle)
			assert.Equal(t, time.Minute, params.Timeout)
			return confirmedOutcome(0), nil
		})
	h.executor.EXPECT().
		Execute(gomock.Any(), "base", "user-1", recipientAddr, "USDC", gomock.Any()).
		Return(entities.TxHandle("0xpay"), nil)
	h.tracker.EXPECT().
		Watch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params interfaces.WatchParams) (*interfaces.WatchOutcome, error) {
			// base has an explicit three confirmation requirement.
			assert.Equal(t, uint64(3), params.RequiredConfirmations)
			return confirmedOutcome(3), nil
		})

	result, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{Job: job})
	require.NoError(t, err)

	assert.True(t, result.Bridged)
	assert.Equal(t, "hop", result.BridgeProvider)
	assert.Equal(t, entities.TxHandle("br-1"), result.BridgeTxHandle)
	assert.Equal(t, entities.TxHandle("0xpay"), result.PaymentTxHandle)

	legs, err := h.legs.FindByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, legs, 2)
	assert.Equal(t, entities.LegKindBridge, legs[0].Kind)
	assert.Equal(t, entities.LegStatusBridged, legs[0].Status)
	require.NotNil(t, legs[0].CompletedAt)
	assert.Equal(t, entities.LegKindPayment, legs[1].Kind)
	assert.Equal(t, entities.LegStatusConfirmed, legs[1].Status)

	payment := h.payments.Snapshot(req.PaymentID)
	assert.Equal(t, entities.PaymentStatusCompleted, payment.Status)
}

func TestRoutePayment_MilestonesNotifyAndPersist(t *testing.T) {
	h := newRouteHarness(t)
	req := &entities.RouteRequest{
		PaymentID:   uuid.New(),
		OwnerID:     "user-1",
		Recipient:   recipientAddr,
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(10),
		TargetChain: "polygon",
	}
	job := h.seedJob(t, req)

	h.selector.EXPECT().SelectSourceChain(gomock.Any(), gomock.Any()).Return("polygon", nil)
	h.executor.EXPECT().
		Execute(gomock.Any(), "polygon", "user-1", recipientAddr, "USDC", gomock.Any()).
		Return(entities.TxHandle("0xpay"), nil)
	h.tracker.EXPECT().
		Watch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params interfaces.WatchParams) (*interfaces.WatchOutcome, error) {
			params.OnMilestone(1)
			params.OnMilestone(3)
			params.OnMilestone(12)
			return confirmedOutcome(12), nil
		})

	_, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{Job: job})
	require.NoError(t, err)

	events := h.notifier.Events()
	require.Len(t, events, 4)
	assert.Equal(t, dto.EventMilestone, events[0].Kind)
	assert.Equal(t, uint64(1), events[0].Confirmations)
	assert.Equal(t, dto.EventMilestone, events[1].Kind)
	assert.Equal(t, uint64(3), events[1].Confirmations)
	assert.Equal(t, dto.EventMilestone, events[2].Kind)
	assert.Equal(t, uint64(12), events[2].Confirmations)
	assert.Equal(t, dto.EventCompleted, events[3].Kind)

	legs, err := h.legs.FindByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, legs, 1)
	assert.Equal(t, uint64(12), legs[0].Confirmations)
}

func TestRoutePayment_ResumeSkipsCompletedBridge(t *testing.T) {
	h := newRouteHarness(t)
	req := &entities.RouteRequest{
		PaymentID:   uuid.New(),
		OwnerID:     "user-1",
		Recipient:   recipientAddr,
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(25),
		SourceChain: "polygon",
		TargetChain: "base",
	}
	job := h.seedJob(t, req)

	// A previous attempt bridged the funds and crashed before paying. The
	// bridge leg is terminal; the retry must not touch the bridge again.
	done := time.Now().UTC()
	bridgeLeg := entities.NewBridgeLeg(job.ID, req.PaymentID, &entities.BridgeRoute{
		Provider:    "hop",
		FromChain:   "polygon",
		ToChain:     "base",
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(25),
		Fee:         decimal.NewFromInt(1),
	})
	bridgeLeg.TxHandle = "br-old"
	bridgeLeg.Status = entities.LegStatusBridged
	bridgeLeg.CompletedAt = &done
	require.NoError(t, h.legs.Create(context.Background(), bridgeLeg))

	// No selector, quote, execute, or arrival expectations: any such call
	// fails the test.
	h.executor.EXPECT().
		Execute(gomock.Any(), "base", "user-1", recipientAddr, "USDC", gomock.Any()).
		Return(entities.TxHandle("0xpay"), nil)
	h.tracker.EXPECT().
		Watch(gomock.Any(), gomock.Any()).
		Return(confirmedOutcome(3), nil)

	result, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{Job: job})
	require.NoError(t, err)

	assert.True(t, result.Bridged)
	assert.Equal(t, entities.TxHandle("br-old"), result.BridgeTxHandle)
}

func TestRoutePayment_ResumeRewatchesSubmittedBridge(t *testing.T) {
	h := newRouteHarness(t)
	req := &entities.RouteRequest{
		PaymentID:   uuid.New(),
		OwnerID:     "user-1",
		Recipient:   recipientAddr,
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(25),
		SourceChain: "polygon",
		TargetChain: "base",
	}
	job := h.seedJob(t, req)

	// The transfer was submitted but its arrival was never observed.
	bridgeLeg := entities.NewBridgeLeg(job.ID, req.PaymentID, &entities.BridgeRoute{
		Provider:    "hop",
		FromChain:   "polygon",
		ToChain:     "base",
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(25),
	})
	bridgeLeg.TxHandle = "br-9"
	bridgeLeg.Status = entities.LegStatusSubmitted
	require.NoError(t, h.legs.Create(context.Background(), bridgeLeg))

	// The arrival watch probes the provider, not the chain.
	h.bridge.EXPECT().
		Status(gomock.Any(), entities.TxHandle("br-9")).
		Return(entities.BridgeTransferArrived, nil)
	h.tracker.EXPECT().
		WatchArrival(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, params interfaces.ArrivalParams) (*interfaces.WatchOutcome, error) {
			state, err := params.Probe(ctx)
			require.NoError(t, err)
			assert.Equal(t, entities.BridgeTransferArrived, state)
			return confirmedOutcome(0), nil
		})
	h.executor.EXPECT().
		Execute(gomock.Any(), "base", "user-1", recipientAddr, "USDC", gomock.Any()).
		Return(entities.TxHandle("0xpay"), nil)
	h.tracker.EXPECT().
		Watch(gomock.Any(), gomock.Any()).
		Return(confirmedOutcome(3), nil)

	_, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{Job: job})
	require.NoError(t, err)

	stored := h.legs.Snapshot(bridgeLeg.ID)
	assert.Equal(t, entities.LegStatusBridged, stored.Status)
}

func TestRoutePayment_BridgeTimeoutCreatesNoPaymentLeg(t *testing.T) {
	h := newRouteHarness(t)
	req := &entities.RouteRequest{
		PaymentID:   uuid.New(),
		OwnerID:     "user-1",
		Recipient:   recipientAddr,
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(25),
		SourceChain: "polygon",
		TargetChain: "base",
	}
	job := h.seedJob(t, req)

	h.selector.EXPECT().SelectSourceChain(gomock.Any(), gomock.Any()).Return("polygon", nil)
	h.bridge.EXPECT().
		Quote(gomock.Any(), "polygon", "base", "USDC", gomock.Any()).
		Return(&entities.BridgeRoute{
			Provider:    "hop",
			FromChain:   "polygon",
			ToChain:     "base",
			TokenSymbol: "USDC",
			Amount:      decimal.NewFromInt(25),
		}, nil)
	h.bridge.EXPECT().
		Execute(gomock.Any(), gomock.Any(), "user-1").
		Return(entities.TxHandle("br-1"), nil)
	h.tracker.EXPECT().
		WatchArrival(gomock.Any(), gomock.Any()).
		Return(&interfaces.WatchOutcome{
			State:  entities.WatchStale,
			Waited: time.Minute,
			Reason: "no terminal state after 1m0s",
		}, nil)

	_, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{Job: job})
	require.Error(t, err)

	var timeoutErr *errors.BridgeTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "hop", timeoutErr.Provider)
	assert.Equal(t, errors.ClassTimeout, errors.Classify(err))
	assert.False(t, errors.IsRetryable(err))

	legs, findErr := h.legs.FindByJob(context.Background(), job.ID)
	require.NoError(t, findErr)
	require.Len(t, legs, 1)
	assert.Equal(t, entities.LegKindBridge, legs[0].Kind)
	assert.Equal(t, entities.LegStatusFailed, legs[0].Status)
}

func TestRoutePayment_StaleWatchKeepsLegResumable(t *testing.T) {
	h := newRouteHarness(t)
	req := &entities.RouteRequest{
		PaymentID:   uuid.New(),
		OwnerID:     "user-1",
		Recipient:   recipientAddr,
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(10),
		TargetChain: "polygon",
	}
	job := h.seedJob(t, req)

	h.selector.EXPECT().SelectSourceChain(gomock.Any(), gomock.Any()).Return("polygon", nil)
	h.executor.EXPECT().
		Execute(gomock.Any(), "polygon", "user-1", recipientAddr, "USDC", gomock.Any()).
		Return(entities.TxHandle("0xslow"), nil)
	h.tracker.EXPECT().
		Watch(gomock.Any(), gomock.Any()).
		Return(&interfaces.WatchOutcome{
			State:  entities.WatchStale,
			Waited: 10 * time.Minute,
		}, nil)

	_, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{Job: job})
	require.Error(t, err)

	var staleErr *errors.ConfirmationStaleError
	require.ErrorAs(t, err, &staleErr)
	assert.Equal(t, errors.ClassTimeout, errors.Classify(err))
	assert.False(t, errors.IsRetryable(err))

	// The handle survives and the leg is not failed, so a later re-check
	// re-watches instead of paying a second time.
	legs, findErr := h.legs.FindByJob(context.Background(), job.ID)
	require.NoError(t, findErr)
	require.Len(t, legs, 1)
	assert.Equal(t, entities.TxHandle("0xslow"), legs[0].TxHandle)
	assert.NotEqual(t, entities.LegStatusFailed, legs[0].Status)
	assert.Contains(t, legs[0].LastError, "stale after")
}

func TestRoutePayment_CheapestRouteWins(t *testing.T) {
	h := newRouteHarness(t)
	req := &entities.RouteRequest{
		PaymentID:     uuid.New(),
		OwnerID:       "user-1",
		Recipient:     recipientAddr,
		TokenSymbol:   "USDC",
		Amount:        decimal.NewFromInt(25),
		SourceChain:   "polygon",
		TargetChain:   "base",
		CheapestRoute: true,
	}
	job := h.seedJob(t, req)

	expensive := entities.BridgeRoute{
		Provider: "hop", FromChain: "polygon", ToChain: "base",
		TokenSymbol: "USDC", Amount: decimal.NewFromInt(25), Fee: decimal.NewFromInt(2),
	}
	cheap := entities.BridgeRoute{
		Provider: "across", FromChain: "polygon", ToChain: "base",
		TokenSymbol: "USDC", Amount: decimal.NewFromInt(25), Fee: decimal.NewFromInt(1),
	}

	h.selector.EXPECT().SelectSourceChain(gomock.Any(), gomock.Any()).Return("polygon", nil)
	h.bridge.EXPECT().
		Quotes(gomock.Any(), "polygon", "base", "USDC", gomock.Any()).
		Return([]entities.BridgeRoute{expensive, cheap}, nil)
	h.bridge.EXPECT().
		Execute(gomock.Any(), gomock.Any(), "user-1").
		DoAndReturn(func(_ context.Context, got *entities.BridgeRoute, _ string) (entities.TxHandle, error) {
			assert.Equal(t, "across", got.Provider)
			return entities.TxHandle("br-cheap"), nil
		})
	h.tracker.EXPECT().WatchArrival(gomock.Any(), gomock.Any()).Return(confirmedOutcome(0), nil)
	h.executor.EXPECT().
		Execute(gomock.Any(), "base", "user-1", recipientAddr, "USDC", gomock.Any()).
		Return(entities.TxHandle("0xpay"), nil)
	h.tracker.EXPECT().Watch(gomock.Any(), gomock.Any()).Return(confirmedOutcome(3), nil)

	_, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{Job: job})
	require.NoError(t, err)
}

func TestRoutePayment_InsufficientFundsFailsLeg(t *testing.T) {
	h := newRouteHarness(t)
	req := &entities.RouteRequest{
		PaymentID:   uuid.New(),
		OwnerID:     "user-1",
		Recipient:   recipientAddr,
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(100),
		TargetChain: "polygon",
	}
	job := h.seedJob(t, req)

	fundsErr := &errors.InsufficientFundsError{
		Chain:       "polygon",
		TokenSymbol: "USDC",
		Needed:      decimal.NewFromInt(100),
		Available:   decimal.NewFromInt(40),
	}

	h.selector.EXPECT().SelectSourceChain(gomock.Any(), gomock.Any()).Return("polygon", nil)
	h.executor.EXPECT().
		Execute(gomock.Any(), "polygon", "user-1", recipientAddr, "USDC", gomock.Any()).
		Return(entities.TxHandle(""), fundsErr)

	_, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{Job: job})
	require.Error(t, err)
	assert.Equal(t, errors.ClassFunds, errors.Classify(err))
	assert.False(t, errors.IsRetryable(err))

	legs, findErr := h.legs.FindByJob(context.Background(), job.ID)
	require.NoError(t, findErr)
	require.Len(t, legs, 1)
	assert.Equal(t, entities.LegStatusFailed, legs[0].Status)
	assert.Contains(t, legs[0].LastError, "insufficient")
}

func TestRoutePayment_UnresolvableRecipient(t *testing.T) {
	h := newRouteHarness(t)
	req := &entities.RouteRequest{
		PaymentID:   uuid.New(),
		OwnerID:     "user-1",
		Recipient:   "@ghost",
		TokenSymbol: "USDC",
		Amount:      decimal.NewFromInt(5),
		TargetChain: "polygon",
	}
	job := h.seedJob(t, req)

	h.directory.EXPECT().
		Resolve(gomock.Any(), "@ghost").
		Return("", errors.NewDomainError(errors.ErrNotFound, "recipient \"@ghost\" is not registered"))

	_, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{Job: job})
	require.Error(t, err)

	var unresolved *errors.RecipientUnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "@ghost", unresolved.Recipient)
	assert.Equal(t, errors.ClassInput, errors.Classify(err))

	legs, findErr := h.legs.FindByJob(context.Background(), job.ID)
	require.NoError(t, findErr)
	assert.Empty(t, legs)
}

func TestRoutePayment_RejectsBadInput(t *testing.T) {
	h := newRouteHarness(t)

	t.Run("nil job", func(t *testing.T) {
		_, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{})
		require.Error(t, err)

		var validationErr *errors.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("garbage payload", func(t *testing.T) {
		job := &entities.Job{ID: uuid.New(), Payload: "not json"}
		_, err := h.uc.Execute(context.Background(), interfaces.RoutePaymentParams{Job: job})
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})
}
