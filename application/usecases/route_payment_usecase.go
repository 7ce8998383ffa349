package usecases

import (
	"context"
	"fmt"
	"time"

	"crosspay-engine/domain/dto"
	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/ethereum/go-ethereum/common"
)

// routePaymentUseCase implements the RoutePaymentUseCase interface. It is
// the worker-side handler: resolve, bridge when the chains differ, pay,
// confirm. Each step persists its leg row before the external call it
// makes, so a crashed or redelivered job resumes from the legs table
// instead of moving money twice.
type routePaymentUseCase struct {
	paymentRepository interfaces.ScheduledPaymentRepository
	legRepository     interfaces.LegRepository
	chainSelector     interfaces.ChainSelector
	directory         interfaces.DirectoryService
	bridge            interfaces.BridgeProvider
	executor          interfaces.PaymentExecutor
	tracker           interfaces.ConfirmationTracker
	notifier          interfaces.Notifier
	logger            interfaces.Logger

	confirmations        map[string]uint64
	defaultConfirmations uint64
	bridgeTimeout        time.Duration
}

// NewRoutePaymentUseCase creates a new route payment use case.
func NewRoutePaymentUseCase(
	paymentRepository interfaces.ScheduledPaymentRepository,
	legRepository interfaces.LegRepository,
	chainSelector interfaces.ChainSelector,
	directory interfaces.DirectoryService,
	bridge interfaces.BridgeProvider,
	executor interfaces.PaymentExecutor,
	tracker interfaces.ConfirmationTracker,
	notifier interfaces.Notifier,
	logger interfaces.Logger,
	confirmations map[string]uint64,
	defaultConfirmations uint64,
	bridgeTimeout time.Duration,
) interfaces.RoutePaymentUseCase {
	return &routePaymentUseCase{
		paymentRepository:    paymentRepository,
		legRepository:        legRepository,
		chainSelector:        chainSelector,
		directory:            directory,
		bridge:               bridge,
		executor:             executor,
		tracker:              tracker,
		notifier:             notifier,
		logger:               logger,
		confirmations:        confirmations,
		defaultConfirmations: defaultConfirmations,
		bridgeTimeout:        bridgeTimeout,
	}
}

// Execute runs one job attempt to a terminal outcome.
func (uc *routePaymentUseCase) Execute(
	ctx context.Context,
	params interfaces.RoutePaymentParams,
) (*interfaces.RoutePaymentResult, error) {
	if params.Job == nil {
		validationErr := &errors.ValidationError{}
		validationErr.AddFieldError("job", "job is required")
		return nil, validationErr
	}

	job := params.Job
	req, err := job.Request()
	if err != nil {
		return nil, errors.NewDomainError(errors.ErrInvalidInput, "job payload is not a route request")
	}

	log := uc.logger.WithFields(map[string]interface{}{
		"job_id":     job.ID.String(),
		"payment_id": req.PaymentID.String(),
		"attempt":    job.Attempts,
	})
	log.Info("Routing payment",
		"owner", req.OwnerID,
		"token", req.TokenSymbol,
		"amount", req.Amount.String())

	if err := uc.paymentRepository.UpdateStatus(ctx, req.PaymentID, entities.PaymentStatusProcessing, ""); err != nil {
		return nil, err
	}

	bridgeLeg, paymentLeg, err := uc.loadResumeState(ctx, job)
	if err != nil {
		return nil, err
	}
	if bridgeLeg != nil || paymentLeg != nil {
		log.Info("Resuming from persisted legs",
			"has_bridge_leg", bridgeLeg != nil,
			"has_payment_leg", paymentLeg != nil)
	}

	recipient, err := uc.resolveRecipient(ctx, req)
	if err != nil {
		return nil, err
	}

	source, target, err := uc.resolveChains(ctx, req, bridgeLeg, paymentLeg)
	if err != nil {
		return nil, err
	}
	log.Info("Route resolved", "source_chain", source, "target_chain", target)

	result := &interfaces.RoutePaymentResult{
		SourceChain: source,
		TargetChain: target,
	}

	if source != target {
		bridgeLeg, err = uc.ensureBridged(ctx, job, req, source, target, bridgeLeg)
		if err != nil {
			return nil, err
		}
		result.Bridged = true
		result.BridgeProvider = bridgeLeg.Provider
		result.BridgeTxHandle = bridgeLeg.TxHandle
	}

	paymentLeg, err = uc.ensurePaid(ctx, job, req, target, recipient, paymentLeg)
	if err != nil {
		return nil, err
	}
	result.PaymentTxHandle = paymentLeg.TxHandle
	result.Confirmations = paymentLeg.Confirmations

	if err := uc.paymentRepository.UpdateStatus(ctx, req.PaymentID, entities.PaymentStatusCompleted, ""); err != nil {
		return nil, err
	}

	uc.notify(ctx, &dto.PaymentEvent{
		Kind:          dto.EventCompleted,
		OwnerID:       req.OwnerID,
		PaymentID:     req.PaymentID,
		JobID:         job.ID,
		Chain:         target,
		TxHandle:      paymentLeg.TxHandle.String(),
		Confirmations: paymentLeg.Confirmations,
		Detail:        fmt.Sprintf("paid %s %s to %s", req.Amount, req.TokenSymbol, req.Recipient),
		Timestamp:     time.Now().UTC(),
	})

	log.Info("Payment completed",
		"tx_handle", paymentLeg.TxHandle,
		"bridged", result.Bridged,
		"confirmations", paymentLeg.Confirmations)
	return result, nil
}

// loadResumeState returns the job's latest non-failed leg of each kind.
// Failed legs belong to spent attempts; a live leg carries the progress the
// current attempt must not repeat.
func (uc *routePaymentUseCase) loadResumeState(
	ctx context.Context,
	job *entities.Job,
) (*entities.Leg, *entities.Leg, error) {
	legs, err := uc.legRepository.FindByJob(ctx, job.ID)
	if err != nil {
		return nil, nil, err
	}

	var bridgeLeg, paymentLeg *entities.Leg
	for i := range legs {
		leg := &legs[i]
		if leg.Status == entities.LegStatusFailed {
			continue
		}
		switch leg.Kind {
		case entities.LegKindBridge:
			bridgeLeg = leg
		case entities.LegKindPayment:
			paymentLeg = leg
		}
	}
	return bridgeLeg, paymentLeg, nil
}

// resolveRecipient maps the recipient to a chain address. Raw addresses
// pass through untouched.
func (uc *routePaymentUseCase) resolveRecipient(ctx context.Context, req *entities.RouteRequest) (string, error) {
	if common.IsHexAddress(req.Recipient) {
		return req.Recipient, nil
	}

	address, err := uc.directory.Resolve(ctx, req.Recipient)
	if err != nil {
		if errors.Classify(err) == errors.ClassInput {
			return "", &errors.RecipientUnresolvedError{Recipient: req.Recipient}
		}
		return "", err
	}
	return address, nil
}

// resolveChains fixes the source and target chains. Persisted legs pin the
// route on resume; fresh jobs go through the chain selector.
func (uc *routePaymentUseCase) resolveChains(
	ctx context.Context,
	req *entities.RouteRequest,
	bridgeLeg, paymentLeg *entities.Leg,
) (string, string, error) {
	if bridgeLeg != nil {
		return bridgeLeg.FromChain, bridgeLeg.ToChain, nil
	}
	if paymentLeg != nil {
		return paymentLeg.ToChain, paymentLeg.ToChain, nil
	}

	source, err := uc.chainSelector.SelectSourceChain(ctx, req)
	if err != nil {
		return "", "", err
	}
	target := req.TargetChain
	if target == "" {
		target = source
	}
	return source, target, nil
}

// ensureBridged moves funds to the target chain, resuming whatever stage
// the persisted leg recorded. A leg already bridged is a no-op.
func (uc *routePaymentUseCase) ensureBridged(
	ctx context.Context,
	job *entities.Job,
	req *entities.RouteRequest,
	source, target string,
	leg *entities.Leg,
) (*entities.Leg, error) {
	if leg == nil {
		route, err := uc.selectRoute(ctx, req, source, target)
		if err != nil {
			return nil, err
		}

		leg = entities.NewBridgeLeg(job.ID, req.PaymentID, route)
		if err := uc.legRepository.Create(ctx, leg); err != nil {
			return nil, err
		}
		uc.logger.Info("Bridge route quoted",
			"job_id", job.ID.String(),
			"provider", route.Provider,
			"fee", route.Fee.String(),
			"eta_seconds", route.EstimatedSeconds)
	}

	if leg.Status == entities.LegStatusQuoted && leg.TxHandle == "" {
		handle, err := uc.bridge.Execute(ctx, routeFromLeg(leg), req.OwnerID)
		if err != nil {
			uc.failLeg(ctx, leg, err)
			return nil, err
		}
		leg.TxHandle = handle
		leg.Status = entities.LegStatusSubmitted
		if err := uc.legRepository.Update(ctx, leg); err != nil {
			return nil, err
		}
		uc.logger.Info("Bridge transfer submitted",
			"job_id", job.ID.String(), "tx_handle", handle)
	}

	if leg.Status == entities.LegStatusSubmitted || leg.Status == entities.LegStatusConfirming {
		handle := leg.TxHandle
		outcome, err := uc.tracker.WatchArrival(ctx, interfaces.ArrivalParams{
			Chain:    target,
			TxHandle: handle,
			Timeout:  uc.bridgeTimeout,
			Probe: func(ctx context.Context) (entities.BridgeTransferState, error) {
				return uc.bridge.Status(ctx, handle)
			},
		})
		if err != nil {
			return nil, err
		}

		switch outcome.State {
		case entities.WatchConfirmed:
			now := time.Now().UTC()
			leg.Status = entities.LegStatusBridged
			leg.CompletedAt = &now
			if err := uc.legRepository.Update(ctx, leg); err != nil {
				return nil, err
			}
			uc.logger.Info("Bridge transfer arrived",
				"job_id", job.ID.String(), "tx_handle", handle)
		case entities.WatchFailed:
			failErr := errors.NewDomainError(errors.ErrInternal,
				fmt.Sprintf("bridge transfer %s failed: %s", handle, outcome.Reason))
			uc.failLeg(ctx, leg, failErr)
			return nil, failErr
		case entities.WatchStale:
			timeoutErr := &errors.BridgeTimeoutError{
				Provider: leg.Provider,
				TxHandle: handle.String(),
				Waited:   outcome.Waited,
			}
			uc.failLeg(ctx, leg, timeoutErr)
			return nil, timeoutErr
		}
	}

	return leg, nil
}

// selectRoute picks the bridge route per the request's policy.
func (uc *routePaymentUseCase) selectRoute(
	ctx context.Context,
	req *entities.RouteRequest,
	source, target string,
) (*entities.BridgeRoute, error) {
	if !req.CheapestRoute {
		return uc.bridge.Quote(ctx, source, target, req.TokenSymbol, req.Amount)
	}

	routes, err := uc.bridge.Quotes(ctx, source, target, req.TokenSymbol, req.Amount)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, &errors.UnsupportedRouteError{
			FromChain:   source,
			ToChain:     target,
			TokenSymbol: req.TokenSymbol,
		}
	}

	best := &routes[0]
	for i := 1; i < len(routes); i++ {
		if routes[i].TotalCost().LessThan(best.TotalCost()) {
			best = &routes[i]
		}
	}
	return best, nil
}

// ensurePaid executes and confirms the target chain payment, resuming from
// the persisted leg. A leg with a handle is never paid again, only
// re-watched.
func (uc *routePaymentUseCase) ensurePaid(
	ctx context.Context,
	job *entities.Job,
	req *entities.RouteRequest,
	target, recipient string,
	leg *entities.Leg,
) (*entities.Leg, error) {
	if leg == nil {
		leg = entities.NewPaymentLeg(job.ID, req.PaymentID, target, req.TokenSymbol, req.Amount, recipient)
		if err := uc.legRepository.Create(ctx, leg); err != nil {
			return nil, err
		}
	}

	if leg.TxHandle == "" {
		handle, err := uc.executor.Execute(ctx, target, req.OwnerID, leg.RecipientAddress, req.TokenSymbol, req.Amount)
		if err != nil {
			uc.failLeg(ctx, leg, err)
			return nil, err
		}
		leg.TxHandle = handle
		if err := uc.legRepository.Update(ctx, leg); err != nil {
			return nil, err
		}
		uc.logger.Info("Payment submitted",
			"job_id", job.ID.String(), "chain", target, "tx_handle", handle)
	}

	if leg.Status == entities.LegStatusSubmitted || leg.Status == entities.LegStatusConfirming {
		outcome, err := uc.tracker.Watch(ctx, interfaces.WatchParams{
			Chain:                 target,
			TxHandle:              leg.TxHandle,
			RequiredConfirmations: uc.confirmationsFor(target),
			OnMilestone: func(confirmations uint64) {
				leg.Status = entities.LegStatusConfirming
				leg.Confirmations = confirmations
				if err := uc.legRepository.Update(ctx, leg); err != nil {
					uc.logger.Warn("Failed to persist confirmation progress",
						"leg_id", leg.ID.String(), "error", err)
				}
				uc.notify(ctx, &dto.PaymentEvent{
					Kind:          dto.EventMilestone,
					OwnerID:       req.OwnerID,
					PaymentID:     req.PaymentID,
					JobID:         job.ID,
					Chain:         target,
					TxHandle:      leg.TxHandle.String(),
					Confirmations: confirmations,
					Detail:        fmt.Sprintf("%d confirmations", confirmations),
					Timestamp:     time.Now().UTC(),
				})
			},
		})
		if err != nil {
			return nil, err
		}

		switch outcome.State {
		case entities.WatchConfirmed:
			now := time.Now().UTC()
			leg.Status = entities.LegStatusConfirmed
			leg.Confirmations = outcome.Confirmations
			leg.CompletedAt = &now
			if err := uc.legRepository.Update(ctx, leg); err != nil {
				return nil, err
			}
		case entities.WatchFailed:
			execErr := &errors.PaymentExecutionFailedError{
				Chain:    target,
				TxHandle: leg.TxHandle.String(),
				Reason:   "transaction reverted",
			}
			uc.failLeg(ctx, leg, execErr)
			return nil, execErr
		case entities.WatchStale:
			// The transaction may still confirm later. The leg keeps its
			// handle and stays confirming so a resume re-watches rather
			// than paying twice.
			staleErr := &errors.ConfirmationStaleError{
				Chain:    target,
				TxHandle: leg.TxHandle.String(),
				Waited:   outcome.Waited,
			}
			leg.LastError = staleErr.Error()
			if err := uc.legRepository.Update(ctx, leg); err != nil {
				uc.logger.Warn("Failed to record stale watch",
					"leg_id", leg.ID.String(), "error", err)
			}
			return nil, staleErr
		}
	}

	return leg, nil
}

// confirmationsFor returns the chain's confirmation requirement.
func (uc *routePaymentUseCase) confirmationsFor(chain string) uint64 {
	if n, ok := uc.confirmations[chain]; ok && n > 0 {
		return n
	}
	return uc.defaultConfirmations
}

// failLeg records a leg's terminal failure. The persistence error, if any,
// is logged: the caller's own error is the one that matters.
func (uc *routePaymentUseCase) failLeg(ctx context.Context, leg *entities.Leg, cause error) {
	now := time.Now().UTC()
	leg.Status = entities.LegStatusFailed
	leg.LastError = cause.Error()
	leg.CompletedAt = &now
	if err := uc.legRepository.Update(ctx, leg); err != nil {
		uc.logger.Error("Failed to record leg failure",
			"leg_id", leg.ID.String(), "error", err)
	}
}

// notify delivers an event, tolerating notifier failures.
func (uc *routePaymentUseCase) notify(ctx context.Context, event *dto.PaymentEvent) {
	if !uc.notifier.IsConfigured() {
		return
	}
	if err := uc.notifier.Notify(ctx, event); err != nil {
		uc.logger.Warn("Notification delivery failed",
			"kind", event.Kind, "payment_id", event.PaymentID.String(), "error", err)
	}
}

// routeFromLeg rebuilds the quoted route carried by a bridge leg.
func routeFromLeg(leg *entities.Leg) *entities.BridgeRoute {
	return &entities.BridgeRoute{
		Provider:         leg.Provider,
		FromChain:        leg.FromChain,
		ToChain:          leg.ToChain,
		TokenSymbol:      leg.TokenSymbol,
		Amount:           leg.Amount,
		Fee:              leg.Fee,
		EstimatedSeconds: leg.EstimatedSeconds,
	}
}
