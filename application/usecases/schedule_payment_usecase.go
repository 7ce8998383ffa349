// Package usecases contains application use cases that orchestrate business logic.
// It implements the operations for scheduling, submitting, cancelling, listing, and
// routing payments.
package usecases

import (
	"context"
	"time"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/google/uuid"
)

// schedulePaymentUseCase implements the SchedulePaymentUseCase interface.
type schedulePaymentUseCase struct {
	paymentRepository interfaces.ScheduledPaymentRepository
	knownChains       map[string]bool
	logger            interfaces.Logger
}

// NewSchedulePaymentUseCase creates a new schedule payment use case.
func NewSchedulePaymentUseCase(
	paymentRepository interfaces.ScheduledPaymentRepository,
	knownChains []string,
	logger interfaces.Logger,
) interfaces.SchedulePaymentUseCase {
	chains := make(map[string]bool, len(knownChains))
	for _, c := range knownChains {
		chains[c] = true
	}
	return &schedulePaymentUseCase{
		paymentRepository: paymentRepository,
		knownChains:       chains,
		logger:            logger,
	}
}

// Execute validates and persists a payment intent in the pending state.
func (uc *schedulePaymentUseCase) Execute(
	ctx context.Context,
	params interfaces.SchedulePaymentParams,
) (*entities.ScheduledPayment, error) {
	if err := uc.validateParams(params); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &entities.ScheduledPayment{
		ID:                  uuid.New(),
		OwnerID:             params.OwnerID,
		Recipient:           params.Recipient,
		TokenSymbol:         params.TokenSymbol,
		Amount:              params.Amount,
		SourceChain:         params.SourceChain,
		TargetChain:         params.TargetChain,
		ScheduledFor:        params.ScheduledFor.UTC(),
		Status:              entities.PaymentStatusPending,
		CheapestRoute:       params.CheapestRoute,
		AnyChainWithBalance: params.AnyChainWithBalance,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := uc.paymentRepository.Create(ctx, payment); err != nil {
		uc.logger.Error("Failed to persist scheduled payment", "error", err)
		return nil, err
	}

	uc.logger.Info("Payment scheduled",
		"payment_id", payment.ID,
		"owner", payment.OwnerID,
		"token", payment.TokenSymbol,
		"amount", payment.Amount.String(),
		"scheduled_for", payment.ScheduledFor)

	return payment, nil
}

// validateParams validates the schedule parameters.
func (uc *schedulePaymentUseCase) validateParams(params interfaces.SchedulePaymentParams) error {
	validationErr := &errors.ValidationError{}

	if params.OwnerID == "" {
		validationErr.AddFieldError("owner_id", "owner id is required")
	}

	if params.Recipient == "" {
		validationErr.AddFieldError("recipient", "recipient is required")
	}

	if params.TokenSymbol == "" {
		validationErr.AddFieldError("token_symbol", "token symbol is required")
	}

	if !params.Amount.IsPositive() {
		validationErr.AddFieldError("amount", "amount must be positive")
	}

	if params.ScheduledFor.IsZero() {
		validationErr.AddFieldError("scheduled_for", "scheduled time is required")
	} else if !params.ScheduledFor.After(time.Now()) {
		validationErr.AddFieldError("scheduled_for", "scheduled time must be in the future")
	}

	if params.SourceChain != "" && !uc.knownChains[params.SourceChain] {
		validationErr.AddFieldError("source_chain", "unknown chain")
	}

	if params.TargetChain != "" && !uc.knownChains[params.TargetChain] {
		validationErr.AddFieldError("target_chain", "unknown chain")
	}

	if validationErr.HasErrors() {
		return validationErr
	}

	return nil
}
