package usecases

import (
	"context"

	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
)

// listPaymentsUseCase implements the ListPaymentsUseCase interface.
type listPaymentsUseCase struct {
	paymentRepository interfaces.ScheduledPaymentRepository
	logger            interfaces.Logger
}

// NewListPaymentsUseCase creates a new list payments use case.
func NewListPaymentsUseCase(
	paymentRepository interfaces.ScheduledPaymentRepository,
	logger interfaces.Logger,
) interfaces.ListPaymentsUseCase {
	return &listPaymentsUseCase{
		paymentRepository: paymentRepository,
		logger:            logger,
	}
}

// Execute lists an owner's payment intents, newest first.
func (uc *listPaymentsUseCase) Execute(
	ctx context.Context,
	params interfaces.ListPaymentsParams,
) (*interfaces.ListPaymentsResult, error) {
	if params.OwnerID == "" {
		validationErr := &errors.ValidationError{}
		validationErr.AddFieldError("owner_id", "owner id is required")
		return nil, validationErr
	}

	payments, err := uc.paymentRepository.FindByOwner(ctx, params.OwnerID, params.Status, params.Limit)
	if err != nil {
		uc.logger.Error("Failed to list payments", "owner", params.OwnerID, "error", err)
		return nil, err
	}

	return &interfaces.ListPaymentsResult{
		Payments:   payments,
		TotalCount: len(payments),
	}, nil
}
