package usecases

import (
	"context"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/google/uuid"
)

// cancelPaymentUseCase implements the CancelPaymentUseCase interface.
type cancelPaymentUseCase struct {
	paymentRepository interfaces.ScheduledPaymentRepository
	logger            interfaces.Logger
}

// NewCancelPaymentUseCase creates a new cancel payment use case.
func NewCancelPaymentUseCase(
	paymentRepository interfaces.ScheduledPaymentRepository,
	logger interfaces.Logger,
) interfaces.CancelPaymentUseCase {
	return &cancelPaymentUseCase{
		paymentRepository: paymentRepository,
		logger:            logger,
	}
}

// Execute cancels a pending payment. The pending-to-cancelled transition
// races the scheduler's pending-to-claimed transition; whichever commits
// first wins, and a lost race surfaces as already-in-progress.
func (uc *cancelPaymentUseCase) Execute(
	ctx context.Context,
	params interfaces.CancelPaymentParams,
) (*entities.ScheduledPayment, error) {
	if params.PaymentID == uuid.Nil {
		validationErr := &errors.ValidationError{}
		validationErr.AddFieldError("payment_id", "payment id is required")
		return nil, validationErr
	}

	cancelled, err := uc.paymentRepository.CancelPending(ctx, params.PaymentID)
	if err != nil {
		return nil, err
	}

	payment, err := uc.paymentRepository.FindByID(ctx, params.PaymentID)
	if err != nil {
		return nil, err
	}

	if !cancelled {
		// Cancelling twice is a no-op success.
		if payment.Status == entities.PaymentStatusCancelled {
			return payment, nil
		}
		return nil, &errors.AlreadyInProgressError{
			PaymentID: params.PaymentID.String(),
			Status:    string(payment.Status),
		}
	}

	uc.logger.Info("Payment cancelled", "payment_id", payment.ID, "owner", payment.OwnerID)
	return payment, nil
}
