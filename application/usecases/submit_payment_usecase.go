package usecases

import (
	"context"
	"time"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// submitPaymentUseCase implements the SubmitPaymentUseCase interface.
type submitPaymentUseCase struct {
	uowFactory  interfaces.UnitOfWorkFactory
	directory   interfaces.DirectoryService
	knownChains map[string]bool
	maxAttempts int
	logger      interfaces.Logger
}

// NewSubmitPaymentUseCase creates a new submit payment use case.
func NewSubmitPaymentUseCase(
	uowFactory interfaces.UnitOfWorkFactory,
	directory interfaces.DirectoryService,
	knownChains []string,
	maxAttempts int,
	logger interfaces.Logger,
) interfaces.SubmitPaymentUseCase {
	chains := make(map[string]bool, len(knownChains))
	for _, c := range knownChains {
		chains[c] = true
	}
	return &submitPaymentUseCase{
		uowFactory:  uowFactory,
		directory:   directory,
		knownChains: chains,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Execute validates the request and persists the payment intent together
// with its job in one transaction. The intent is born claimed: it never
// passes through the scheduler.
func (uc *submitPaymentUseCase) Execute(
	ctx context.Context,
	params interfaces.SubmitPaymentParams,
) (*interfaces.SubmitPaymentResult, error) {
	if err := uc.validateParams(params); err != nil {
		return nil, err
	}

	// Unresolvable recipients fail here, synchronously, instead of burning
	// worker attempts.
	if !common.IsHexAddress(params.Recipient) {
		if _, err := uc.directory.Resolve(ctx, params.Recipient); err != nil {
			if errors.Classify(err) == errors.ClassInput {
				return nil, &errors.RecipientUnresolvedError{Recipient: params.Recipient}
			}
			uc.logger.Error("Directory lookup failed", "recipient", params.Recipient, "error", err)
			return nil, err
		}
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
		ScheduledFor:        now,
		Status:              entities.PaymentStatusClaimed,
		CheapestRoute:       params.CheapestRoute,
		AnyChainWithBalance: params.AnyChainWithBalance,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	job, err := entities.NewJob(&entities.RouteRequest{
		PaymentID:           payment.ID,
		OwnerID:             params.OwnerID,
		Recipient:           params.Recipient,
		TokenSymbol:         params.TokenSymbol,
		Amount:              params.Amount,
		SourceChain:         params.SourceChain,
		TargetChain:         params.TargetChain,
		CheapestRoute:       params.CheapestRoute,
		AnyChainWithBalance: params.AnyChainWithBalance,
	}, now.Unix(), uc.maxAttempts)
	if err != nil {
		return nil, errors.NewDomainError(errors.ErrInternal, "failed to encode job payload")
	}

	uow, err := uc.uowFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Payments().Create(ctx, payment); err != nil {
		_ = uow.Rollback()
		uc.logger.Error("Failed to persist immediate payment", "error", err)
		return nil, err
	}

	if err := uow.Jobs().Create(ctx, job); err != nil {
		_ = uow.Rollback()
		uc.logger.Error("Failed to enqueue immediate payment job", "error", err)
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	uc.logger.Info("Immediate payment accepted",
		"payment_id", payment.ID,
		"job_id", job.ID,
		"owner", payment.OwnerID,
		"token", payment.TokenSymbol,
		"amount", payment.Amount.String())

	return &interfaces.SubmitPaymentResult{
		Payment: payment,
		JobID:   job.ID,
	}, nil
}

// validateParams validates the submit parameters.
func (uc *submitPaymentUseCase) validateParams(params interfaces.SubmitPaymentParams) error {
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
