package usecases

import (
	"context"

	"crosspay-engine/domain/dto"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/google/uuid"
)

// getJobStatusUseCase implements the GetJobStatusUseCase interface.
type getJobStatusUseCase struct {
	jobRepository     interfaces.JobRepository
	paymentRepository interfaces.ScheduledPaymentRepository
	legRepository     interfaces.LegRepository
	logger            interfaces.Logger
}

// NewGetJobStatusUseCase creates a new job status use case.
func NewGetJobStatusUseCase(
	jobRepository interfaces.JobRepository,
	paymentRepository interfaces.ScheduledPaymentRepository,
	legRepository interfaces.LegRepository,
	logger interfaces.Logger,
) interfaces.GetJobStatusUseCase {
	return &getJobStatusUseCase{
		jobRepository:     jobRepository,
		paymentRepository: paymentRepository,
		legRepository:     legRepository,
		logger:            logger,
	}
}

// Execute returns a job's queue state, its payment intent, and its legs.
func (uc *getJobStatusUseCase) Execute(
	ctx context.Context,
	params interfaces.GetJobStatusParams,
) (*dto.JobStatusResult, error) {
	if params.JobID == uuid.Nil {
		validationErr := &errors.ValidationError{}
		validationErr.AddFieldError("job_id", "job id is required")
		return nil, validationErr
	}

	job, err := uc.jobRepository.FindByID(ctx, params.JobID)
	if err != nil {
		return nil, err
	}

	result := &dto.JobStatusResult{Job: *job}

	payment, err := uc.paymentRepository.FindByID(ctx, job.PaymentID)
	if err != nil {
		uc.logger.Warn("Job references missing payment",
			"job_id", job.ID, "payment_id", job.PaymentID, "error", err)
	} else {
		result.Payment = payment
	}

	legs, err := uc.legRepository.FindByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	result.Legs = legs

	return result, nil
}
