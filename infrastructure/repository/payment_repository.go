package repository

import (
	"context"
	"fmt"
	"time"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// scheduledPaymentRepository implements the ScheduledPaymentRepository interface.
type scheduledPaymentRepository struct {
	db *gorm.DB
}

// NewScheduledPaymentRepository creates a new scheduled payment repository.
func NewScheduledPaymentRepository(db *gorm.DB) interfaces.ScheduledPaymentRepository {
	return &scheduledPaymentRepository{db: db}
}

// Create persists a new payment intent.
func (r *scheduledPaymentRepository) Create(ctx context.Context, payment *entities.ScheduledPayment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return &errors.RepositoryError{
			Operation: "Create",
			Entity:    "ScheduledPayment",
			Err:       err,
		}
	}
	return nil
}

// FindByID finds a payment by its ID.
func (r *scheduledPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ScheduledPayment, error) {
	var payment entities.ScheduledPayment

	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewDomainError(errors.ErrNotFound, fmt.Sprintf("payment %s not found", id))
		}
		return nil, &errors.RepositoryError{
			Operation: "FindByID",
			Entity:    "ScheduledPayment",
			Err:       err,
		}
	}

	return &payment, nil
}

// FindByOwner lists an owner's payments, newest first.
func (r *scheduledPaymentRepository) FindByOwner(
	ctx context.Context,
	ownerID string,
	status entities.PaymentStatus,
	limit int,
) ([]entities.ScheduledPayment, error) {
	var payments []entities.ScheduledPayment

	query := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC")

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&payments).Error; err != nil {
		return nil, &errors.RepositoryError{
			Operation: "FindByOwner",
			Entity:    "ScheduledPayment",
			Err:       err,
		}
	}

	return payments, nil
}

// ClaimDue atomically flips due pending payments to claimed. Candidates are
// read first, then each is claimed with a conditional update; a row another
// claimer or a cancel got to first affects zero rows and is skipped, so two
// schedulers never claim the same payment.
func (r *scheduledPaymentRepository) ClaimDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]entities.ScheduledPayment, error) {
	var candidates []entities.ScheduledPayment

	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", entities.PaymentStatusPending, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, &errors.RepositoryError{
			Operation: "ClaimDue.Scan",
			Entity:    "ScheduledPayment",
			Err:       err,
		}
	}

	claimed := make([]entities.ScheduledPayment, 0, len(candidates))
	for i := range candidates {
		result := r.db.WithContext(ctx).
			Model(&entities.ScheduledPayment{}).
			Where("id = ? AND status = ?", candidates[i].ID, entities.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":     entities.PaymentStatusClaimed,
				"updated_at": now,
			})
		if result.Error != nil {
			return nil, &errors.RepositoryError{
				Operation: "ClaimDue.Claim",
				Entity:    "ScheduledPayment",
				Err:       result.Error,
			}
		}
		if result.RowsAffected == 0 {
			continue
		}

		candidates[i].Status = entities.PaymentStatusClaimed
		claimed = append(claimed, candidates[i])
	}

	return claimed, nil
}

// UpdateStatus transitions a payment and records the latest error text.
func (r *scheduledPaymentRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status entities.PaymentStatus,
	lastError string,
) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     status,
		"last_error": lastError,
		"updated_at": now,
	}
	if status == entities.PaymentStatusCompleted {
		updates["completed_at"] = now
	}

	result := r.db.WithContext(ctx).
		Model(&entities.ScheduledPayment{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return &errors.RepositoryError{
			Operation: "UpdateStatus",
			Entity:    "ScheduledPayment",
			Err:       result.Error,
		}
	}
	if result.RowsAffected == 0 {
		return errors.NewDomainError(errors.ErrNotFound, fmt.Sprintf("payment %s not found", id))
	}

	return nil
}

// RecordAttempt mirrors a failed job attempt on the payment row.
func (r *scheduledPaymentRepository) RecordAttempt(
	ctx context.Context,
	id uuid.UUID,
	retryCount int,
	lastError string,
) error {
	result := r.db.WithContext(ctx).
		Model(&entities.ScheduledPayment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"retry_count": retryCount,
			"last_error":  lastError,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return &errors.RepositoryError{
			Operation: "RecordAttempt",
			Entity:    "ScheduledPayment",
			Err:       result.Error,
		}
	}

	return nil
}

// CancelPending atomically flips a pending payment to cancelled. This is
// the same conditional transition the claim path uses, so a cancel and a
// claim racing on one row resolve to exactly one winner.
func (r *scheduledPaymentRepository) CancelPending(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.ScheduledPayment{}).
		Where("id = ? AND status = ?", id, entities.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     entities.PaymentStatusCancelled,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, &errors.RepositoryError{
			Operation: "CancelPending",
			Entity:    "ScheduledPayment",
			Err:       result.Error,
		}
	}

	return result.RowsAffected > 0, nil
}
