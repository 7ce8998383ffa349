package repository

import (
	"context"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// legRepository implements the LegRepository interface.
type legRepository struct {
	db *gorm.DB
}

// NewLegRepository creates a new leg repository.
func NewLegRepository(db *gorm.DB) interfaces.LegRepository {
	return &legRepository{db: db}
}

// Create persists a new leg. Legs are written before the external call
// they describe is made, so a crash always leaves a record to resume from.
func (r *legRepository) Create(ctx context.Context, leg *entities.Leg) error {
	if err := r.db.WithContext(ctx).Create(leg).Error; err != nil {
		return &errors.RepositoryError{
			Operation: "Create",
			Entity:    "Leg",
			Err:       err,
		}
	}
	return nil
}

// Update writes the full leg row back.
func (r *legRepository) Update(ctx context.Context, leg *entities.Leg) error {
	if err := r.db.WithContext(ctx).Save(leg).Error; err != nil {
		return &errors.RepositoryError{
			Operation: "Update",
			Entity:    "Leg",
			Err:       err,
		}
	}
	return nil
}

// FindByJob returns a job's legs, oldest first.
func (r *legRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]entities.Leg, error) {
	var legs []entities.Leg

	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC, id ASC").
		Find(&legs).Error
	if err != nil {
		return nil, &errors.RepositoryError{
			Operation: "FindByJob",
			Entity:    "Leg",
			Err:       err,
		}
	}

	return legs, nil
}

// FindByPayment returns all legs recorded for a payment across its jobs.
func (r *legRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]entities.Leg, error) {
	var legs []entities.Leg

	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC, id ASC").
		Find(&legs).Error
	if err != nil {
		return nil, &errors.RepositoryError{
			Operation: "FindByPayment",
			Entity:    "Leg",
			Err:       err,
		}
	}

	return legs, nil
}
