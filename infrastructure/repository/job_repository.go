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

// claimScanAttempts bounds how many candidates a single ClaimNext call
// races for before giving up and letting the caller poll again.
const claimScanAttempts = 3

// jobRepository implements the JobRepository interface.
type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository.
func NewJobRepository(db *gorm.DB) interfaces.JobRepository {
	return &jobRepository{db: db}
}

// Create persists a new job.
func (r *jobRepository) Create(ctx context.Context, job *entities.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return &errors.RepositoryError{
			Operation: "Create",
			Entity:    "Job",
			Err:       err,
		}
	}
	return nil
}

// FindByID finds a job by its ID.
func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	var job entities.Job

	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewDomainError(errors.ErrNotFound, fmt.Sprintf("job %s not found", id))
		}
		return nil, &errors.RepositoryError{
			Operation: "FindByID",
			Entity:    "Job",
			Err:       err,
		}
	}

	return &job, nil
}

// FindByPayment returns all jobs created for a payment, oldest first.
func (r *jobRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]entities.Job, error) {
	var jobs []entities.Job

	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, &errors.RepositoryError{
			Operation: "FindByPayment",
			Entity:    "Job",
			Err:       err,
		}
	}

	return jobs, nil
}

// ClaimNext atomically claims the most urgent waiting job for a worker.
// The lowest priority value wins, ties broken by age. The claim is a
// conditional update guarded on state, so concurrent workers racing for
// the same row leave exactly one winner; losers move to the next
// candidate. Claiming counts as an attempt and takes a lease, which lets
// maintenance requeue the job if the worker dies before finishing.
// Returns nil without error when no job is available.
func (r *jobRepository) ClaimNext(
	ctx context.Context,
	workerID string,
	lease time.Duration,
) (*entities.Job, error) {
	for scan := 0; scan < claimScanAttempts; scan++ {
		var job entities.Job

		err := r.db.WithContext(ctx).
			Where("state = ?", entities.JobStateWaiting).
			Order("priority ASC, created_at ASC, id ASC").
			First(&job).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, nil
			}
			return nil, &errors.RepositoryError{
				Operation: "ClaimNext.Scan",
				Entity:    "Job",
				Err:       err,
			}
		}

		now := time.Now().UTC()
		lockedUntil := now.Add(lease)

		result := r.db.WithContext(ctx).
			Model(&entities.Job{}).
			Where("id = ? AND state = ?", job.ID, entities.JobStateWaiting).
			Updates(map[string]interface{}{
				"state":        entities.JobStateActive,
				"attempts":     gorm.Expr("attempts + 1"),
				"locked_by":    workerID,
				"locked_until": lockedUntil,
				"updated_at":   now,
			})
		if result.Error != nil {
			return nil, &errors.RepositoryError{
				Operation: "ClaimNext.Claim",
				Entity:    "Job",
				Err:       result.Error,
			}
		}
		if result.RowsAffected == 0 {
			// Lost the race to another worker; try the next candidate.
			continue
		}

		job.State = entities.JobStateActive
		job.Attempts++
		job.LockedBy = workerID
		job.LockedUntil = &lockedUntil
		return &job, nil
	}

	return nil, nil
}

// MarkCompleted finishes an active job and releases its lease.
func (r *jobRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&entities.Job{}).
		Where("id = ? AND state = ?", id, entities.JobStateActive).
		Updates(map[string]interface{}{
			"state":        entities.JobStateCompleted,
			"completed_at": now,
			"locked_by":    "",
			"locked_until": nil,
			"updated_at":   now,
		})
	if result.Error != nil {
		return &errors.RepositoryError{
			Operation: "MarkCompleted",
			Entity:    "Job",
			Err:       result.Error,
		}
	}
	if result.RowsAffected == 0 {
		return errors.NewDomainError(errors.ErrConflict, fmt.Sprintf("job %s is not active", id))
	}

	return nil
}

// MarkFailed finishes an active job terminally and releases its lease.
func (r *jobRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	now := time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&entities.Job{}).
		Where("id = ? AND state = ?", id, entities.JobStateActive).
		Updates(map[string]interface{}{
			"state":        entities.JobStateFailed,
			"last_error":   lastError,
			"completed_at": now,
			"locked_by":    "",
			"locked_until": nil,
			"updated_at":   now,
		})
	if result.Error != nil {
		return &errors.RepositoryError{
			Operation: "MarkFailed",
			Entity:    "Job",
			Err:       result.Error,
		}
	}
	if result.RowsAffected == 0 {
		return errors.NewDomainError(errors.ErrConflict, fmt.Sprintf("job %s is not active", id))
	}

	return nil
}

// Delay parks an active job until its next attempt and releases the lease.
func (r *jobRepository) Delay(
	ctx context.Context,
	id uuid.UUID,
	nextAttemptAt time.Time,
	lastError string,
) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Job{}).
		Where("id = ? AND state = ?", id, entities.JobStateActive).
		Updates(map[string]interface{}{
			"state":           entities.JobStateDelayed,
			"next_attempt_at": nextAttemptAt,
			"last_error":      lastError,
			"locked_by":       "",
			"locked_until":    nil,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return &errors.RepositoryError{
			Operation: "Delay",
			Entity:    "Job",
			Err:       result.Error,
		}
	}
	if result.RowsAffected == 0 {
		return errors.NewDomainError(errors.ErrConflict, fmt.Sprintf("job %s is not active", id))
	}

	return nil
}

// PromoteDelayed moves delayed jobs whose backoff has elapsed back to
// waiting. Returns the number of jobs promoted.
func (r *jobRepository) PromoteDelayed(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Job{}).
		Where("state = ? AND next_attempt_at <= ?", entities.JobStateDelayed, now).
		Updates(map[string]interface{}{
			"state":           entities.JobStateWaiting,
			"next_attempt_at": nil,
			"updated_at":      now,
		})
	if result.Error != nil {
		return 0, &errors.RepositoryError{
			Operation: "PromoteDelayed",
			Entity:    "Job",
			Err:       result.Error,
		}
	}

	return result.RowsAffected, nil
}

// RequeueStale returns active jobs whose lease expired to waiting, making
// work lost to a crashed worker runnable again. The attempt was already
// counted at claim time, so requeueing does not touch the counter.
func (r *jobRepository) RequeueStale(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Job{}).
		Where("state = ? AND locked_until IS NOT NULL AND locked_until < ?", entities.JobStateActive, now).
		Updates(map[string]interface{}{
			"state":        entities.JobStateWaiting,
			"locked_by":    "",
			"locked_until": nil,
			"updated_at":   now,
		})
	if result.Error != nil {
		return 0, &errors.RepositoryError{
			Operation: "RequeueStale",
			Entity:    "Job",
			Err:       result.Error,
		}
	}

	return result.RowsAffected, nil
}

// CountByState counts jobs in the given state.
func (r *jobRepository) CountByState(ctx context.Context, state entities.JobState) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&entities.Job{}).
		Where("state = ?", state).
		Count(&count).Error
	if err != nil {
		return 0, &errors.RepositoryError{
			Operation: "CountByState",
			Entity:    "Job",
			Err:       err,
		}
	}

	return count, nil
}
