package repository

import (
	"context"

	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"gorm.io/gorm"
)

// unitOfWork implements the UnitOfWork interface over a single transaction.
type unitOfWork struct {
	tx                *gorm.DB
	paymentRepository interfaces.ScheduledPaymentRepository
	jobRepository     interfaces.JobRepository
	legRepository     interfaces.LegRepository
}

// Payments returns the scheduled payment repository bound to the transaction.
func (u *unitOfWork) Payments() interfaces.ScheduledPaymentRepository {
	if u.paymentRepository == nil {
		u.paymentRepository = NewScheduledPaymentRepository(u.tx)
	}
	return u.paymentRepository
}

// Jobs returns the job repository bound to the transaction.
func (u *unitOfWork) Jobs() interfaces.JobRepository {
	if u.jobRepository == nil {
		u.jobRepository = NewJobRepository(u.tx)
	}
	return u.jobRepository
}

// Legs returns the leg repository bound to the transaction.
func (u *unitOfWork) Legs() interfaces.LegRepository {
	if u.legRepository == nil {
		u.legRepository = NewLegRepository(u.tx)
	}
	return u.legRepository
}

// Commit commits the transaction.
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

// Rollback rolls back the transaction. Safe to call after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// unitOfWorkFactory opens units of work against a shared database handle.
type unitOfWorkFactory struct {
	db *gorm.DB
}

// NewUnitOfWorkFactory creates a new unit of work factory.
func NewUnitOfWorkFactory(db *gorm.DB) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// Begin starts a transaction and returns a unit of work bound to it.
func (f *unitOfWorkFactory) Begin(ctx context.Context) (interfaces.UnitOfWork, error) {
	tx := f.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, &errors.RepositoryError{
			Operation: "Begin",
			Entity:    "UnitOfWork",
			Err:       tx.Error,
		}
	}

	return &unitOfWork{tx: tx}, nil
}
