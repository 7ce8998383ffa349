package usecases

import (
	"context"
	"testing"
	"time"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"crosspay-engine/infrastructure/logger"
	"crosspay-engine/test/fakes"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOwnerPayment(
	t *testing.T,
	store *fakes.PaymentStore,
	owner string,
	status entities.PaymentStatus,
	createdAt time.Time,
) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := store.Create(context.Background(), &entities.ScheduledPayment{
		ID:           id,
		OwnerID:      owner,
		Recipient:    recipientAddr,
		TokenSymbol:  "USDC",
		Amount:       decimal.NewFromInt(10),
		ScheduledFor: createdAt.Add(time.Hour),
		Status:       status,
		CreatedAt:    createdAt,
	})
	require.NoError(t, err)
	return id
}

func TestListPayments_NewestFirstForOwner(t *testing.T) {
	store := fakes.NewPaymentStore()
	uc := NewListPaymentsUseCase(store, logger.NewNopLogger())

	base := time.Now().UTC().Add(-time.Hour)
	oldest := seedOwnerPayment(t, store, "user-1", entities.PaymentStatusPending, base)
	middle := seedOwnerPayment(t, store, "user-1", entities.PaymentStatusCompleted, base.Add(time.Minute))
	newest := seedOwnerPayment(t, store, "user-1", entities.PaymentStatusPending, base.Add(2*time.Minute))
	seedOwnerPayment(t, store, "user-2", entities.PaymentStatusPending, base)

	result, err := uc.Execute(context.Background(), interfaces.ListPaymentsParams{OwnerID: "user-1"})
	require.NoError(t, err)

	require.Equal(t, 3, result.TotalCount)
	require.Len(t, result.Payments, 3)
	assert.Equal(t, newest, result.Payments[0].ID)
	assert.Equal(t, middle, result.Payments[1].ID)
	assert.Equal(t, oldest, result.Payments[2].ID)
}

func TestListPayments_FiltersByStatus(t *testing.T) {
	store := fakes.NewPaymentStore()
	uc := NewListPaymentsUseCase(store, logger.NewNopLogger())

	base := time.Now().UTC().Add(-time.Hour)
	seedOwnerPayment(t, store, "user-1", entities.PaymentStatusPending, base)
	completed := seedOwnerPayment(t, store, "user-1", entities.PaymentStatusCompleted, base.Add(time.Minute))

	result, err := uc.Execute(context.Background(), interfaces.ListPaymentsParams{
		OwnerID: "user-1",
		Status:  entities.PaymentStatusCompleted,
	})
	require.NoError(t, err)

	require.Len(t, result.Payments, 1)
	assert.Equal(t, completed, result.Payments[0].ID)
}

func TestListPayments_AppliesLimit(t *testing.T) {
	store := fakes.NewPaymentStore()
	uc := NewListPaymentsUseCase(store, logger.NewNopLogger())

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedOwnerPayment(t, store, "user-1", entities.PaymentStatusPending, base.Add(time.Duration(i)*time.Minute))
	}

	result, err := uc.Execute(context.Background(), interfaces.ListPaymentsParams{OwnerID: "user-1", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Payments, 2)
	assert.Equal(t, 2, result.TotalCount)
}

func TestListPayments_RequiresOwner(t *testing.T) {
	store := fakes.NewPaymentStore()
	uc := NewListPaymentsUseCase(store, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), interfaces.ListPaymentsParams{})
	require.Error(t, err)

	var validationErr *errors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
