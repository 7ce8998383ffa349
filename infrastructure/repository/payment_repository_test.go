package repository

import (
	"testing"
	"time"

	"crosspay-engine/domain/entities"
	"crosspay-engine/test/helpers"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentColumns() []string {
	return []string{
		"id", "owner_id", "recipient", "token_symbol", "amount",
		"source_chain", "target_chain", "scheduled_for", "status",
		"retry_count", "created_at", "updated_at",
	}
}

func addPaymentRow(rows *sqlmock.Rows, id uuid.UUID, status entities.PaymentStatus) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id.String(), "user-1", "alice.eth", "USDC", "25.50",
		"ethereum", "polygon", now, string(status), 0, now, now,
	)
}

func TestScheduledPaymentRepository_FindByID(t *testing.T) {
	ctx := helpers.TestContext(t)

	t.Run("success", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewScheduledPaymentRepository(db)

		paymentID := uuid.New()
		rows := addPaymentRow(sqlmock.NewRows(paymentColumns()), paymentID, entities.PaymentStatusPending)

		mock.ExpectQuery(`SELECT \* FROM "scheduled_payments" WHERE id = \$1`).
			WillReturnRows(rows)

		payment, err := repo.FindByID(ctx, paymentID)
		require.NoError(t, err)
		require.NotNil(t, payment)
		assert.Equal(t, paymentID, payment.ID)
		assert.Equal(t, "USDC", payment.TokenSymbol)
		assert.Equal(t, "25.5", payment.Amount.String())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewScheduledPaymentRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "scheduled_payments" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(paymentColumns()))

		payment, err := repo.FindByID(ctx, uuid.New())
		require.Error(t, err)
		assert.Nil(t, payment)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestScheduledPaymentRepository_FindByOwner(t *testing.T) {
	ctx := helpers.TestContext(t)
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewScheduledPaymentRepository(db)

	rows := sqlmock.NewRows(paymentColumns())
	addPaymentRow(rows, uuid.New(), entities.PaymentStatusPending)
	addPaymentRow(rows, uuid.New(), entities.PaymentStatusPending)

	mock.ExpectQuery(`SELECT \* FROM "scheduled_payments" WHERE owner_id = \$1 AND status = \$2 ORDER BY created_at DESC`).
		WillReturnRows(rows)

	payments, err := repo.FindByOwner(ctx, "user-1", entities.PaymentStatusPending, 10)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestScheduledPaymentRepository_ClaimDue(t *testing.T) {
	ctx := helpers.TestContext(t)
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewScheduledPaymentRepository(db)

	firstID := uuid.New()
	secondID := uuid.New()
	rows := sqlmock.NewRows(paymentColumns())
	addPaymentRow(rows, firstID, entities.PaymentStatusPending)
	addPaymentRow(rows, secondID, entities.PaymentStatusPending)

	mock.ExpectQuery(`SELECT \* FROM "scheduled_payments" WHERE status = \$1 AND scheduled_for <= \$2`).
		WillReturnRows(rows)

	// First candidate is claimed; the second was already taken by a peer.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "scheduled_payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "scheduled_payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	claimed, err := repo.ClaimDue(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, firstID, claimed[0].ID)
	assert.Equal(t, entities.PaymentStatusClaimed, claimed[0].Status)
}

func TestScheduledPaymentRepository_UpdateStatus(t *testing.T) {
	ctx := helpers.TestContext(t)

	t.Run("success", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewScheduledPaymentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "scheduled_payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateStatus(ctx, uuid.New(), entities.PaymentStatusProcessing, "")
		require.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewScheduledPaymentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "scheduled_payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.UpdateStatus(ctx, uuid.New(), entities.PaymentStatusFailed, "out of retries")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestScheduledPaymentRepository_CancelPending(t *testing.T) {
	ctx := helpers.TestContext(t)

	t.Run("cancels a pending payment", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewScheduledPaymentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "scheduled_payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		cancelled, err := repo.CancelPending(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, cancelled)
	})

	t.Run("reports no-op when the payment is already claimed", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewScheduledPaymentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "scheduled_payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		cancelled, err := repo.CancelPending(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, cancelled)
	})
}
