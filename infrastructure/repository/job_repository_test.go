package repository

import (
	"database/sql"
	"testing"
	"time"

	"crosspay-engine/domain/entities"
	domainerrors "crosspay-engine/domain/errors"
	"crosspay-engine/test/helpers"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	cleanup := func() {
		_ = db.Close()
	}

	return gormDB, mock, cleanup
}

func waitingJobColumns() []string {
	return []string{
		"id", "payment_id", "payload", "priority", "state",
		"attempts", "max_attempts", "created_at", "updated_at",
	}
}

func TestJobRepository_ClaimNext(t *testing.T) {
	ctx := helpers.TestContext(t)

	t.Run("claims the most urgent waiting job", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewJobRepository(db)

		jobID := uuid.New()
		paymentID := uuid.New()

		rows := sqlmock.NewRows(waitingJobColumns()).AddRow(
			jobID.String(), paymentID.String(), `{}`, int64(1700000000),
			string(entities.JobStateWaiting), 0, 3, time.Now(), time.Now(),
		)

		mock.ExpectQuery(`SELECT \* FROM "jobs" WHERE state = \$1 ORDER BY priority ASC, created_at ASC, id ASC`).
			WillReturnRows(rows)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "jobs" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		job, err := repo.ClaimNext(ctx, "worker-1", 30*time.Second)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, jobID, job.ID)
		assert.Equal(t, entities.JobStateActive, job.State)
		assert.Equal(t, 1, job.Attempts)
		assert.Equal(t, "worker-1", job.LockedBy)
		require.NotNil(t, job.LockedUntil)
		assert.True(t, job.LockedUntil.After(time.Now()))
	})

	t.Run("returns nil when the queue is empty", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewJobRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "jobs" WHERE state = \$1`).
			WillReturnRows(sqlmock.NewRows(waitingJobColumns()))

		job, err := repo.ClaimNext(ctx, "worker-1", 30*time.Second)
		require.NoError(t, err)
		assert.Nil(t, job)
	})

	t.Run("moves to the next candidate after losing a race", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewJobRepository(db)

		rows := sqlmock.NewRows(waitingJobColumns()).AddRow(
			uuid.New().String(), uuid.New().String(), `{}`, int64(1700000000),
			string(entities.JobStateWaiting), 0, 3, time.Now(), time.Now(),
		)

		// Another worker wins the first candidate; the scan finds nothing else.
		mock.ExpectQuery(`SELECT \* FROM "jobs" WHERE state = \$1`).
			WillReturnRows(rows)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "jobs" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT \* FROM "jobs" WHERE state = \$1`).
			WillReturnRows(sqlmock.NewRows(waitingJobColumns()))

		job, err := repo.ClaimNext(ctx, "worker-2", 30*time.Second)
		require.NoError(t, err)
		assert.Nil(t, job)
	})

	t.Run("database error", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewJobRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "jobs" WHERE state = \$1`).
			WillReturnError(sql.ErrConnDone)

		job, err := repo.ClaimNext(ctx, "worker-1", 30*time.Second)
		require.Error(t, err)
		assert.Nil(t, job)
	})
}

func TestJobRepository_MarkCompleted(t *testing.T) {
	ctx := helpers.TestContext(t)

	t.Run("success", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewJobRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "jobs" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.MarkCompleted(ctx, uuid.New())
		require.NoError(t, err)
	})

	t.Run("conflict when the job is no longer active", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewJobRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "jobs" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.MarkCompleted(ctx, uuid.New())
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrConflict)
	})
}

func TestJobRepository_Delay(t *testing.T) {
	ctx := helpers.TestContext(t)
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "jobs" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delay(ctx, uuid.New(), time.Now().Add(2*time.Second), "bridge quote failed")
	require.NoError(t, err)
}

func TestJobRepository_PromoteDelayed(t *testing.T) {
	ctx := helpers.TestContext(t)
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "jobs" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	promoted, err := repo.PromoteDelayed(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(2), promoted)
}

func TestJobRepository_RequeueStale(t *testing.T) {
	ctx := helpers.TestContext(t)
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "jobs" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	requeued, err := repo.RequeueStale(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), requeued)
}

func TestJobRepository_FindByID(t *testing.T) {
	ctx := helpers.TestContext(t)

	t.Run("success", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewJobRepository(db)

		jobID := uuid.New()
		rows := sqlmock.NewRows(waitingJobColumns()).AddRow(
			jobID.String(), uuid.New().String(), `{}`, int64(1700000000),
			string(entities.JobStateWaiting), 0, 3, time.Now(), time.Now(),
		)

		mock.ExpectQuery(`SELECT \* FROM "jobs" WHERE id = \$1`).
			WillReturnRows(rows)

		job, err := repo.FindByID(ctx, jobID)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, jobID, job.ID)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, cleanup := setupTestDB(t)
		defer cleanup()
		repo := NewJobRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "jobs" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(waitingJobColumns()))

		job, err := repo.FindByID(ctx, uuid.New())
		require.Error(t, err)
		assert.Nil(t, job)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestJobRepository_CountByState(t *testing.T) {
	ctx := helpers.TestContext(t)
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "jobs" WHERE state = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByState(ctx, entities.JobStateWaiting)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
