package implementation

import (
	"context"
	"errors"
	"testing"
	"time"

	"carematch-be/internal/entity"
	"carematch-be/internal/repository/contract"
	"carematch-be/pkg/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := database.NewGormDBFromConn(conn)
	require.NoError(t, err)
	return db, mock
}

func TestUserFindByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "role"}))

	user, err := repo.FindByID(context.Background(), 42)

	require.NoError(t, err)
	assert.Nil(t, user)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchExistsOpenForPair(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMatchRequestRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "match_requests" WHERE \(family_profile_id = .* AND caregiver_profile_id = .*\) AND status IN`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsOpenForPair(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchUpdateStatus_GuardedByCurrentStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMatchRequestRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE "match_requests" SET .*WHERE id = .* AND status = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "match_requests" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateStatus(ctx, 7, entity.MatchStatusPending, entity.MatchStatusAccepted, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatus(ctx, 7, entity.MatchStatusPending, entity.MatchStatusAccepted, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchFindParties_LocksRequestRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMatchRequestRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "family_profile_id", "caregiver_profile_id", "status", "family_user_id", "caregiver_user_id",
	}).AddRow(7, 3, 4, "pending", 10, 11)

	mock.ExpectQuery(`JOIN family_profiles fp .*FOR UPDATE OF "match_requests"`).
		WillReturnRows(rows)

	parties, err := repo.FindParties(context.Background(), 7, true)

	require.NoError(t, err)
	require.NotNil(t, parties)
	assert.Equal(t, int64(7), parties.Request.Id)
	assert.Equal(t, entity.MatchStatusPending, parties.Request.Status)
	assert.Equal(t, int64(10), parties.FamilyUserId)
	assert.Equal(t, int64(11), parties.CaregiverUserId)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionCreate_DuplicateReference(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_transactions_transaction_reference_id"})

	err := repo.Create(context.Background(), &entity.Transaction{
		Amount:                 decimal.NewFromInt(50),
		Currency:               "USD",
		Status:                 entity.TransactionStatusPending,
		TransactionReferenceId: "ref-1",
	})

	assert.True(t, errors.Is(err, contract.ErrDuplicate))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionFailPendingBefore(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectExec(`UPDATE "transactions" SET .*WHERE status = .* AND created_at <`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.FailPendingBefore(context.Background(), time.Now().Add(-24*time.Hour), "expired awaiting gateway")

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewStatsForReviewee(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReviewRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS count, COALESCE\(AVG\(rating\), 0\) AS average_rating FROM "reviews"`).
		WillReturnRows(sqlmock.NewRows([]string{"count", "average_rating"}).AddRow(2, 4.5))

	stats, err := repo.StatsForReviewee(context.Background(), 11)

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Count)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.0001)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewFindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReviewRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "reviews" WHERE id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "review_type", "reviewer_id", "rating"}).
			AddRow(3, "family_to_caregiver", 10, 4))

	review, err := repo.FindByIDForUpdate(context.Background(), 3)

	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, entity.ReviewTypeFamilyToCaregiver, review.ReviewType)
	assert.Equal(t, int64(10), *review.ReviewerId)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewUpdate_SetsUpdatedAt(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReviewRepository(db)

	mock.ExpectExec(`UPDATE "reviews" SET .*"updated_at"=.* WHERE id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), 3, 5, "great", time.Now())

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageCountUnread_ExcludesOwnMessages(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "messages" WHERE conversation_id = .* AND \(+sender_id IS NULL OR sender_id <> .*\)+ AND sent_at >`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	since := time.Now().Add(-time.Hour)
	count, err := repo.CountUnread(context.Background(), 5, 10, &since)

	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.NoError(t, mock.ExpectationsWereMet())
}
