package mysql_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain"
	mysqlrepo "staybook/internal/storage/mysql"
)

var outcomeCols = []string{
	"prebook_id", "transaction_id", "booking_id", "status", "confirmation_code",
	"hotel_name", "guest_email", "missing", "error_detail", "raw", "created_at",
}

func TestRepo_RecordOutcome(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	t.Run("Finalized", func(t *testing.T) {
		at := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
		mock.ExpectExec(`INSERT INTO booking_outcomes`).
			WithArgs("pb1", "tx1", "B-1", "finalized", "HC9", "Hotel One", "a@x.io",
				nil, nil, `{"data":{"bookingId":"B-1"}}`, at).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.RecordOutcome(ctx, domain.BookingOutcome{
			PrebookID: "pb1", TransactionID: "tx1", BookingID: "B-1",
			Status: domain.StatusFinalized, ConfirmationCode: "HC9",
			HotelName: "Hotel One", GuestEmail: "a@x.io",
			RawJSON: []byte(`{"data":{"bookingId":"B-1"}}`), CreatedAt: at,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Correlation failure", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO booking_outcomes`).
			WithArgs(nil, nil, nil, "failed", nil, nil, nil,
				`["stored session data","transactionId","prebookId"]`,
				"missing booking information", nil, nil).
			WillReturnResult(sqlmock.NewResult(2, 1))

		err := repo.RecordOutcome(ctx, domain.BookingOutcome{
			Status:      domain.StatusFailed,
			Missing:     []string{domain.MissingStoredSession, domain.MissingTransactionID, domain.MissingPrebookID},
			ErrorDetail: "missing booking information",
			RawJSON:     []byte("not json"),
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO booking_outcomes`).WillReturnError(sql.ErrConnDone)

		err := repo.RecordOutcome(ctx, domain.BookingOutcome{PrebookID: "pb1", Status: domain.StatusFailed})
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepo_GetOutcome(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		now := time.Now().UTC()
		mock.ExpectQuery(`SELECT .* FROM booking_outcomes`).
			WithArgs("pb1").
			WillReturnRows(sqlmock.NewRows(outcomeCols).AddRow(
				"pb1", "tx1", "B-1", "finalized", "HC9",
				"Hotel One", "a@x.io", nil, nil, []byte(`{"ok":true}`), now,
			))

		o, err := repo.GetOutcome(ctx, "pb1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFinalized, o.Status)
		assert.Equal(t, "B-1", o.BookingID)
		assert.Equal(t, "HC9", o.ConfirmationCode)
		assert.Empty(t, o.Missing)
		assert.JSONEq(t, `{"ok":true}`, string(o.RawJSON))
		assert.Equal(t, now, o.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failed with missing list", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM booking_outcomes`).
			WithArgs("pb2").
			WillReturnRows(sqlmock.NewRows(outcomeCols).AddRow(
				"pb2", nil, nil, "failed", nil,
				nil, nil, []byte(`["transactionId"]`), "missing booking information: transactionId", nil, time.Now(),
			))

		o, err := repo.GetOutcome(ctx, "pb2")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, o.Status)
		assert.Equal(t, []string{"transactionId"}, o.Missing)
		assert.Empty(t, o.TransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM booking_outcomes`).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(outcomeCols))

		_, err := repo.GetOutcome(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
