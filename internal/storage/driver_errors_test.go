package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockStorage backs a store with sqlmock so driver failures can be
// injected.
func newMockStorage(t *testing.T) (*SQLiteStorage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = db.Close() })

	return &SQLiteStorage{db: db, dbPath: "sqlmock"}, mock
}

func TestSaveInvoicesRollsBackOnDriverError(t *testing.T) {
	store, mock := newMockStorage(t)
	invoices := createTestInvoices(3)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO invoices").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := store.SaveInvoices(context.Background(), invoices)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save invoice VEND-000002")
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWeightsDriverErrors(t *testing.T) {
	t.Run("query failure is wrapped", func(t *testing.T) {
		store, mock := newMockStorage(t)
		mock.ExpectQuery("SELECT value FROM settings").
			WithArgs(weightsKey).
			WillReturnError(errors.New("database is locked"))

		_, err := store.GetWeights(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get weights")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt record is reported", func(t *testing.T) {
		store, mock := newMockStorage(t)
		mock.ExpectQuery("SELECT value FROM settings").
			WithArgs(weightsKey).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("{not json"))

		_, err := store.GetWeights(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse stored weights")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
