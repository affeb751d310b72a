package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewClientFromDB(sqlx.NewDb(mockDB, "postgres")), mock
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	client, mock := setupMockClient(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := client.WithTx(context.Background(), nil, func(tx *sqlx.Tx) error {
		_, err := tx.Exec("UPDATE bookings SET status = 'CANCELLED'")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	client, mock := setupMockClient(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := client.WithTx(context.Background(), nil, func(tx *sqlx.Tx) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSerializableTx_RetriesSerializationFailure(t *testing.T) {
	client, mock := setupMockClient(t)
	var retried []string
	client.OnRetry = func(_ context.Context, name string) { retried = append(retried, name) }

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := client.WithSerializableTx(context.Background(), "create booking", func(tx *sqlx.Tx) error {
		calls++
		if calls == 1 {
			return &pq.Error{Code: "40001", Message: "could not serialize access"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"create booking"}, retried)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSerializableTx_DoesNotRetryOtherErrors(t *testing.T) {
	client, mock := setupMockClient(t)
	conflict := errors.New("overlap")

	mock.ExpectBegin()
	mock.ExpectRollback()

	calls := 0
	err := client.WithSerializableTx(context.Background(), "create booking", func(tx *sqlx.Tx) error {
		calls++
		return conflict
	})

	assert.Equal(t, conflict, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, IsSerializationFailure(&pq.Error{Code: "40001"}))
	assert.True(t, IsSerializationFailure(fmt.Errorf("commit: %w", &pq.Error{Code: "40001"})))
	assert.False(t, IsSerializationFailure(&pq.Error{Code: "23505"}))
	assert.False(t, IsSerializationFailure(errors.New("40001")))
	assert.False(t, IsSerializationFailure(nil))
}
