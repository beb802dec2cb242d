package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageLogCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUsageLogRepository(db)

	mock.ExpectExec("INSERT INTO usage_logs").
		WithArgs(int64(7), "generation").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), 7, "generation"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageLogCountByAction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUsageLogRepository(db)

	from := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 15, 23, 59, 59, 999000000, time.UTC)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM usage_logs").
		WithArgs(int64(7), "generation", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountByAction(context.Background(), 7, "generation", from, to)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageLogRemoveOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUsageLogRepository(db)

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("DELETE FROM usage_logs WHERE created_at < \\$1").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 42))

	removed, err := repo.RemoveOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(42), removed)
	require.NoError(t, mock.ExpectationsWereMet())
}
