package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_BootsSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := NewDB(Settings{DbPath: dbPath})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	now := time.Now().UTC()
	_, err = db.Exec(
		`INSERT INTO trade_runs (run_id, input, year_prefix, category, started_at, finished_at, rows_seen, rows_accepted, rows_recorded)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"run-001", "trade.csv", "2024", "goods", now, now, 10, 8, 6,
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM trade_runs WHERE run_id = ?", "run-001").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = db.QueryRow("SELECT COUNT(*) FROM trade_run_reports").Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTransactionContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetTransaction(ctx))
	assert.Nil(t, GetTransaction(WithTransaction(ctx, nil)))
}

func TestInTransaction(t *testing.T) {
	tests := []struct {
		name   string
		fnErr  error
		expect func(mock sqlmock.Sqlmock)
	}{
		{
			name:  "commits on success",
			fnErr: nil,
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
		},
		{
			name:  "rolls back on failure",
			fnErr: errors.New("insert failed"),
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.expect(mock)
			err = InTransaction(context.Background(), db, func(tx *sql.Tx) error {
				assert.NotNil(t, tx)
				return tt.fnErr
			})
			if tt.fnErr != nil {
				assert.ErrorIs(t, err, tt.fnErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInTransaction_JoinsContextTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	outer, err := db.Begin()
	require.NoError(t, err)

	ctx := WithTransaction(context.Background(), outer)
	err = InTransaction(ctx, db, func(tx *sql.Tx) error {
		assert.Same(t, outer, tx)
		return nil
	})
	require.NoError(t, err)

	// The joined transaction is still open for its owner.
	mock.ExpectCommit()
	require.NoError(t, outer.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
