package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const RunsTableSchema = `
	CREATE TABLE IF NOT EXISTS trade_runs (
		run_id VARCHAR PRIMARY KEY,
		input VARCHAR NOT NULL,
		year_prefix VARCHAR NOT NULL,
		category VARCHAR NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		rows_seen BIGINT NOT NULL,
		rows_accepted BIGINT NOT NULL,
		rows_recorded BIGINT NOT NULL
	);
`

const RunReportsTableSchema = `
	CREATE TABLE IF NOT EXISTS trade_run_reports (
		run_id VARCHAR NOT NULL,
		bucket_key VARCHAR NOT NULL,
		label VARCHAR NOT NULL,
		position INTEGER NOT NULL,
		total_imports VARCHAR NOT NULL,
		total_exports VARCHAR NOT NULL,
		balance VARCHAR NOT NULL,
		top_import_code VARCHAR,
		top_import_value VARCHAR,
		top_export_code VARCHAR,
		top_export_value VARCHAR,
		PRIMARY KEY (run_id, bucket_key)
	);
`

var bootQueries = []string{
	RunsTableSchema,
	RunReportsTableSchema,
}

type Settings struct {
	DbPath string
}

// NewDB opens (or creates) the history database and ensures its schema.
// Use ":memory:" for a throwaway database.
func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(settings.DbPath, func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			if _, err := exec.ExecContext(context.Background(), query, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open duckdb %s: %w", settings.DbPath, err)
	}
	return sql.OpenDB(c), nil
}
