package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/de-tools/trade-atlas/pkg/models/store"
	"github.com/de-tools/trade-atlas/pkg/store/duckdb"
)

const defaultListLimit = 50

// Store records completed passes. Only successful summaries are ever added,
// so a run row always has its full set of report rows.
type Store interface {
	Add(ctx context.Context, input string, summary *domain.Summary) error
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
	GetReports(ctx context.Context, runID string) ([]store.RunReport, error)
}

type historyStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &historyStore{db: db}, nil
}

func (h *historyStore) Add(ctx context.Context, input string, summary *domain.Summary) error {
	if summary == nil {
		return fmt.Errorf("summary is nil")
	}

	return duckdb.InTransaction(ctx, h.db, func(tx *sql.Tx) error {
		return insertSummary(ctx, tx, input, summary)
	})
}

func insertSummary(ctx context.Context, tx *sql.Tx, input string, summary *domain.Summary) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO trade_runs (
			run_id, input, year_prefix, category, started_at, finished_at,
			rows_seen, rows_accepted, rows_recorded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		input,
		summary.YearPrefix,
		summary.Category,
		summary.StartedAt.UTC(),
		summary.FinishedAt.UTC(),
		summary.Stats.RowsSeen,
		summary.Stats.RowsAccepted,
		summary.Stats.RowsRecorded,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trade_run_reports (
			run_id, bucket_key, label, position, total_imports, total_exports, balance,
			top_import_code, top_import_value, top_export_code, top_export_value
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range summary.Reports {
		importCode, importValue := productColumns(r.TopImport)
		exportCode, exportValue := productColumns(r.TopExport)
		_, err = stmt.ExecContext(ctx,
			summary.RunID,
			string(r.Key),
			r.Label,
			i,
			r.TotalImports.String(),
			r.TotalExports.String(),
			r.Balance.String(),
			importCode,
			importValue,
			exportCode,
			exportValue,
		)
		if err != nil {
			return fmt.Errorf("insert report %s: %w", r.Key, err)
		}
	}
	return nil
}

func productColumns(p *domain.Product) (sql.NullString, sql.NullString) {
	if p == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: p.Code, Valid: true},
		sql.NullString{String: p.Value.String(), Valid: true}
}

// ListRuns returns the most recent runs first.
func (h *historyStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := h.db.QueryContext(ctx, `
		SELECT run_id, input, year_prefix, category, started_at, finished_at,
			rows_seen, rows_accepted, rows_recorded
		FROM trade_runs
		ORDER BY finished_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]store.Run, 0)
	for rows.Next() {
		var r store.Run
		if err := rows.Scan(
			&r.RunID, &r.Input, &r.YearPrefix, &r.Category, &r.StartedAt, &r.FinishedAt,
			&r.RowsSeen, &r.RowsAccepted, &r.RowsRecorded,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (h *historyStore) GetReports(ctx context.Context, runID string) ([]store.RunReport, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT run_id, bucket_key, label, position, total_imports, total_exports, balance,
			top_import_code, top_import_value, top_export_code, top_export_value
		FROM trade_run_reports
		WHERE run_id = ?
		ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]store.RunReport, 0)
	for rows.Next() {
		var (
			r                       store.RunReport
			importCode, importValue sql.NullString
			exportCode, exportValue sql.NullString
		)
		if err := rows.Scan(
			&r.RunID, &r.Key, &r.Label, &r.Position, &r.TotalImports, &r.TotalExports, &r.Balance,
			&importCode, &importValue, &exportCode, &exportValue,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.TopImportCode = nullable(importCode)
		r.TopImportNZD = nullable(importValue)
		r.TopExportCode = nullable(exportCode)
		r.TopExportNZD = nullable(exportValue)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// Open opens the DuckDB file at path and returns a store on it. The caller
// closes the returned database.
func Open(path string) (Store, *sql.DB, error) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: path})
	if err != nil {
		return nil, nil, err
	}
	s, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, db, nil
}
