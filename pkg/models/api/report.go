package api

import "time"

// Monetary values are decimal strings with exactly two fractional digits.

type Product struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	ValueNZD    string `json:"value_nzd"`
}

type TradeReport struct {
	Key             string   `json:"key"`
	Label           string   `json:"label"`
	TotalImportsNZD string   `json:"total_imports_nzd"`
	TotalExportsNZD string   `json:"total_exports_nzd"`
	BalanceNZD      string   `json:"balance_nzd"`
	TopImport       *Product `json:"top_import"`
	TopExport       *Product `json:"top_export"`
}

type RunStats struct {
	RowsSeen       int64 `json:"rows_seen"`
	RowsAccepted   int64 `json:"rows_accepted"`
	RowsRecorded   int64 `json:"rows_recorded"`
	RowsRejected   int64 `json:"rows_rejected"`
	InvalidValues  int64 `json:"invalid_values"`
	UnknownCountry int64 `json:"unknown_country"`
	UnknownAccount int64 `json:"unknown_account"`
}

type Summary struct {
	RunID      string        `json:"run_id"`
	Year       string        `json:"year"`
	Category   string        `json:"category"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stats      RunStats      `json:"stats"`
	Reports    []TradeReport `json:"reports"`
}

type Run struct {
	RunID        string    `json:"run_id"`
	Input        string    `json:"input"`
	Year         string    `json:"year"`
	Category     string    `json:"category"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	RowsSeen     int64     `json:"rows_seen"`
	RowsAccepted int64     `json:"rows_accepted"`
	RowsRecorded int64     `json:"rows_recorded"`
}

type Error struct {
	Error string `json:"error"`
}
