package store

import "time"

// Run is one completed pass as recorded in the history database.
type Run struct {
	RunID        string
	Input        string
	YearPrefix   string
	Category     string
	StartedAt    time.Time
	FinishedAt   time.Time
	RowsSeen     int64
	RowsAccepted int64
	RowsRecorded int64
}

// RunReport is one bucket of a recorded run. Monetary values are kept as exact
// decimal strings.
type RunReport struct {
	RunID         string
	Key           string
	Label         string
	Position      int
	TotalImports  string
	TotalExports  string
	Balance       string
	TopImportCode *string
	TopImportNZD  *string
	TopExportCode *string
	TopExportNZD  *string
}
