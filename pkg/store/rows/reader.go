package rows

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/de-tools/trade-atlas/pkg/store/source"
)

// Header names of the trade ledger.
const (
	ColumnPeriod   = "time_ref"
	ColumnAccount  = "account"
	ColumnCode     = "code"
	ColumnCountry  = "country_code"
	ColumnCategory = "product_type"
	ColumnValue    = "value"
	ColumnStatus   = "status"
)

var mandatoryColumns = []string{
	ColumnPeriod,
	ColumnAccount,
	ColumnCode,
	ColumnCountry,
	ColumnCategory,
	ColumnValue,
}

// MissingColumnError is fatal: the header lacks a mandatory column, or a data
// row is too short to hold one.
type MissingColumnError struct {
	Column string
	Line   int
}

func (e *MissingColumnError) Error() string {
	if e.Line <= 1 {
		return fmt.Sprintf("missing expected column: %s", e.Column)
	}
	return fmt.Sprintf("missing expected column: %s (line %d)", e.Column, e.Line)
}

type columns struct {
	period, account, code, country, category, value int
	status                                          int // -1 when absent
}

// Reader decodes ledger rows lazily from CSV. Only the current record is held
// in memory.
type Reader struct {
	csv  *csv.Reader
	cols columns
}

// NewReader consumes the header and verifies the mandatory columns before any
// row is read.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(source.NewUTF8Reader(r))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MissingColumnError{Column: mandatoryColumns[0], Line: 1}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}
	for _, col := range mandatoryColumns {
		if _, ok := pos[col]; !ok {
			return nil, &MissingColumnError{Column: col, Line: 1}
		}
	}

	cols := columns{
		period:   pos[ColumnPeriod],
		account:  pos[ColumnAccount],
		code:     pos[ColumnCode],
		country:  pos[ColumnCountry],
		category: pos[ColumnCategory],
		value:    pos[ColumnValue],
		status:   -1,
	}
	if i, ok := pos[ColumnStatus]; ok {
		cols.status = i
	}

	return &Reader{csv: cr, cols: cols}, nil
}

// HasStatus reports whether the header carries the optional status column.
func (r *Reader) HasStatus() bool {
	return r.cols.status >= 0
}

// Next returns the next row, or io.EOF once the input is exhausted.
func (r *Reader) Next() (domain.Row, error) {
	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return domain.Row{}, io.EOF
	}
	if err != nil {
		return domain.Row{}, fmt.Errorf("read row: %w", err)
	}

	var missing string
	get := func(i int, name string) string {
		if i >= len(record) {
			if missing == "" {
				missing = name
			}
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := domain.Row{
		Period:      get(r.cols.period, ColumnPeriod),
		Account:     get(r.cols.account, ColumnAccount),
		Code:        get(r.cols.code, ColumnCode),
		CountryCode: get(r.cols.country, ColumnCountry),
		Category:    get(r.cols.category, ColumnCategory),
		Value:       get(r.cols.value, ColumnValue),
	}
	if missing != "" {
		line, _ := r.csv.FieldPos(0)
		return domain.Row{}, &MissingColumnError{Column: missing, Line: line}
	}

	if r.cols.status >= 0 && r.cols.status < len(record) {
		status := strings.TrimSpace(record[r.cols.status])
		row.Status = &status
	}
	return row, nil
}
