package classification

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/de-tools/trade-atlas/pkg/store/source"
)

const (
	ColumnCode        = "NZHSC_Level_2_Code_HS4"
	ColumnDescription = "NZHSC_Level_2"
)

// Table maps product codes to human-readable descriptions. It is read-only
// once loaded and safe for concurrent use.
type Table struct {
	descriptions map[string]string
}

// NewTable builds a table from an in-memory map.
func NewTable(entries map[string]string) *Table {
	t := &Table{descriptions: make(map[string]string, len(entries))}
	for code, desc := range entries {
		t.descriptions[code] = desc
	}
	return t
}

// Load reads the classification CSV. Rows whose code does not have exactly
// digits ASCII digits are skipped; later rows win over earlier ones.
func Load(r io.Reader, digits int) (*Table, error) {
	cr := csv.NewReader(source.NewUTF8Reader(r))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("classification: missing expected column: %s", ColumnCode)
	}
	if err != nil {
		return nil, fmt.Errorf("classification: read header: %w", err)
	}

	codeIdx, descIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case ColumnCode:
			if codeIdx < 0 {
				codeIdx = i
			}
		case ColumnDescription:
			if descIdx < 0 {
				descIdx = i
			}
		}
	}
	if codeIdx < 0 {
		return nil, fmt.Errorf("classification: missing expected column: %s", ColumnCode)
	}
	if descIdx < 0 {
		return nil, fmt.Errorf("classification: missing expected column: %s", ColumnDescription)
	}

	t := &Table{descriptions: make(map[string]string)}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("classification: read row: %w", err)
		}
		if codeIdx >= len(record) || descIdx >= len(record) {
			continue
		}
		code := strings.TrimSpace(record[codeIdx])
		if !domain.IsCode(code, digits) {
			continue
		}
		t.descriptions[code] = strings.TrimSpace(record[descIdx])
	}
	return t, nil
}

// Describe returns the description for code, or domain.UnknownDescription.
func (t *Table) Describe(code string) string {
	if t == nil {
		return domain.UnknownDescription
	}
	if desc, ok := t.descriptions[code]; ok {
		return desc
	}
	return domain.UnknownDescription
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.descriptions)
}
