package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
)

func WriteCSV(w io.Writer, reports []domain.TradeReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(Records(reports)); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
