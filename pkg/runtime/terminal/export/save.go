package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks the sink from the file extension; anything but .xlsx is CSV.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Save writes reports to path, creating parent directories, and returns the
// absolute path written. The file only appears once it is complete.
func Save(path string, reports []domain.TradeReport) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(abs)+".*")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", abs, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp, FormatFor(abs), reports); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		return "", fmt.Errorf("move result into %s: %w", abs, err)
	}
	return abs, nil
}

func write(w io.Writer, format Format, reports []domain.TradeReport) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, reports)
	default:
		return WriteCSV(w, reports)
	}
}
