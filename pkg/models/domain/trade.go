package domain

import "strings"

// Row is one decoded line of the trade ledger. Fields are untrusted and may be
// empty or malformed; Status is nil when the source has no status column.
type Row struct {
	Period      string // 202401
	Account     string // Imports
	Code        string // 0101
	CountryCode string // NO
	Category    string // Goods
	Value       string // 1,234.56
	Status      *string
}

type Account int

const (
	AccountUnknown Account = iota
	AccountImports
	AccountExports
)

// ParseAccount matches "Imports"/"Exports" ignoring case and surrounding
// whitespace. Anything else is AccountUnknown.
func ParseAccount(s string) Account {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, "imports"):
		return AccountImports
	case strings.EqualFold(s, "exports"):
		return AccountExports
	default:
		return AccountUnknown
	}
}

func (a Account) String() string {
	switch a {
	case AccountImports:
		return "imports"
	case AccountExports:
		return "exports"
	default:
		return "unknown"
	}
}

// BucketKey identifies one aggregation target: a country code or the reserved
// bloc aggregate key.
type BucketKey string

// UnknownDescription stands in for classification codes missing from the
// lookup table.
const UnknownDescription = "(unknown)"

// IsCode reports whether code is exactly digits ASCII digits. Leading zeros are
// significant, so "0101" and "101" are different codes.
func IsCode(code string, digits int) bool {
	if digits <= 0 || len(code) != digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
