package trade

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTopEntry(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]decimal.Decimal
		wantCode string
		wantVal  string
		wantOK   bool
	}{
		{
			name:     "strict maximum",
			values:   map[string]decimal.Decimal{"0101": dec("5"), "0202": dec("10")},
			wantCode: "0202",
			wantVal:  "10",
			wantOK:   true,
		},
		{
			name:   "empty",
			values: map[string]decimal.Decimal{},
			wantOK: false,
		},
		{
			name:   "nil",
			values: nil,
			wantOK: false,
		},
		{
			name:     "tie goes to smallest code",
			values:   map[string]decimal.Decimal{"0909": dec("7"), "0303": dec("7.00"), "0505": dec("7"), "0101": dec("1")},
			wantCode: "0303",
			wantVal:  "7",
			wantOK:   true,
		},
		{
			name:     "all negative",
			values:   map[string]decimal.Decimal{"0101": dec("-5"), "0202": dec("-1")},
			wantCode: "0202",
			wantVal:  "-1",
			wantOK:   true,
		},
		{
			name:     "single zero entry",
			values:   map[string]decimal.Decimal{"0101": decimal.Zero},
			wantCode: "0101",
			wantVal:  "0",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// map iteration order varies, repeat to shake out order dependence
			for i := 0; i < 20; i++ {
				code, value, ok := TopEntry(tt.values)
				assert.Equal(t, tt.wantOK, ok)
				if tt.wantOK {
					assert.Equal(t, tt.wantCode, code)
					assert.True(t, value.Equal(dec(tt.wantVal)))
				}
			}
		})
	}
}
