package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
)

type TableConfig struct {
	LabelWidth   int
	BalanceWidth int
	ProductWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		LabelWidth:   28,
		BalanceWidth: 18,
		ProductWidth: 44,
	}
}

// Reporter prints a summary as one fixed-width table, one bucket per line.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(summary *domain.Summary) error {
	funcMap := template.FuncMap{
		"formatRow": func(label, balance, imports, exports string) string {
			return fmt.Sprintf("| %-*s | %*s | %-*s | %-*s |",
				c.config.LabelWidth, truncate(label, c.config.LabelWidth),
				c.config.BalanceWidth, balance,
				c.config.ProductWidth, truncate(imports, c.config.ProductWidth),
				c.config.ProductWidth, truncate(exports, c.config.ProductWidth))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.LabelWidth+2),
				strings.Repeat("-", c.config.BalanceWidth+2),
				strings.Repeat("-", c.config.ProductWidth+2),
				strings.Repeat("-", c.config.ProductWidth+2))
		},
		"amount":  FormatAmount,
		"product": productCell,
	}

	tmpl := `
Trade report {{.YearPrefix}} ({{.Category}}), run {{.RunID}}
Rows: {{.Stats.RowsSeen}} seen, {{.Stats.RowsRecorded}} recorded

{{separator}}
{{formatRow "Country" "Balance NZD" "Top import" "Top export"}}
{{separator}}
{{range .Reports}}{{formatRow .Label (amount .Balance) (product .TopImport) (product .TopExport)}}
{{end}}{{separator}}
`

	t, err := template.New("table").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, summary)
}

func productCell(p *domain.Product) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%s %s", p.Code, FormatAmount(p.Value))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
