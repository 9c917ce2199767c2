package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
)

const ruleWidth = 80

const consoleTemplate = `{{define "bucket"}}
{{.Label}}:
  Trade balance (Exports - Imports): {{money .Balance}}
  Most imported product: {{product .TopImport}}
  Most exported product: {{product .TopExport}}
{{end}}
{{rule}}
TRADE REPORT {{.Year}} - {{.FocusTitle}} & {{.BlocKey}} ({{.Category}}, HS{{.Digits}})
{{rule}}
{{template "bucket" .Focus}}
--- {{.BlocKey}} MEMBER COUNTRIES ---
{{range .Members}}{{template "bucket" .}}{{end}}
--- {{.BlocKey}} TOTAL ({{.MemberCount}} countries) ---
{{template "bucket" .Bloc}}
{{- if .OutputPath}}
Results saved to: {{.OutputPath}}
{{end}}`

const coverageTemplate = `Focus country: {{.Focus}}
Bloc: {{.BlocName}} ({{.BlocKey}}), {{len .Members}} members
{{range .Members}}  {{.}}
{{end}}`

// ConsoleReport is everything the console layout needs from one run.
type ConsoleReport struct {
	Summary    *domain.Summary
	Coverage   *domain.Coverage
	CodeDigits int
	OutputPath string // omitted when empty
}

type consoleView struct {
	Year        string
	FocusTitle  string
	BlocKey     string
	Category    string
	Digits      int
	MemberCount int
	Focus       domain.TradeReport
	Members     []domain.TradeReport
	Bloc        domain.TradeReport
	OutputPath  string
}

// Reporter outputs reports to the console in a formatted text form
type Reporter struct {
	writer   io.Writer
	console  *template.Template
	coverage *template.Template
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	funcs := template.FuncMap{
		"rule":    func() string { return strings.Repeat("=", ruleWidth) },
		"money":   formatMoney,
		"product": formatProduct,
	}
	return &Reporter{
		writer:   writer,
		console:  template.Must(template.New("console").Funcs(funcs).Parse(consoleTemplate)),
		coverage: template.Must(template.New("coverage").Parse(coverageTemplate)),
	}
}

func (c *Reporter) Handle(report ConsoleReport) error {
	if report.Summary == nil || report.Coverage == nil {
		return fmt.Errorf("summary and coverage are required")
	}

	cov := report.Coverage
	view := consoleView{
		Year:        report.Summary.YearPrefix,
		FocusTitle:  strings.ToUpper(cov.Focus().Name),
		BlocKey:     string(cov.BlocKey()),
		Category:    cases.Title(language.English).String(report.Summary.Category),
		Digits:      report.CodeDigits,
		MemberCount: len(cov.Members()),
		OutputPath:  report.OutputPath,
	}

	focusKey := domain.BucketKey(cov.Focus().Code)
	for _, key := range cov.Keys() {
		r, ok := report.Summary.Report(key)
		if !ok {
			return fmt.Errorf("summary has no report for %s", key)
		}
		switch key {
		case focusKey:
			view.Focus = r
		case cov.BlocKey():
			view.Bloc = r
		default:
			view.Members = append(view.Members, r)
		}
	}

	return c.console.Execute(c.writer, view)
}

// HandleCoverage prints the focus country and the bloc membership.
func (c *Reporter) HandleCoverage(cov *domain.Coverage) error {
	return c.coverage.Execute(c.writer, struct {
		Focus    domain.Country
		BlocName string
		BlocKey  domain.BucketKey
		Members  []domain.Country
	}{
		Focus:    cov.Focus(),
		BlocName: cov.BlocName(),
		BlocKey:  cov.BlocKey(),
		Members:  cov.Members(),
	})
}

func formatProduct(p *domain.Product) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%s (%s) - %s", p.Description, p.Code, formatMoney(p.Value))
}
