package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/trade-atlas/pkg/runtime/terminal/console"
	"github.com/de-tools/trade-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/trade-atlas/pkg/services/config"
	"github.com/de-tools/trade-atlas/pkg/services/report"
	"github.com/de-tools/trade-atlas/pkg/store/source"
)

const (
	formatText  = "text"
	formatTable = "table"
)

type ReportCmd struct {
	format  string
	loader  *config.Loader
	sources source.Registry
}

func NewReportCmd(sources source.Registry) *cobra.Command {
	rc := &ReportCmd{
		loader:  config.NewLoader(),
		sources: sources,
	}
	cmd := &cobra.Command{
		Use:   "report [input]",
		Short: "Aggregate the trade ledger and write the balance report",
		Long: `Streams the trade ledger once, computes the trade balance and the most
imported and exported product for the focus country, every bloc member and
the bloc as a whole, prints the report and writes it to the output file.

The input may be a local path or an s3://, gs:// or azblob:// location.`,
		Args: cobra.MaximumNArgs(1),
		RunE: rc.run,
	}

	cmd.Flags().StringVar(&rc.format, "format", formatText, "console layout (text or table)")
	_ = rc.loader.BindFlags(cmd.Flags(),
		config.KeyInput,
		config.KeyClassification,
		config.KeyOutput,
		config.KeyYear,
		config.KeyCategory,
		config.KeyCodeDigits,
		config.KeyBlocFile,
		config.KeyWorkers,
		config.KeyLogLevel,
		config.KeyHistoryDB,
	)

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, args []string) error {
	if rc.format != formatText && rc.format != formatTable {
		return fmt.Errorf("unsupported format %q, expected %s or %s", rc.format, formatText, formatTable)
	}
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	if len(args) == 1 {
		rc.loader.Override(config.KeyInput, args[0])
	}

	settings, err := rc.loader.Load(configFile(cmd))
	if err != nil {
		return err
	}
	ctx, err := withLogger(cmd.Context(), settings.LogLevel)
	if err != nil {
		return err
	}

	coverage, err := settings.Coverage()
	if err != nil {
		return err
	}

	store, closeHistory, err := openHistory(settings.HistoryDB)
	if err != nil {
		return err
	}
	defer closeHistory()

	svc, err := report.NewService(report.Options{
		Input:          settings.Input,
		Classification: settings.Classification,
		Criteria:       settings.Criteria(),
		Coverage:       coverage,
		Workers:        settings.Workers,
		Sources:        rc.sources,
		History:        store,
	})
	if err != nil {
		return err
	}

	summary, err := svc.Generate(ctx)
	if err != nil {
		return err
	}

	path, err := export.Save(settings.Output, summary.Reports)
	if err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Str("run_id", summary.RunID).Msg("results written")

	out := cmd.OutOrStdout()
	if rc.format == formatTable {
		if err := export.NewReporter(out).Handle(summary); err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "\nResults saved to: %s\n", path)
		return err
	}
	return console.NewReporter(out).Handle(console.ConsoleReport{
		Summary:    summary,
		Coverage:   coverage,
		CodeDigits: settings.CodeDigits,
		OutputPath: path,
	})
}
