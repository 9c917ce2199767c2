package commands

import (
	"github.com/spf13/cobra"

	"github.com/de-tools/trade-atlas/pkg/runtime/terminal/console"
	"github.com/de-tools/trade-atlas/pkg/services/config"
)

type CoverageCmd struct {
	loader *config.Loader
}

func NewCoverageCmd() *cobra.Command {
	cc := &CoverageCmd{loader: config.NewLoader()}
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Show the focus country and bloc members a report covers",
		Args:  cobra.NoArgs,
		RunE:  cc.run,
	}

	_ = cc.loader.BindFlags(cmd.Flags(), config.KeyBlocFile)

	return cmd
}

func (cc *CoverageCmd) run(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	settings, err := cc.loader.Load(configFile(cmd))
	if err != nil {
		return err
	}
	coverage, err := settings.Coverage()
	if err != nil {
		return err
	}
	return console.NewReporter(cmd.OutOrStdout()).HandleCoverage(coverage)
}
