package terminal

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/trade-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/trade-atlas/pkg/store/source"
)

// CLI represents the command-line interface
type CLI struct {
	sources source.Registry
	output  io.Writer
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Sources source.Registry
	Output  io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Sources == nil {
		opts.Sources = source.NewDefaultRegistry()
	}

	cli := &CLI{
		sources: opts.Sources,
		output:  opts.Output,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, mainly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "trade-atlas",
		Short:         "Trade balance reports for a focus country and its partner bloc",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.output)
	cmd.PersistentFlags().String(commands.FlagConfig, "", "settings file (yaml, json or toml)")

	cmd.AddCommand(commands.NewReportCmd(cli.sources))
	cmd.AddCommand(commands.NewCoverageCmd())

	return cmd
}
