// Package cmd implements the loan-calculator command line.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var logLevel string

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "loan-calculator",
		Short: "Amortize loans and compare financing options",
		Long: `loan-calculator builds monthly amortization schedules for level-payment
and level-principal loans, applies prepayments, combines commercial and
provident fund loans, sweeps rates and terms and compares scenarios.

Results are printed from a YAML configuration or served over a JSON API.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(newReportCmd(), newServeCmd(), newVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
