package cmd

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/internal/report"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type reportOptions struct {
	configPath   string
	outputFormat string
}

func newReportCmd() *cobra.Command {
	opts := &reportOptions{}
	c := &cobra.Command{
		Use:   "report",
		Short: "Evaluate a configuration file and print the results",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runReport(c, opts)
		},
	}
	c.Flags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	c.Flags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	return c
}

func runReport(c *cobra.Command, opts *reportOptions) error {
	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	outputFormat, err = validation.OutputFormat(outputFormat)
	if err != nil {
		logger.Error(err.Error(), zap.String("op", "cmd.runReport"))
		return err
	}

	results, err := report.GetReport(c.Context(), logger, *conf)
	if err != nil {
		logger.Error("failed to compute report",
			zap.String("op", "cmd.runReport"),
			zap.Error(err),
		)
		return err
	}

	for _, warning := range results.Warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "cmd.runReport"),
		)
	}

	return output.Write(c.OutOrStdout(), outputFormat, results)
}
