package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/loan-calculator/internal/server"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var serverConfigPath, address string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the loan API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}

			logger, err := initializeLogger(cfg.Logging, logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			srv, err := server.New(logger, cfg, Version)
			if err != nil {
				logger.Error("failed to build server",
					zap.String("op", "cmd.serve"),
					zap.Error(err),
				)
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Run(ctx); err != nil {
				logger.Error("server stopped with error",
					zap.String("op", "cmd.serve"),
					zap.Error(err),
				)
				return err
			}
			logger.Info("server stopped", zap.String("op", "cmd.serve"))
			return nil
		},
	}
	c.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file (YAML or TOML)")
	c.Flags().StringVar(&address, "address", "", "listen address override")
	return c
}
