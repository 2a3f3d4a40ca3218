/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/asltutor/apiserver/internal/metrics"
	"github.com/asltutor/apiserver/internal/server"
	"github.com/asltutor/apiserver/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportLimit int
	exportDays  int
)

// exportCmd represents the export-stats command
var exportCmd = &cobra.Command{
	Use:   "export-stats",
	Short: "Writes a stats snapshot to object storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		ctx := cmd.Context()

		svc, closers, err := server.Dependencies(ctx, cfg, logger, metrics.New())
		if err != nil {
			logger.Error(ctx, "failed to open dependencies", zap.Error(err))
			return err
		}
		defer func() {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i](context.Background())
			}
		}()

		key, err := svc.Export.Export(ctx, exportLimit, exportDays)
		if err != nil {
			logger.Error(ctx, "export failed", zap.Error(err))
			return err
		}
		logger.Info(ctx, "stats exported", zap.String("key", key))
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().IntVar(&exportLimit, "limit", services.DefaultTopRequested, "number of top requested words to include")
	exportCmd.Flags().IntVar(&exportDays, "days", services.DefaultWindowDays, "window in days for the user stats")
}
