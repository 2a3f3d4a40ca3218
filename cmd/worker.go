/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/asltutor/apiserver/internal/metrics"
	"github.com/asltutor/apiserver/internal/mq"
	"github.com/asltutor/apiserver/internal/server"
	"github.com/asltutor/apiserver/internal/services"
	"github.com/asltutor/apiserver/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workerMetricsAddr string

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consumes word request events and updates request counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		ctx := cmd.Context()

		repos, err := server.OpenRepositories(ctx, cfg)
		if err != nil {
			logger.Error(ctx, "failed to open database", zap.Error(err))
			return err
		}
		defer func() { _ = repos.Close(context.Background()) }()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			logger.Error(ctx, "failed to connect message queue", zap.Error(err))
			return err
		}
		defer func() { _ = queue.Close() }()

		m := metrics.New()
		if workerMetricsAddr != "" {
			metricsServer := &http.Server{Addr: workerMetricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(ctx, "metrics listener failed", zap.Error(err))
				}
			}()
			defer func() { _ = metricsServer.Close() }()
		}

		stats := services.NewStatsService(repos.Dictionary, repos.Users, repos.Submissions, nil, m)
		w := worker.NewWordRequestWorker(stats, queue, cfg.MQ.WordRequestChannel,
			logger.With(zap.String("component", "word-request-worker")), m)
		return w.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().StringVar(&workerMetricsAddr, "metrics-addr", ":9091", "address of the Prometheus listener, empty to disable")
}
