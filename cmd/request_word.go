/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"time"

	"github.com/asltutor/apiserver/internal/mq"
	"github.com/asltutor/apiserver/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// requestWordCmd represents the request-word command
var requestWordCmd = &cobra.Command{
	Use:   "request-word WORD...",
	Short: "Publishes word request events, e.g. to backfill request counters",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		ctx := cmd.Context()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			logger.Error(ctx, "failed to connect message queue", zap.Error(err))
			return err
		}
		defer func() { _ = queue.Close() }()

		for _, word := range args {
			data, attrs, err := mq.EncodeWordRequested(mq.WordRequested{
				Word:        services.NormalizeWord(word),
				RequestedAt: time.Now().UTC(),
			})
			if err != nil {
				return err
			}
			id, err := queue.Publish(ctx, cfg.MQ.WordRequestChannel, data, attrs)
			if err != nil {
				logger.Error(ctx, "publish failed", zap.String("word", word), zap.Error(err))
				return err
			}
			logger.Info(ctx, "word request published", zap.String("word", word), zap.String("message_id", id))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(requestWordCmd)
}
