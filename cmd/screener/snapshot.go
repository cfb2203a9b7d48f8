package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokenScope/internal/config"
	"tokenScope/internal/feed"
	"tokenScope/internal/model"
	"tokenScope/internal/storage"
	"tokenScope/internal/trend"
	"tokenScope/internal/view"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.UpstreamURL == "" {
		return fmt.Errorf("upstream url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := feed.NewClient(cfg.UpstreamURL, 0)

	var tokens []model.Token
	err = feed.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
		var fetchErr error
		tokens, fetchErr = client.FetchTokens(ctx)
		return fetchErr
	})
	if err != nil {
		return fmt.Errorf("fetch token list: %w", err)
	}

	filters := cfg.FilterState()
	derived := view.Apply(tokens, filters)

	trends := trend.NewStore()
	if cfg.WithHistory {
		for i := range derived {
			key := derived[i].Key()
			err := feed.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
				samples, fetchErr := client.FetchTokenHistory(ctx, key)
				if fetchErr != nil {
					return fetchErr
				}
				trends.Update(key, samples)
				return nil
			})
			if err != nil {
				logger.Warn("history fetch failed, trends stay flat",
					zap.String("token", key), zap.Error(err))
			}
		}
	}

	rows := make([]model.SnapshotRow, 0, len(derived))
	for i := range derived {
		rows = append(rows, model.SnapshotRow{
			Rank:   i + 1,
			Token:  derived[i],
			Trends: trends.Pair(derived[i].Key()),
		})
	}

	sink := storage.NewJsonlStorage(cfg.Out)
	if err := sink.PutRows(rows); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	logger.Info("snapshot written",
		zap.String("out", cfg.Out),
		zap.Int("fetched", len(tokens)),
		zap.Int("written", len(rows)),
		zap.String("sort_by", filters.SortBy),
		zap.Bool("with_history", cfg.WithHistory),
	)

	return nil
}
