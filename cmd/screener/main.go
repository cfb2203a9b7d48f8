package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tokenScope/internal/config"
	"tokenScope/internal/feed"
	"tokenScope/internal/history"
	"tokenScope/internal/server"
	"tokenScope/internal/session"
	"tokenScope/internal/stats"
	"tokenScope/internal/storage"
	"tokenScope/internal/storage/postgres"
	"tokenScope/internal/trend"
)

func main() {
	// .env is optional; real environment variables win because Load never
	// overwrites them.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "screener",
		Short:        "Token screener backend",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the screener over WebSocket and HTTP",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().String("upstream", "", "upstream token feed URL")
	serveCmd.Flags().Duration("poll-interval", 30*time.Second, "feed poll interval")
	serveCmd.Flags().Int("max-retries", 3, "maximum retry attempts per poll")
	serveCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	serveCmd.Flags().String("state-dir", "./data/state", "settings store directory (file store)")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN for the settings store (overrides state-dir)")
	serveCmd.Flags().Int("max-sessions", 256, "maximum concurrent sessions")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write one filtered view of the feed to JSONL",
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().String("upstream", "", "upstream token feed URL")
	snapshotCmd.Flags().String("out", "./data/snapshot.jsonl", "output JSONL path")
	snapshotCmd.Flags().String("sort-by", "age", "sort key (age, liquidity, holders, safety)")
	snapshotCmd.Flags().String("search", "", "search query")
	snapshotCmd.Flags().Int("max-records", 100, "record cap after sorting")
	snapshotCmd.Flags().Int("min-holders", 0, "minimum holder count")
	snapshotCmd.Flags().Float64("min-liquidity", 0, "minimum liquidity in USD")
	snapshotCmd.Flags().Bool("with-history", false, "fetch per-token history to compute trends")
	snapshotCmd.Flags().Int("max-retries", 3, "maximum retry attempts")
	snapshotCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(snapshotCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
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

	var settings storage.Store
	if cfg.PGDSN != "" {
		pgStore, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		if err := pgStore.InitSchema(ctx); err != nil {
			return fmt.Errorf("init postgres schema: %w", err)
		}
		settings = pgStore
	} else {
		settings = storage.NewFileStore(cfg.StateDir)
	}

	feedClient := feed.NewClient(cfg.UpstreamURL, 0)
	trends := trend.NewStore()

	histSvc := history.NewService(history.NewCache(), feedClient, trends, settings, logger)
	if err := histSvc.LoadPersisted(ctx); err != nil {
		logger.Warn("load persisted history", zap.Error(err))
	}

	collector := stats.NewCollector()
	poller := feed.NewPoller(feed.PollerConfig{
		Interval:     cfg.PollInterval,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, feedClient, collector, logger)
	go func() {
		if err := poller.Run(ctx); err != nil {
			logger.Error("poller stopped", zap.Error(err))
		}
	}()

	registry := session.NewRegistry(session.RegistryConfig{MaxSessions: cfg.MaxSessions}, session.Deps{
		Feed:     poller,
		History:  histSvc,
		Trends:   trends,
		Settings: settings,
		Logger:   logger,
		FetchCtx: ctx,
	})

	srv := server.New(server.Config{Addr: cfg.ListenAddr}, registry, poller, collector, logger)

	logger.Info("screener start",
		zap.String("listen", cfg.ListenAddr),
		zap.String("upstream", cfg.UpstreamURL),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Int("max_sessions", cfg.MaxSessions),
		zap.Bool("postgres", cfg.PGDSN != ""),
	)

	return srv.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
