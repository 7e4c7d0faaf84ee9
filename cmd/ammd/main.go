package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ammcore/internal/config"
	"ammcore/internal/engine"
	"ammcore/internal/event"
	"ammcore/internal/handler"
	"ammcore/internal/ledger"
	"ammcore/internal/model"
	"ammcore/internal/registry"
	"ammcore/internal/storage"
	"ammcore/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "ammd",
		Short:        "Constant-product AMM daemon",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}

	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	serveCmd.Flags().String("event-log", "./data/events.jsonl", "event journal JSONL path")
	serveCmd.Flags().Bool("snapshot-on-commit", true, "upsert pool snapshots after each committed operation")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	led := ledger.NewMemory()
	reg := registry.New()

	sinks := event.Fanout{
		event.NewLogSink(logger),
		storage.NewJsonlStorage(cfg.EventLog),
	}

	// The Postgres sink reads snapshots back through the engine, which is
	// built after the fanout. The closure breaks the cycle.
	var eng *engine.Engine

	var pgStore *postgres.Store
	if cfg.PgDSN != "" {
		pgStore, err = postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()

		var snapshots func(string) (model.PoolSnapshot, error)
		if cfg.SnapshotOnCommit {
			snapshots = func(poolID string) (model.PoolSnapshot, error) {
				return eng.GetPool(poolID)
			}
		}
		sinks = append(sinks, postgres.NewSink(pgStore, snapshots))
	}

	eng = engine.New(reg, led, sinks, logger)

	app := fiber.New()
	handler.NewPoolHandler(logger, eng).Register(app)

	logger.Info("ammd start",
		zap.String("addr", cfg.Addr),
		zap.String("event_log", cfg.EventLog),
		zap.Bool("postgres", pgStore != nil),
		zap.Bool("snapshot_on_commit", cfg.SnapshotOnCommit),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return app.ShutdownWithContext(shutdownCtx)
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
