package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"orders/internal/adapters/out/postgres/migrations"

	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewLogger returns the process JSON logger at the configured level.
func NewLogger(cfg Config) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// OpenDatabase connects to PostgreSQL through GORM.
func OpenDatabase(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, cfg Config, log *slog.Logger) error {
	db, err := OpenDatabase(cfg)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err = migrations.Up(ctx, sqlDB); err != nil {
		return err
	}

	version, err := migrations.Version(ctx, sqlDB)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "database schema is up to date", slog.Int64("version", version))
	return nil
}

// Serve runs the HTTP API until ctx is cancelled. With the memory transport
// the notifier runs in the same process, since nothing else can reach the bus.
func Serve(ctx context.Context, cfg Config, log *slog.Logger) error {
	db, err := OpenDatabase(cfg)
	if err != nil {
		return err
	}

	root := NewCompositionRoot(cfg, db, log)

	sender, err := root.CreateMessageSender()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sender.Close(); closeErr != nil {
			log.ErrorContext(ctx, "failed to close message sender", slog.Any("error", closeErr))
		}
	}()

	bridge, err := root.CreateOrderEventsBridge(sender)
	if err != nil {
		return err
	}

	e := root.CreateHTTPServer(bridge).NewEcho()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(gctx, "http server listening", slog.String("port", cfg.HTTPPort))
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if cfg.Transport == TransportMemory {
		g.Go(func() error {
			return notify(gctx, root, log)
		})
	}

	return g.Wait()
}

// Notify runs the inbound dispatcher until ctx is cancelled.
func Notify(ctx context.Context, cfg Config, log *slog.Logger) error {
	if cfg.Transport == TransportMemory {
		return errors.New("notify needs a networked TRANSPORT; the memory bus only runs inside serve")
	}
	return notify(ctx, NewCompositionRoot(cfg, nil, log), log)
}

func notify(ctx context.Context, root *CompositionRoot, log *slog.Logger) error {
	dispatcher, err := root.CreateDispatcher()
	if err != nil {
		return err
	}

	receivers, err := root.CreateMessageReceivers()
	if err != nil {
		return err
	}

	jobManager := root.CreateJobManager(dispatcher)
	if err = jobManager.StartAll(); err != nil {
		for _, receiver := range receivers {
			_ = receiver.Close()
		}
		return err
	}
	defer jobManager.StopAll()

	started := time.Now()
	err = dispatcher.RunSessions(ctx, receivers)

	stats := dispatcher.Stats()
	log.InfoContext(ctx, "notifier stopped",
		slog.Duration("uptime", time.Since(started)),
		slog.Int64("received", stats.Received),
		slog.Int64("dead_lettered", stats.DeadLettered),
	)
	return err
}
