package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/VTGare/Starlight/arikawautils/middlewares"
	"github.com/VTGare/Starlight/bot"
	"github.com/VTGare/Starlight/commands"
	"github.com/VTGare/Starlight/config"
	"github.com/VTGare/Starlight/ctxzap"
	"github.com/VTGare/Starlight/metrics"
	"github.com/VTGare/Starlight/store"
	"github.com/VTGare/Starlight/store/file"
	"github.com/VTGare/Starlight/store/mongo"
	"github.com/VTGare/Starlight/store/pebble"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(config.DefaultSources())
	if err != nil {
		log.Fatalf("failed to initialize config: %v", err)
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = ctxzap.ToContext(ctx, logger)

	board, err := file.Open(cfg.Leaderboard.Path)
	if err != nil {
		if errors.Is(err, store.ErrStorageCorrupt) {
			logger.With("path", cfg.Leaderboard.Path, "error", err).
				Fatal("leaderboard file is corrupt, refusing to start")
		}

		logger.With("error", err).Fatal("failed to open the leaderboard")
	}

	ledger, err := initializeLedger(ctx, cfg)
	if err != nil {
		logger.With("backend", cfg.Ledger.Backend, "error", err).Fatal("failed to open the promotion ledger")
	}

	if ledger != nil {
		defer func() {
			if err := ledger.Close(context.Background()); err != nil {
				logger.With("error", err).Warn("failed to close the promotion ledger")
			}
		}()
	}

	m := metrics.New()
	if entries, err := board.Entries(ctx); err == nil {
		m.SetLeaderboardEntries(len(entries))
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.With("addr", cfg.Metrics.Addr, "error", err).Error("metrics server stopped")
			}
		}()
	}

	b := bot.New(logger, cfg, board, ledger, m)

	// Recover runs inside Deferrable, which calls handlers on its own goroutine.
	b.AddMiddleware(middlewares.CommandLog(logger))
	b.AddMiddleware(cmdroute.Deferrable(b.State, cmdroute.DeferOpts{
		Error: func(err error) {
			logger.With("error", err).Error("failed to send a deferred response")
		},
	}))
	b.AddMiddleware(middlewares.Recover(logger))
	commands.RegisterCommands(b)

	// Start blocks until the context is cancelled.
	if err := b.Start(ctx); startFailed(ctx, err) {
		logger.With("error", err).Fatal("failed to start the bot")
	}

	logger.Info("shutting down")
}

// startFailed reports whether the bot stopped for a reason other than
// shutdown.
func startFailed(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() == nil
}

func initializeLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	if cfg.Dev.Mode {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}

		return log.Sugar(), nil
	}

	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

// initializeLedger opens the configured promotion ledger. It returns nil when
// none is configured.
func initializeLedger(ctx context.Context, cfg *config.Config) (store.PromotionStore, error) {
	switch cfg.Ledger.Backend {
	case config.LedgerPebble:
		return pebble.Open(cfg.Ledger.Pebble.Path)
	case config.LedgerMongo:
		s, err := mongo.New(ctx, cfg.Ledger.Mongo.URI, cfg.Ledger.Mongo.Database)
		if err != nil {
			return nil, err
		}

		if err := s.Init(ctx); err != nil {
			s.Close(ctx)
			return nil, err
		}

		return s, nil
	default:
		return nil, nil
	}
}
