package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/david/support-finder/internal/api"
	"github.com/david/support-finder/internal/auth"
	"github.com/david/support-finder/internal/catalog"
	"github.com/david/support-finder/internal/config"
	"github.com/david/support-finder/internal/db"
	"github.com/david/support-finder/internal/ingest"
	"github.com/david/support-finder/internal/locale"
	"github.com/david/support-finder/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	reg, err := locale.Embedded()
	if err != nil {
		return err
	}
	domains, err := catalog.LoadConfig(cfg.Catalog.DomainFile)
	if err != nil {
		return err
	}

	var src catalog.Source = catalog.EmbeddedSource(domains, log).
		WithFetcher(ingest.NewFetcher(ingest.FetchConfig{}))
	var store *db.Store
	if cfg.Catalog.Source == config.SourcePostgres {
		pool, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := db.ApplyMigrations(ctx, pool, log); err != nil {
			return err
		}
		store = db.NewStore(pool)
		src = catalog.FallbackSource{Primary: store, Fallback: src, Log: log}
	}

	cat, err := catalog.Load(ctx, domains, reg, src, log)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenIssuer(cfg.Quiz.TokenSecret, cfg.Quiz.TokenTTL, log)
	if err != nil {
		return err
	}

	srv, err := api.NewServer(cat, tokens, log, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		AdminSecret: cfg.Server.AdminSecret,
		Store:       store,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", cfg.Addr()),
			zap.String("catalog_source", cfg.Catalog.Source),
			zap.Int("domains", len(cat.Domains())),
		)
		errCh <- srv.Start(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Echo.Shutdown(shutdownCtx)
}
