package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/david/support-finder/internal/catalog"
	"github.com/david/support-finder/internal/config"
	"github.com/david/support-finder/internal/db"
	"github.com/david/support-finder/internal/ingest"
	"github.com/david/support-finder/internal/logger"
)

// seed normalizes datasets and writes them to Postgres as domain snapshots.
func main() {
	domainID := flag.String("domain", "", "Domain to seed (default: all)")
	dir := flag.String("dir", "", "Directory with dataset files (default: embedded datasets)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	domains, err := catalog.LoadConfig(cfg.Catalog.DomainFile)
	if err != nil {
		log.Fatal("failed to load domains", zap.Error(err))
	}

	src := catalog.EmbeddedSource(domains, log)
	if *dir != "" {
		src = catalog.NewDatasetSource(os.DirFS(*dir), ".", domains, log)
	}
	src.WithFetcher(ingest.NewFetcher(ingest.FetchConfig{}))

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	store := db.NewStore(pool)

	for _, d := range domains.Domains {
		if *domainID != "" && d.ID != *domainID {
			continue
		}
		entities, rep, err := src.Load(ctx, d.ID)
		if err != nil {
			log.Fatal("failed to load dataset", zap.String("domain", d.ID), zap.Error(err))
		}
		if err := store.ReplaceDomain(ctx, d.ID, entities); err != nil {
			log.Fatal("failed to store domain", zap.String("domain", d.ID), zap.Error(err))
		}
		log.Info("domain seeded",
			zap.String("domain", d.ID),
			zap.String("shape", string(rep.Shape)),
			zap.Int("kept", rep.Kept),
			zap.Int("dropped", rep.Dropped()),
		)
	}
}
