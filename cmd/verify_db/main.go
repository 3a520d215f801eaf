package main

import (
	"context"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/david/support-finder/internal/config"
	"github.com/david/support-finder/internal/db"
	"github.com/david/support-finder/internal/logger"
)

// verify_db prints the stored domain snapshots and their entity counts.
func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()

	store := db.NewStore(pool)
	snapshots, err := store.Domains(ctx)
	if err != nil {
		log.Fatal("query failed", zap.Error(err))
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		log.Fatal("query failed", zap.Error(err))
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Domain", "Entities", "Loaded At"})
	for _, s := range snapshots {
		t.AppendRow(table.Row{s.Domain, s.Entities, s.LoadedAt.Format("2006-01-02 15:04:05")})
	}
	t.AppendFooter(table.Row{stats.Domains, stats.Entities, ""})
	t.Render()
}
