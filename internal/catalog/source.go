package catalog

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"go.uber.org/zap"

	"github.com/david/support-finder/internal/ingest"
	"github.com/david/support-finder/internal/logger"
	"github.com/david/support-finder/internal/models"
)

//go:embed data/*
var dataFS embed.FS

// Source provides the entities of a domain.
type Source interface {
	Entities(ctx context.Context, domain string) ([]models.Entity, error)
}

// DatasetSource reads raw dataset files and normalizes them.
type DatasetSource struct {
	fsys    fs.FS
	dir     string
	cfg     *Config
	log     *zap.Logger
	fetcher *ingest.Fetcher
}

// NewDatasetSource reads datasets named by cfg from dir inside fsys.
func NewDatasetSource(fsys fs.FS, dir string, cfg *Config, log *zap.Logger) *DatasetSource {
	return &DatasetSource{fsys: fsys, dir: dir, cfg: cfg, log: logger.OrNop(log)}
}

// EmbeddedSource reads the datasets compiled into the binary.
func EmbeddedSource(cfg *Config, log *zap.Logger) *DatasetSource {
	return NewDatasetSource(dataFS, "data", cfg, log)
}

// WithFetcher enables datasets given as http(s) URLs.
func (s *DatasetSource) WithFetcher(f *ingest.Fetcher) *DatasetSource {
	s.fetcher = f
	return s
}

func (s *DatasetSource) Entities(ctx context.Context, domain string) ([]models.Entity, error) {
	entities, _, err := s.Load(ctx, domain)
	return entities, err
}

// Load is Entities plus the normalization report.
func (s *DatasetSource) Load(ctx context.Context, domain string) ([]models.Entity, ingest.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, ingest.Report{}, err
	}
	d, ok := s.cfg.Domain(domain)
	if !ok {
		return nil, ingest.Report{}, fmt.Errorf("%w: %s", ErrUnknownDomain, domain)
	}

	data, file, err := s.read(ctx, d.Dataset)
	if err != nil {
		return nil, ingest.Report{}, err
	}
	raw, err := ingest.DecodeDataset(data)
	if err != nil {
		return nil, ingest.Report{}, fmt.Errorf("dataset %s: %w", file, err)
	}

	entities, rep := ingest.NormalizeWithReport(raw)
	fields := []zap.Field{
		zap.String("domain", domain),
		zap.String("dataset", d.Dataset),
		zap.String("shape", string(rep.Shape)),
		zap.Int("kept", rep.Kept),
		zap.Int("dropped", rep.Dropped()),
	}
	if rep.Dropped() > 0 || rep.Shape == ingest.ShapeUnknown {
		s.log.Warn("dataset normalized with dropped records", append(fields,
			zap.Int("missing_id", rep.MissingID),
			zap.Int("duplicates", rep.Duplicates),
			zap.Int("not_records", rep.NotRecords),
		)...)
	} else {
		s.log.Debug("dataset normalized", fields...)
	}
	return entities, rep, nil
}

func (s *DatasetSource) read(ctx context.Context, dataset string) ([]byte, string, error) {
	if ingest.IsRemote(dataset) {
		if s.fetcher == nil {
			return nil, dataset, fmt.Errorf("remote dataset %s: no fetcher configured", dataset)
		}
		data, err := s.fetcher.Fetch(ctx, dataset)
		return data, dataset, err
	}
	file := path.Join(s.dir, dataset)
	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		return nil, file, fmt.Errorf("read dataset %s: %w", file, err)
	}
	return data, file, nil
}

// FallbackSource serves Primary and falls back to Fallback for domains
// Primary has no entities for, such as a database that was never seeded.
type FallbackSource struct {
	Primary  Source
	Fallback Source
	Log      *zap.Logger
}

func (s FallbackSource) Entities(ctx context.Context, domain string) ([]models.Entity, error) {
	entities, err := s.Primary.Entities(ctx, domain)
	if err != nil {
		return nil, err
	}
	if len(entities) > 0 || s.Fallback == nil {
		return entities, nil
	}
	logger.OrNop(s.Log).Info("no stored entities, using fallback source", zap.String("domain", domain))
	return s.Fallback.Entities(ctx, domain)
}
