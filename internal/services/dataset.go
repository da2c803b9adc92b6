package services

import (
	"context"
	"log/slog"
	"time"

	"taskdash/internal/dataprocessing"
	"taskdash/internal/files"
	"taskdash/internal/infrastructure"
)

// DatasetSource hands out the current dataset snapshot.
// *files.Cache[*dataprocessing.Dataset] satisfies it.
type DatasetSource interface {
	Get(ctx context.Context) (*dataprocessing.Dataset, error)
	Invalidate()
	Stats() files.CacheStats
}

// NewDatasetCache wires the loader behind a cache keyed by the input files.
// Loads and lookups are reported to metrics when it is non-nil.
func NewDatasetCache(loader *dataprocessing.Loader, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *files.Cache[*dataprocessing.Dataset] {
	load := func(ctx context.Context) (*dataprocessing.Dataset, error) {
		start := time.Now()
		ds, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		infrastructure.RecordDatasetLoad(ctx, metrics, time.Since(start), len(ds.Warnings))
		return ds, nil
	}

	cache := files.NewCache(loader.Files().All(), load, logger)
	cache.SetObserver(func(ctx context.Context, hit bool) {
		infrastructure.RecordCacheLookup(ctx, metrics, hit)
	})
	return cache
}
