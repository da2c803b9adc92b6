// Package files manages the dashboard's input files on disk.
//
// This package contains four components:
//
// Discovery: reports the state of every configured input (present, size,
// modification time, placeholder).
//
// Cache: a read-through cache in front of the dataset loader. The cached
// value is reused until one of the watched files changes its modification
// time or size, or until Invalidate is called. Concurrent callers that miss
// share a single load.
//
// Watcher: an fsnotify watch on the data directories that reports debounced
// changes to the configured files.
//
// Manager: prepares the data directory before the first run by copying each
// input from a source directory, extracting it from a Markdown document, or
// writing an empty placeholder.
//
// Example usage:
//
//	files := cfg.Data.Files()
//	cache := files.NewCache(files.All(), loader.Load, logger)
//	dataset, err := cache.Get(ctx)
package files
