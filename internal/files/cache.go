package files

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces a fresh value from the files on disk
type LoadFunc[T any] func(ctx context.Context) (T, error)

// LookupObserver is told about every cache lookup
type LookupObserver func(ctx context.Context, hit bool)

// CacheStats is a snapshot of cache activity
type CacheStats struct {
	Hits     int64     `json:"hits"`
	Misses   int64     `json:"misses"`
	Loads    int64     `json:"loads"`
	Valid    bool      `json:"valid"`
	LastLoad time.Time `json:"last_load"`
}

// Cache is a read-through cache keyed by the modification time and size of a
// set of files
type Cache[T any] struct {
	paths    []string
	load     LoadFunc[T]
	logger   *slog.Logger
	observer LookupObserver

	mu       sync.RWMutex
	value    T
	stamp    string
	valid    bool
	gen      uint64 // bumped by Invalidate
	lastLoad time.Time

	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

// NewCache creates a cache over paths. Nothing is loaded until the first Get.
func NewCache[T any](paths []string, load LoadFunc[T], logger *slog.Logger) *Cache[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache[T]{
		paths:  append([]string(nil), paths...),
		load:   load,
		logger: logger.With(slog.String("component", "dataset_cache")),
	}
}

// SetObserver installs a hook called on every lookup, typically for metrics
func (c *Cache[T]) SetObserver(observer LookupObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = observer
}

// Get returns the cached value, loading it when the files changed since the
// last load or the cache was invalidated. Concurrent misses share one load.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	stamp := Fingerprint(c.paths)

	c.mu.RLock()
	value, hit, observer, gen := c.value, c.valid && c.stamp == stamp, c.observer, c.gen
	c.mu.RUnlock()

	if observer != nil {
		observer(ctx, hit)
	}
	if hit {
		c.hits.Add(1)
		return value, nil
	}
	c.misses.Add(1)

	// a load started before an Invalidate must not be joined after it
	key := fmt.Sprintf("%s#%d", stamp, gen)
	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		// the load outlives a single caller's cancellation since others may share it
		loaded, err := c.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.loads.Add(1)
		c.mu.Lock()
		stale := c.gen != gen
		if !stale {
			c.value = loaded
			c.stamp = stamp
			c.valid = true
			c.lastLoad = time.Now()
		}
		c.mu.Unlock()

		if stale {
			c.logger.DebugContext(ctx, "dataset cache invalidated during load, result not kept")
		} else {
			c.logger.DebugContext(ctx, "dataset cache refreshed", slog.String("fingerprint", stamp))
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("load cached value: %w", err)
	}
	if shared {
		c.logger.DebugContext(ctx, "dataset load shared with concurrent caller")
	}
	return result.(T), nil
}

// Peek returns the current value without loading
func (c *Cache[T]) Peek() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.valid
}

// Invalidate forces the next Get to reload
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.gen++
	c.mu.Unlock()
	c.logger.Debug("dataset cache invalidated")
}

// Stats returns a snapshot of cache activity
func (c *Cache[T]) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Loads:    c.loads.Load(),
		Valid:    c.valid,
		LastLoad: c.lastLoad,
	}
}

// Fingerprint summarizes the modification time and size of every path.
// Missing files contribute a fixed marker so their later creation changes
// the result.
func Fingerprint(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		st, err := os.Stat(p)
		if err != nil {
			b.WriteString(":-;")
			continue
		}
		fmt.Fprintf(&b, ":%d:%d;", st.ModTime().UnixNano(), st.Size())
	}
	return b.String()
}
