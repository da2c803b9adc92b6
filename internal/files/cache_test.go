package files

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingLoader(calls *atomic.Int64) LoadFunc[int64] {
	return func(ctx context.Context) (int64, error) {
		return calls.Add(1), nil
	}
}

func TestCache_HitUntilFileChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.csv")
	writeFile(t, path, "task_id\n1\n")

	var calls atomic.Int64
	cache := NewCache([]string{path}, countingLoader(&calls), nil)
	ctx := context.Background()

	v, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	v, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	v, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)

	stats := cache.Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 2, stats.Misses)
	assert.EqualValues(t, 2, stats.Loads)
	assert.True(t, stats.Valid)
	assert.False(t, stats.LastLoad.IsZero())
}

func TestCache_MissingFileAppearing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.csv")

	var calls atomic.Int64
	cache := NewCache([]string{path}, countingLoader(&calls), nil)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	writeFile(t, path, "task_id\n")

	v, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)
}

func TestCache_Invalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.csv")
	writeFile(t, path, "task_id\n")

	var calls atomic.Int64
	cache := NewCache([]string{path}, countingLoader(&calls), nil)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	cache.Invalidate()
	_, valid := cache.Peek()
	assert.False(t, valid)

	v, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)
}

func TestCache_InvalidateDuringLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.csv")
	writeFile(t, path, "task_id\n")

	var calls atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})
	cache := NewCache([]string{path}, func(ctx context.Context) (int64, error) {
		n := calls.Add(1)
		if n == 1 {
			close(started)
			<-release
		}
		return n, nil
	}, nil)

	first := make(chan int64, 1)
	go func() {
		v, err := cache.Get(context.Background())
		assert.NoError(t, err)
		first <- v
	}()

	<-started
	cache.Invalidate()

	// must not join the load that began before the invalidation
	v, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)

	close(release)
	assert.EqualValues(t, 1, <-first)

	v, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, v, "the older load must not overwrite the newer value")
	assert.EqualValues(t, 2, calls.Load())
	assert.True(t, cache.Stats().Valid)
}

func TestCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.csv")
	writeFile(t, path, "task_id\n")

	var calls atomic.Int64
	release := make(chan struct{})
	cache := NewCache([]string{path}, func(ctx context.Context) (int64, error) {
		<-release
		return calls.Add(1), nil
	}, nil)

	var wg sync.WaitGroup
	results := make([]int64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := cache.Get(context.Background())
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, v := range results {
		assert.EqualValues(t, 1, v)
	}
}

func TestCache_LoadError(t *testing.T) {
	errBoom := errors.New("boom")
	cache := NewCache(nil, func(ctx context.Context) (int, error) {
		return 0, errBoom
	}, nil)

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, cache.Stats().Valid)
}

func TestCache_Observer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.csv")
	writeFile(t, path, "task_id\n")

	var calls atomic.Int64
	cache := NewCache([]string{path}, countingLoader(&calls), nil)

	var lookups []bool
	cache.SetObserver(func(ctx context.Context, hit bool) { lookups = append(lookups, hit) })

	for i := 0; i < 3; i++ {
		_, err := cache.Get(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, []bool{false, true, true}, lookups)
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	writeFile(t, a, "x\n")

	before := Fingerprint([]string{a, filepath.Join(dir, "missing.csv")})
	assert.Equal(t, before, Fingerprint([]string{a, filepath.Join(dir, "missing.csv")}))

	writeFile(t, a, "x,y\n")
	assert.NotEqual(t, before, Fingerprint([]string{a, filepath.Join(dir, "missing.csv")}))
}
