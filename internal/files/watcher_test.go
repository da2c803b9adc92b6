package files

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcher_ReportsDebouncedChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	tasks := filepath.Join(dir, "tasks.csv")
	writeFile(t, tasks, "task_id\n1\n")

	changes := make(chan []string, 4)
	w, err := NewWatcher([]string{tasks}, 50*time.Millisecond, func(ctx context.Context, paths []string) {
		changes <- paths
	}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// a burst of writes is reported once
	for i := 0; i < 3; i++ {
		writeFile(t, tasks, "task_id\n1\n2\n")
	}
	// unrelated files are ignored
	writeFile(t, filepath.Join(dir, "notes.txt"), "hello")

	select {
	case paths := <-changes:
		require.Len(t, paths, 1)
		assert.Equal(t, "tasks.csv", filepath.Base(paths[0]))
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case paths := <-changes:
		t.Fatalf("unexpected second report: %v", paths)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher([]string{filepath.Join(t.TempDir(), "tasks.csv")}, 0, func(context.Context, []string) {}, nil)
	require.NoError(t, err)
	w.Stop()
}

func TestWatcher_ContextCancelStopsLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher([]string{filepath.Join(t.TempDir(), "tasks.csv")}, 20*time.Millisecond, func(context.Context, []string) {}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case <-w.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not exit")
	}
	w.Stop()
}

func TestNewWatcher_RequiresCallback(t *testing.T) {
	_, err := NewWatcher(nil, time.Second, nil, nil)
	assert.Error(t, err)
}
