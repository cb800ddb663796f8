package corpus

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct {
	n atomic.Int32
}

func (c *countingInvalidator) Invalidate() { c.n.Add(1) }

func TestWatcher_HandleEvent(t *testing.T) {
	target := &countingInvalidator{}
	w := &Watcher{target: target}

	dir := t.TempDir()
	md := filepath.Join(dir, "a.md")

	w.handleEvent(fsnotify.Event{Name: md, Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "B.MD"), Op: fsnotify.Remove})
	w.handleEvent(fsnotify.Event{Name: md, Op: fsnotify.Rename})
	w.handleEvent(fsnotify.Event{Name: md, Op: fsnotify.Chmod})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "a.png"), Op: fsnotify.Write})

	assert.Equal(t, int32(3), target.n.Load())
}

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "soup"), 0o755))

	target := &countingInvalidator{}
	w, err := NewWatcher(dir, target)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "soup", "a.md"), []byte("# 汤\n"), 0o644))

	assert.Eventually(t, func() bool {
		return target.n.Load() > 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestNewWatcher_MissingRoot(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope"), &countingInvalidator{})
	assert.Error(t, err)
}
