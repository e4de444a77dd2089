package builder_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/raido/internal/builder"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type changeRecorder struct {
	mu    sync.Mutex
	calls []bool
}

func (c *changeRecorder) record(contentOnly bool) {
	c.mu.Lock()
	c.calls = append(c.calls, contentOnly)
	c.mu.Unlock()
}

func (c *changeRecorder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *changeRecorder) last() (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return false, false
	}
	return c.calls[len(c.calls)-1], true
}

func TestWatch_ContentChangeFires(t *testing.T) {
	contentDir := t.TempDir()
	rec := &changeRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go builder.Watch(ctx, []string{contentDir}, contentDir, 50*time.Millisecond, testLogger(), rec.record)

	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(contentDir, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.count() > 0
	}, "expected onChange after content write")

	if contentOnly, ok := rec.last(); ok && !contentOnly {
		t.Error("content-dir write should report contentOnly=true")
	}
}

func TestWatch_LayoutChangeNotContentOnly(t *testing.T) {
	contentDir := t.TempDir()
	layoutsDir := t.TempDir()
	rec := &changeRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go builder.Watch(ctx, []string{contentDir, layoutsDir}, contentDir, 50*time.Millisecond, testLogger(), rec.record)

	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(layoutsDir, "base.html"), []byte("<html></html>"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.count() > 0
	}, "expected onChange after layout write")

	if contentOnly, ok := rec.last(); ok && contentOnly {
		t.Error("layout write should report contentOnly=false")
	}
}

func TestWatch_NewSubdirWatched(t *testing.T) {
	contentDir := t.TempDir()
	rec := &changeRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go builder.Watch(ctx, []string{contentDir}, contentDir, 50*time.Millisecond, testLogger(), rec.record)

	time.Sleep(100 * time.Millisecond)
	subDir := filepath.Join(contentDir, "_posts")
	_ = os.MkdirAll(subDir, 0o755)

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return rec.count() > 0
	}, "expected onChange after mkdir")
	before := rec.count()

	_ = os.WriteFile(filepath.Join(subDir, "2015-03-12-first.md"), []byte("text"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.count() > before
	}, "file in new subdir not seen by watcher")
}
