package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcher_firesOnPublish(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "bundle")

	var reloads atomic.Int32
	w := NewWatcher(dir, func() { reloads.Add(1) }, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Simulate an atomic publish: stage elsewhere, rename into place.
	staging := filepath.Join(parent, ".staging-test")
	if err := os.MkdirAll(staging, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(staging, "version.txt"), []byte("1.0.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(staging, dir); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for reloads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if reloads.Load() == 0 {
		t.Error("publish did not trigger a reload")
	}
}

func TestWatcher_debouncesBursts(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "bundle")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	var reloads atomic.Int32
	w := NewWatcher(dir, func() { reloads.Add(1) }, WithDebounce(150*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	version := filepath.Join(dir, "version.txt")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(version, []byte("2.0.0\n"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)
	if got := reloads.Load(); got != 1 {
		t.Errorf("reloads = %d, want 1 (debounced)", got)
	}
}

func TestWatcher_ignoresUnrelatedFiles(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "bundle")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	var reloads atomic.Int32
	w := NewWatcher(dir, func() { reloads.Add(1) }, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(parent, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := reloads.Load(); got != 0 {
		t.Errorf("unrelated file triggered %d reloads", got)
	}
}
