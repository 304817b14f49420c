package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_FiresOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.json")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 1)
	w := New(path, 5*time.Millisecond, func(context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the watcher observe the initial state first.
	time.Sleep(30 * time.Millisecond)
	// Size change guarantees detection even on coarse mtime filesystems.
	if err := os.WriteFile(path, []byte("v2-longer"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire on change")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected run error: %v", err)
	}
}

func TestWatcher_PauseSuppressesOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.json")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 8)
	w := New(path, 5*time.Millisecond, func(context.Context) { fired <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(30 * time.Millisecond)

	// A write bracketed by Pause/Resume must not come back as a change.
	w.Pause()
	if err := os.WriteFile(path, []byte("written-by-ourselves"), 0o644); err != nil {
		t.Fatal(err)
	}
	w.Resume()
	time.Sleep(50 * time.Millisecond)
	select {
	case <-fired:
		t.Fatal("watcher echoed a paused write")
	default:
	}

	// An outside write after Resume still fires.
	if err := os.WriteFile(path, []byte("external-edit-much-longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher missed a change after resume")
	}
}

func TestWatcher_PauseWaitsForInflightCallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.json")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	started := make(chan struct{})
	release := make(chan struct{})
	w := New(path, 5*time.Millisecond, func(context.Context) {
		close(started)
		<-release
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(30 * time.Millisecond)

	if err := os.WriteFile(path, []byte("v2-longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never started")
	}

	pauseDone := make(chan struct{})
	go func() {
		w.Pause()
		close(pauseDone)
	}()
	select {
	case <-pauseDone:
		t.Fatal("Pause returned while the callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-pauseDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Pause did not return after the callback finished")
	}
}

func TestWatcher_SilentWhileMissingOrUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.json")
	fired := make(chan struct{}, 8)
	w := New(path, 5*time.Millisecond, func(context.Context) { fired <- struct{}{} })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	select {
	case <-fired:
		t.Fatal("watcher fired for a missing file")
	default:
	}
}
