// Package watch re-runs a callback whenever a file changes on disk. The
// caption engine itself is pure; this poller is the host-side loop that feeds
// it fresh input when the upstream caption file is rewritten.
package watch

import (
	"context"
	"os"
	"sync"
	"time"
)

type Watcher struct {
	path     string
	interval time.Duration
	onChange func(context.Context)

	mu       sync.Mutex
	paused   bool
	seen     bool
	lastMod  time.Time
	lastSize int64
}

func New(path string, interval time.Duration, onChange func(context.Context)) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{path: path, interval: interval, onChange: onChange}
}

// Run polls until the context is cancelled. The callback fires once per
// observed change of the file's mtime or size; polling granularity is the
// debounce, rapid rewrites within one tick collapse into a single callback.
// A missing file is not an error, it simply produces no callbacks until it
// appears.
//
// The callback runs on the polling goroutine and holds the watcher's lock,
// so Pause blocks until any in-flight callback returns.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// Pause stops callbacks until Resume. Writers that rewrite the watched file
// themselves bracket their writes with Pause/Resume so their own output does
// not echo back as another change.
func (w *Watcher) Pause() {
	w.mu.Lock()
	w.paused = true
	w.mu.Unlock()
}

// Resume re-baselines on the file's current state, so everything written
// while paused is treated as already handled, and unpauses.
func (w *Watcher) Resume() {
	info, err := os.Stat(w.path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.seen = false
	} else {
		w.seen = true
		w.lastMod = info.ModTime()
		w.lastSize = info.Size()
	}
	w.paused = false
}

func (w *Watcher) tick(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.paused {
		return
	}
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}
	if w.seen && info.ModTime().Equal(w.lastMod) && info.Size() == w.lastSize {
		return
	}
	changed := w.seen
	w.lastMod = info.ModTime()
	w.lastSize = info.Size()
	w.seen = true
	if changed {
		w.onChange(ctx)
	}
}
