// Package watch runs a handler on audio files as they land in a folder.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay unchanged before it is handled.
const DefaultSettle = 2 * time.Second

// sourceSuffix selects the files the watcher reacts to.
const sourceSuffix = "mp3"

// ErrNotDirectory indicates the watched path is not a folder.
var ErrNotDirectory = errors.New("not a directory")

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) error

// Watcher reacts to new or rewritten mp3 files in one folder.
type Watcher struct {
	settle  time.Duration
	onError func(error)
	onSeen  func(path string)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period after the last write event.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// WithErrorHandler sets the callback for handler and watch errors.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		if fn != nil {
			w.onError = fn
		}
	}
}

// WithSeen sets a callback invoked when a settled file is about to be handled.
func WithSeen(fn func(path string)) Option {
	return func(w *Watcher) {
		if fn != nil {
			w.onSeen = fn
		}
	}
}

// New creates a Watcher.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		settle:  DefaultSettle,
		onError: func(error) {},
		onSeen:  func(string) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches dir (not its subfolders) until ctx ends. Each file whose name
// ends in "mp3" is handed to handle once it has seen no create or write event
// for the settle period. Hidden files are ignored. Files are handled one at a
// time; a handler error is reported and watching continues.
// Run returns nil when ctx ends.
func (w *Watcher) Run(ctx context.Context, dir string, handle Handler) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: %w", dir, ErrNotDirectory)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	pending := make(map[string]*settling)
	ready := make(chan settled)
	done := make(chan struct{})
	defer func() {
		close(done)
		for _, p := range pending {
			p.timer.Stop()
		}
	}()

	var gen uint64
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev.Name) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				if p, ok := pending[ev.Name]; ok {
					p.timer.Stop()
				}
				gen++
				s := settled{path: ev.Name, gen: gen}
				pending[ev.Name] = &settling{gen: gen, timer: time.AfterFunc(w.settle, func() {
					select {
					case ready <- s:
					case <-done:
					}
				})}
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				if p, ok := pending[ev.Name]; ok {
					p.timer.Stop()
					delete(pending, ev.Name)
				}
			}

		case s := <-ready:
			// A timer stopped too late still delivers; only the latest counts.
			if p, ok := pending[s.path]; !ok || p.gen != s.gen {
				continue
			}
			delete(pending, s.path)
			if !isFile(s.path) {
				continue
			}
			w.onSeen(s.path)
			if err := handle(ctx, s.path); err != nil && ctx.Err() == nil {
				w.onError(fmt.Errorf("%s: %w", filepath.Base(s.path), err))
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.onError(err)
		}
	}
}

// settling is a file waiting out its quiet period.
type settling struct {
	gen   uint64
	timer *time.Timer
}

// settled is delivered when a settling timer fires.
type settled struct {
	path string
	gen  uint64
}

func relevant(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, sourceSuffix) && !strings.HasPrefix(name, ".")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
