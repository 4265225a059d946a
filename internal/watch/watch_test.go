package watch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alnah/podcut/internal/watch"
)

// Notes:
// - Uses real fsnotify on t.TempDir(); the settle period is shortened to
//   keep tests fast, and waits are bounded by generous timeouts.
// - The handler records calls; assertions run after Run returns.

const (
	testSettle = 50 * time.Millisecond
	waitFor    = 5 * time.Second
)

type recorder struct {
	mu     sync.Mutex
	paths  []string
	errs   []error
	called chan string
}

func newRecorder() *recorder {
	return &recorder{called: make(chan string, 16)}
}

func (r *recorder) handle(err error) watch.Handler {
	return func(_ context.Context, path string) error {
		r.mu.Lock()
		r.paths = append(r.paths, path)
		r.mu.Unlock()
		r.called <- path
		return err
	}
}

func (r *recorder) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// start runs w on dir in the background and returns a stop function that
// cancels it and waits for Run to return.
func start(t *testing.T, w *watch.Watcher, dir string, h watch.Handler) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx, dir, h) }()
	// Give fsnotify a moment to register the watch.
	time.Sleep(100 * time.Millisecond)
	return func() error {
		cancel()
		select {
		case err := <-errc:
			return err
		case <-time.After(waitFor):
			t.Fatal("Run did not return after cancel")
			return nil
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func expectCall(t *testing.T, r *recorder) string {
	t.Helper()
	select {
	case p := <-r.called:
		return p
	case <-time.After(waitFor):
		t.Fatal("handler was not called")
		return ""
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestWatcher_HandlesNewMP3(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := newRecorder()
	stop := start(t, watch.New(watch.WithSettle(testSettle)), dir, r.handle(nil))

	ep := filepath.Join(dir, "episode.mp3")
	writeFile(t, ep, "audio")

	if got := expectCall(t, r); got != ep {
		t.Errorf("handled %q, want %q", got, ep)
	}
	if err := stop(); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := newRecorder()
	stop := start(t, watch.New(watch.WithSettle(200*time.Millisecond)), dir, r.handle(nil))

	ep := filepath.Join(dir, "long.mp3")
	f, err := os.Create(ep)
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		if _, err := f.WriteString("chunk"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	_ = f.Close()

	expectCall(t, r)
	time.Sleep(400 * time.Millisecond)
	_ = stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) != 1 {
		t.Errorf("handler called %d times, want 1", len(r.paths))
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := newRecorder()
	stop := start(t, watch.New(watch.WithSettle(testSettle)), dir, r.handle(nil))

	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, ".podcut-tmp.mp3"), "x")
	if err := os.Mkdir(filepath.Join(dir, "folder.mp3"), 0750); err != nil {
		t.Fatal(err)
	}
	ep := filepath.Join(dir, "real.mp3")
	writeFile(t, ep, "x")

	if got := expectCall(t, r); got != ep {
		t.Errorf("handled %q, want %q", got, ep)
	}
	time.Sleep(200 * time.Millisecond)
	_ = stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) != 1 {
		t.Errorf("handled %v, want only %q", r.paths, ep)
	}
}

func TestWatcher_ReportsHandlerErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := newRecorder()
	boom := errors.New("boom")
	w := watch.New(watch.WithSettle(testSettle), watch.WithErrorHandler(r.onError))
	stop := start(t, w, dir, r.handle(boom))

	writeFile(t, filepath.Join(dir, "a.mp3"), "x")
	expectCall(t, r)
	writeFile(t, filepath.Join(dir, "b.mp3"), "x")
	expectCall(t, r)
	_ = stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errs) != 2 {
		t.Fatalf("errors = %v, want 2", r.errs)
	}
	if !errors.Is(r.errs[0], boom) {
		t.Errorf("error = %v, want wrapped boom", r.errs[0])
	}
}

func TestWatcher_RemovedBeforeSettle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := newRecorder()
	stop := start(t, watch.New(watch.WithSettle(300*time.Millisecond)), dir, r.handle(nil))

	ep := filepath.Join(dir, "gone.mp3")
	writeFile(t, ep, "x")
	if err := os.Remove(ep); err != nil {
		t.Fatal(err)
	}
	time.Sleep(600 * time.Millisecond)
	_ = stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) != 0 {
		t.Errorf("handled %v, want nothing", r.paths)
	}
}

func TestWatcher_Run_InvalidDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file.mp3")
	writeFile(t, file, "x")

	w := watch.New()
	noop := func(context.Context, string) error { return nil }

	if err := w.Run(context.Background(), file, noop); !errors.Is(err, watch.ErrNotDirectory) {
		t.Errorf("Run(file) = %v, want ErrNotDirectory", err)
	}
	if err := w.Run(context.Background(), filepath.Join(dir, "missing"), noop); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Run(missing) = %v, want os.ErrNotExist", err)
	}
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"/in/show.mp3", true},
		{"/in/showmp3", true},
		{"/in/show.MP3", false},
		{"/in/show.wav", false},
		{"/in/.hidden.mp3", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := watch.Relevant(tt.path); got != tt.want {
				t.Errorf("Relevant(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
