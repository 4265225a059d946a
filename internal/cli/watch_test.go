package cli

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/podcut/internal/podcast"
	"github.com/alnah/podcut/internal/watch"
)

// Notes:
// - mockWatcher hands its arrivals to the handler in order and returns, as
//   a real watcher does when its context ends.

func TestWatchCmd_ProcessesArrivals(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ep := writeFile(t, dir, "ep01.mp3", "hello")

	m := newTestMocks()
	m.watcher.Arrivals = []string{ep, filepath.Join(dir, "vanished.mp3")}
	env, _ := testEnv(withMocks(m))

	if err := execute(WatchCmd(env), dir, "--gain", "0"); err != nil {
		t.Fatalf("watch unexpected error: %v", err)
	}

	if got := readFile(t, filepath.Join(dir, "ep01", "ep01_part01.mp3")); got != "ep01 part01hello" {
		t.Errorf("chunk = %q, want %q", got, "ep01 part01hello")
	}
	stderr := m.stderr.String()
	for _, want := range []string{
		"New episode: ep01.mp3\n",
		"  ep01.mp3: 1 chunk in " + filepath.Join(dir, "ep01"),
		"New episode: vanished.mp3\n",
		"Warning: ",
		"Stopped watching\n",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr = %q, want it to contain %q", stderr, want)
		}
	}
}

func TestWatchCmd_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := writeFile(t, dir, "ep.mp3", "abc")
	errWatch := errors.New("too many open files")

	tests := []struct {
		name    string
		args    []string
		setup   func(*testMocks)
		getenv  func(string) string
		wantErr error
	}{
		{name: "missing folder", args: []string{filepath.Join(dir, "nope")}, wantErr: podcast.ErrNotFound},
		{name: "file instead of folder", args: []string{file}, wantErr: watch.ErrNotDirectory},
		{name: "invalid gain", args: []string{dir, "--gain", "100"}, wantErr: ErrInvalidGain},
		{name: "missing API key", args: []string{dir}, getenv: staticEnv(nil), wantErr: ErrAPIKeyMissing},
		{
			name:    "watcher failure",
			args:    []string{dir},
			setup:   func(m *testMocks) { m.watcher.RunErr = errWatch },
			wantErr: errWatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newTestMocks()
			if tt.setup != nil {
				tt.setup(m)
			}
			opts := []testEnvOption{withMocks(m)}
			if tt.getenv != nil {
				opts = append(opts, withTestGetenv(tt.getenv))
			}
			env, _ := testEnv(opts...)

			if err := execute(WatchCmd(env), tt.args...); !errors.Is(err, tt.wantErr) {
				t.Errorf("watch error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
