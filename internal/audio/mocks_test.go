package audio_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/alnah/podcut/internal/audio"
)

// ---------------------------------------------------------------------------
// mockPipeRunner - records ffmpeg invocations
// ---------------------------------------------------------------------------

type pipeCall struct {
	name  string
	args  []string
	stdin []byte
}

type mockPipeRunner struct {
	mu    sync.Mutex
	calls []pipeCall
	// run decides the outcome of each call; nil means success with no output.
	run func(args []string, stdin []byte) (stdout, stderr []byte, err error)
}

func (m *mockPipeRunner) Run(_ context.Context, name string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	var in []byte
	if stdin != nil {
		var err error
		if in, err = io.ReadAll(stdin); err != nil {
			return nil, nil, err
		}
	}
	m.mu.Lock()
	m.calls = append(m.calls, pipeCall{name: name, args: args, stdin: in})
	m.mu.Unlock()
	if m.run == nil {
		return nil, nil, nil
	}
	return m.run(args, in)
}

func (m *mockPipeRunner) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockPipeRunner) lastCall() pipeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// writeOutput mimics a successful ffmpeg encode by writing content to the
// output path, which is always the last argument.
func writeOutput(content string) func([]string, []byte) ([]byte, []byte, error) {
	return func(args []string, _ []byte) ([]byte, []byte, error) {
		return nil, nil, os.WriteFile(args[len(args)-1], []byte(content), 0600)
	}
}

// ---------------------------------------------------------------------------
// mockCodec - in-memory decode/encode
// ---------------------------------------------------------------------------

type encoded struct {
	path     string
	duration time.Duration
}

type mockCodec struct {
	mu        sync.Mutex
	sources   map[string]*audio.Buffer
	decodeErr map[string]error
	encodeErr error
	failAt    int // 1-based Encode call that fails with encodeErr; 0 means every call
	encodes   []encoded
	decodes   []string
}

func newMockCodec() *mockCodec {
	return &mockCodec{
		sources:   make(map[string]*audio.Buffer),
		decodeErr: make(map[string]error),
	}
}

func (m *mockCodec) Decode(_ context.Context, path string) (*audio.Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decodes = append(m.decodes, path)
	if err, ok := m.decodeErr[path]; ok {
		return nil, err
	}
	b, ok := m.sources[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", audio.ErrNotFound, path)
	}
	return b, nil
}

func (m *mockCodec) Encode(_ context.Context, buf *audio.Buffer, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := len(m.encodes) + 1
	if m.encodeErr != nil && (m.failAt == 0 || m.failAt == call) {
		return m.encodeErr
	}
	m.encodes = append(m.encodes, encoded{path: path, duration: buf.Duration()})
	return nil
}

// ---------------------------------------------------------------------------
// mockProber - fixed durations
// ---------------------------------------------------------------------------

type mockProber map[string]time.Duration

func (m mockProber) Probe(_ context.Context, path string) (time.Duration, error) {
	d, ok := m[path]
	if !ok {
		return 0, fmt.Errorf("%w: %s", audio.ErrNotFound, path)
	}
	return d, nil
}

// ---------------------------------------------------------------------------
// failingFS - filesystem whose MkdirAll always fails
// ---------------------------------------------------------------------------

type failingFS struct {
	audio.OSFileSystem
}

func (failingFS) MkdirAll(string, os.FileMode) error { return errors.New("read-only filesystem") }
