package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	stdout         *syncBuffer
	stderr         *syncBuffer
	ffmpegResolver *mockFFmpegResolver
	configLoader   *mockConfigLoader
	codec          *mockCodecFactory
	synth          *mockSynthesizerFactory
	downloader     *mockDownloaderFactory
	publisher      *mockPublisherFactory
	watcher        *mockWatcherFactory
}

func newTestMocks() *testMocks {
	return &testMocks{
		stdout:         &syncBuffer{},
		stderr:         &syncBuffer{},
		ffmpegResolver: &mockFFmpegResolver{},
		configLoader:   &mockConfigLoader{},
		codec:          &mockCodecFactory{},
		synth:          &mockSynthesizerFactory{},
		downloader:     &mockDownloaderFactory{},
		publisher:      &mockPublisherFactory{},
		watcher:        &mockWatcherFactory{},
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

type testEnvOptions struct {
	getenv func(string) string
	mocks  *testMocks
}

type testEnvOption func(*testEnvOptions)

// withTestGetenv replaces the default environment (an OpenAI key only).
func withTestGetenv(fn func(string) string) testEnvOption {
	return func(o *testEnvOptions) { o.getenv = fn }
}

// withMocks sets mocks prepared by the test.
func withMocks(m *testMocks) testEnvOption {
	return func(o *testEnvOptions) { o.mocks = m }
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *testMocks) {
	options := &testEnvOptions{
		getenv: defaultTestEnv,
		mocks:  newTestMocks(),
	}
	for _, opt := range opts {
		opt(options)
	}

	m := options.mocks
	env := &Env{
		Stdout:             m.stdout,
		Stderr:             m.stderr,
		Getenv:             options.getenv,
		FFmpegResolver:     m.ffmpegResolver,
		ConfigLoader:       m.configLoader,
		CodecFactory:       m.codec,
		SynthesizerFactory: m.synth,
		Prober:             fakeProber{},
		DownloaderFactory:  m.downloader,
		PublisherFactory:   m.publisher,
		WatcherFactory:     m.watcher,
	}
	return env, m
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestEnv returns an OpenAI API key and nothing else.
func defaultTestEnv(key string) string {
	if key == EnvOpenAIAPIKey {
		return "test-openai-key"
	}
	return ""
}

// fakeProber reports the duration fakeCodec would decode.
type fakeProber struct{}

func (fakeProber) Probe(ctx context.Context, path string) (time.Duration, error) {
	buf, err := fakeCodec{}.Decode(ctx, path)
	if err != nil {
		return 0, err
	}
	return buf.Duration(), nil
}

// writeFile creates dir/name holding content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// readFile returns the content of path, failing the test if it is missing.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// execute runs cmd with args under a background context.
func execute(cmd *cobra.Command, args ...string) error {
	return executeContext(context.Background(), cmd, args...)
}

// executeContext runs cmd with args under ctx, discarding cobra's own output.
func executeContext(ctx context.Context, cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(ctx)
}
