package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alnah/podcut/internal/audio"
	"github.com/alnah/podcut/internal/config"
	"github.com/alnah/podcut/internal/download"
	"github.com/alnah/podcut/internal/podcast"
	"github.com/alnah/podcut/internal/publish"
	"github.com/alnah/podcut/internal/watch"
)

// byteRate is the sample rate of fake audio: one sample per file byte, ten per second.
var byteRate = audio.Format{SampleRate: 10, Channels: 1}

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc func(ctx context.Context) (string, error)

	mu           sync.Mutex
	resolveCalls int
}

func (m *mockFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) CheckVersion(context.Context, string) {}

func (m *mockFFmpegResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func(ctx context.Context) (config.Config, error)
}

func (m *mockConfigLoader) Load(ctx context.Context) (config.Config, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return config.Config{}, nil
}

// staticConfig returns a ConfigLoader that always yields cfg.
func staticConfig(cfg config.Config) *mockConfigLoader {
	return &mockConfigLoader{LoadFunc: func(context.Context) (config.Config, error) { return cfg, nil }}
}

// ---------------------------------------------------------------------------
// Mock CodecFactory + fakeCodec (files hold one byte per sample)
// ---------------------------------------------------------------------------

type mockCodecFactory struct {
	NewCodecErr error

	mu    sync.Mutex
	paths []string
	codec *fakeCodec
}

func (m *mockCodecFactory) NewCodec(ffmpegPath string) (Codec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, ffmpegPath)
	if m.NewCodecErr != nil {
		return nil, m.NewCodecErr
	}
	if m.codec == nil {
		m.codec = &fakeCodec{}
	}
	return m.codec, nil
}

// fakeCodec decodes a file's bytes as samples and encodes samples back as
// bytes. A file whose content is "corrupt" fails to decode.
type fakeCodec struct{}

func (fakeCodec) Decode(_ context.Context, path string) (*audio.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", audio.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", audio.ErrDecode, err)
	}
	return bytesToBuffer(data, path)
}

func (fakeCodec) DecodeBytes(_ context.Context, data []byte) (*audio.Buffer, error) {
	return bytesToBuffer(data, "in-memory audio")
}

func (fakeCodec) Encode(_ context.Context, buf *audio.Buffer, path string) error {
	out := make([]byte, len(buf.Samples()))
	for i, s := range buf.Samples() {
		out[i] = byte(s)
	}
	return os.WriteFile(path, out, 0600)
}

func bytesToBuffer(data []byte, label string) (*audio.Buffer, error) {
	if string(data) == "corrupt" {
		return nil, fmt.Errorf("%w: %s: invalid data", audio.ErrDecode, label)
	}
	samples := make([]int16, len(data))
	for i, b := range data {
		samples[i] = int16(b)
	}
	return audio.NewBuffer(byteRate, samples)
}

// ---------------------------------------------------------------------------
// Mock SynthesizerFactory + fakeSynth (speaks text as its own bytes)
// ---------------------------------------------------------------------------

var errSpeech = errors.New("speech API unavailable")

type mockSynthesizerFactory struct {
	Fail map[string]bool // texts that fail to synthesize

	mu      sync.Mutex
	apiKeys []string
	opts    []SynthesizerOptions
}

func (m *mockSynthesizerFactory) NewSynthesizer(apiKey string, decoder audio.BytesDecoder, opts SynthesizerOptions) podcast.Synthesizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiKeys = append(m.apiKeys, apiKey)
	m.opts = append(m.opts, opts)
	return &fakeSynth{decoder: decoder, fail: m.Fail}
}

func (m *mockSynthesizerFactory) Calls() ([]string, []SynthesizerOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.apiKeys...), append([]SynthesizerOptions(nil), m.opts...)
}

type fakeSynth struct {
	decoder audio.BytesDecoder
	fail    map[string]bool
}

func (s *fakeSynth) Synthesize(ctx context.Context, text string) (*audio.Buffer, error) {
	if s.fail[text] {
		return nil, errSpeech
	}
	return s.decoder.DecodeBytes(ctx, []byte(text))
}

// ---------------------------------------------------------------------------
// Mock DownloaderFactory + Downloader
// ---------------------------------------------------------------------------

type mockDownloaderFactory struct {
	downloader *mockDownloader
}

func (m *mockDownloaderFactory) NewDownloader(progress func(download.Result)) Downloader {
	if m.downloader == nil {
		m.downloader = &mockDownloader{}
	}
	m.downloader.progress = progress
	return m.downloader
}

type mockDownloader struct {
	Links      []string
	LinksErr   error
	FailURLs   map[string]bool
	progress   func(download.Result)
	mu         sync.Mutex
	archiveArg []string // url, match
	downloaded []string
	dir        string
}

func (m *mockDownloader) MP3Links(context.Context, string) ([]string, error) {
	return m.Links, m.LinksErr
}

func (m *mockDownloader) CollectArchive(_ context.Context, archiveURL, match string) ([]string, error) {
	m.mu.Lock()
	m.archiveArg = []string{archiveURL, match}
	m.mu.Unlock()
	return filterLinks(m.Links, match), m.LinksErr
}

func (m *mockDownloader) Download(_ context.Context, urls []string, dir string) (download.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dir = dir
	var r download.Report
	for _, u := range urls {
		res := download.Result{URL: u}
		if m.FailURLs[u] {
			res.Err = fmt.Errorf("%w: %s: HTTP 404", download.ErrDownloadFailed, u)
			r.Failures = append(r.Failures, res)
		} else {
			res.Path = filepath.Join(dir, filepath.Base(u))
			r.Saved = append(r.Saved, res.Path)
			m.downloaded = append(m.downloaded, u)
		}
		if m.progress != nil {
			m.progress(res)
		}
	}
	return r, nil
}

// ---------------------------------------------------------------------------
// Mock PublisherFactory + Publisher
// ---------------------------------------------------------------------------

type mockPublisherFactory struct {
	NewErr     error
	PublishErr error

	mu   sync.Mutex
	cfgs []publish.Config
	dirs []string
	subs []string
}

func (m *mockPublisherFactory) NewPublisher(_ context.Context, cfg publish.Config, progress func(string)) (Publisher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfgs = append(m.cfgs, cfg)
	if m.NewErr != nil {
		return nil, m.NewErr
	}
	return &mockPublisher{factory: m, progress: progress}, nil
}

type mockPublisher struct {
	factory  *mockPublisherFactory
	progress func(string)
}

func (p *mockPublisher) PublishDir(_ context.Context, dir, sub string) ([]string, error) {
	m := p.factory
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, dir)
	m.subs = append(m.subs, sub)
	if m.PublishErr != nil {
		return nil, m.PublishErr
	}
	key := sub + "/chunk.mp3"
	if p.progress != nil {
		p.progress(key)
	}
	return []string{"https://bucket.example/" + key}, nil
}

// ---------------------------------------------------------------------------
// Mock WatcherFactory + FolderWatcher
// ---------------------------------------------------------------------------

// mockWatcherFactory builds watchers that hand each of Arrivals to the
// handler once, in order, then return as if the context had ended.
type mockWatcherFactory struct {
	Arrivals []string
	RunErr   error
}

func (m *mockWatcherFactory) NewWatcher(onSeen func(string), onError func(error)) FolderWatcher {
	return &mockWatcher{arrivals: m.Arrivals, runErr: m.RunErr, onSeen: onSeen, onError: onError}
}

type mockWatcher struct {
	arrivals []string
	runErr   error
	onSeen   func(string)
	onError  func(error)
}

func (w *mockWatcher) Run(ctx context.Context, _ string, handle watch.Handler) error {
	if w.runErr != nil {
		return w.runErr
	}
	for _, p := range w.arrivals {
		w.onSeen(p)
		if err := handle(ctx, p); err != nil {
			w.onError(err)
		}
	}
	return nil
}
