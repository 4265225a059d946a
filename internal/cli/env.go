package cli

import (
	"context"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/podcut/internal/announce"
	"github.com/alnah/podcut/internal/audio"
	"github.com/alnah/podcut/internal/config"
	"github.com/alnah/podcut/internal/download"
	"github.com/alnah/podcut/internal/ffmpeg"
	"github.com/alnah/podcut/internal/podcast"
	"github.com/alnah/podcut/internal/publish"
	"github.com/alnah/podcut/internal/watch"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Factories for domain objects
	FFmpegResolver     FFmpegResolver
	ConfigLoader       ConfigLoader
	CodecFactory       CodecFactory
	SynthesizerFactory SynthesizerFactory
	Prober             audio.Prober
	DownloaderFactory  DownloaderFactory
	PublisherFactory   PublisherFactory
	WatcherFactory     WatcherFactory
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	Resolve(ctx context.Context) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string)
}

// ConfigLoader loads and validates configuration.
type ConfigLoader interface {
	Load(ctx context.Context) (config.Config, error)
}

// Codec reads and writes audio files and decodes speech responses.
type Codec interface {
	audio.Codec
	audio.BytesDecoder
}

// CodecFactory creates codecs driving a given ffmpeg binary.
type CodecFactory interface {
	NewCodec(ffmpegPath string) (Codec, error)
}

// SynthesizerOptions carries the configured voice settings.
type SynthesizerOptions struct {
	Voice string
	Model string
	Warn  func(msg string)
}

// SynthesizerFactory creates announcement synthesizers.
type SynthesizerFactory interface {
	NewSynthesizer(apiKey string, decoder audio.BytesDecoder, opts SynthesizerOptions) podcast.Synthesizer
}

// Downloader scrapes and downloads mp3 files.
type Downloader interface {
	MP3Links(ctx context.Context, pageURL string) ([]string, error)
	CollectArchive(ctx context.Context, archiveURL, match string) ([]string, error)
	Download(ctx context.Context, urls []string, dir string) (download.Report, error)
}

// DownloaderFactory creates downloaders.
type DownloaderFactory interface {
	NewDownloader(progress func(download.Result)) Downloader
}

// Publisher uploads a folder of episode chunks.
type Publisher interface {
	PublishDir(ctx context.Context, dir, sub string) ([]string, error)
}

// PublisherFactory creates publishers for a bucket.
type PublisherFactory interface {
	NewPublisher(ctx context.Context, cfg publish.Config, progress func(key string)) (Publisher, error)
}

// FolderWatcher runs a handler on files arriving in a folder.
type FolderWatcher interface {
	Run(ctx context.Context, dir string, handle watch.Handler) error
}

// WatcherFactory creates folder watchers.
type WatcherFactory interface {
	NewWatcher(onSeen func(path string), onError func(error)) FolderWatcher
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) { e.FFmpegResolver = r }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.ConfigLoader = l }
}

// WithCodecFactory sets the codec factory.
func WithCodecFactory(f CodecFactory) EnvOption {
	return func(e *Env) { e.CodecFactory = f }
}

// WithSynthesizerFactory sets the synthesizer factory.
func WithSynthesizerFactory(f SynthesizerFactory) EnvOption {
	return func(e *Env) { e.SynthesizerFactory = f }
}

// WithProber sets the duration prober used by split --dry-run.
func WithProber(p audio.Prober) EnvOption {
	return func(e *Env) { e.Prober = p }
}

// WithDownloaderFactory sets the downloader factory.
func WithDownloaderFactory(f DownloaderFactory) EnvOption {
	return func(e *Env) { e.DownloaderFactory = f }
}

// WithPublisherFactory sets the publisher factory.
func WithPublisherFactory(f PublisherFactory) EnvOption {
	return func(e *Env) { e.PublisherFactory = f }
}

// WithWatcherFactory sets the watcher factory.
func WithWatcherFactory(f WatcherFactory) EnvOption {
	return func(e *Env) { e.WatcherFactory = f }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		FFmpegResolver:     &defaultFFmpegResolver{},
		ConfigLoader:       &defaultConfigLoader{},
		CodecFactory:       &defaultCodecFactory{},
		SynthesizerFactory: &defaultSynthesizerFactory{},
		Prober:             audio.MetaProber{},
		DownloaderFactory:  &defaultDownloaderFactory{},
		PublisherFactory:   &defaultPublisherFactory{},
		WatcherFactory:     &defaultWatcherFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	return ffmpeg.Resolve(ctx)
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	ffmpeg.CheckVersion(ctx, ffmpegPath)
}

type defaultConfigLoader struct{}

func (defaultConfigLoader) Load(ctx context.Context) (config.Config, error) {
	return config.Load(ctx)
}

type defaultCodecFactory struct{}

func (defaultCodecFactory) NewCodec(ffmpegPath string) (Codec, error) {
	return audio.NewFFmpegCodec(ffmpegPath)
}

type defaultSynthesizerFactory struct{}

func (defaultSynthesizerFactory) NewSynthesizer(apiKey string, decoder audio.BytesDecoder, opts SynthesizerOptions) podcast.Synthesizer {
	client := openai.NewClient(apiKey)
	return announce.NewOpenAISynthesizer(client, decoder,
		announce.WithVoice(opts.Voice),
		announce.WithModel(opts.Model),
		announce.WithWarnFunc(opts.Warn),
	)
}

type defaultDownloaderFactory struct{}

func (defaultDownloaderFactory) NewDownloader(progress func(download.Result)) Downloader {
	return download.NewClient(download.WithProgress(progress))
}

type defaultPublisherFactory struct{}

func (defaultPublisherFactory) NewPublisher(ctx context.Context, cfg publish.Config, progress func(key string)) (Publisher, error) {
	return publish.NewS3Publisher(ctx, cfg, publish.WithProgress(progress))
}

type defaultWatcherFactory struct{}

func (defaultWatcherFactory) NewWatcher(onSeen func(string), onError func(error)) FolderWatcher {
	return watch.New(watch.WithSeen(onSeen), watch.WithErrorHandler(onError))
}

// Compile-time interface verification.
var (
	_ FFmpegResolver     = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ CodecFactory       = (*defaultCodecFactory)(nil)
	_ SynthesizerFactory = (*defaultSynthesizerFactory)(nil)
	_ DownloaderFactory  = (*defaultDownloaderFactory)(nil)
	_ PublisherFactory   = (*defaultPublisherFactory)(nil)
	_ WatcherFactory     = (*defaultWatcherFactory)(nil)
	_ Downloader         = (*download.Client)(nil)
	_ Publisher          = (*publish.S3Publisher)(nil)
	_ FolderWatcher      = (*watch.Watcher)(nil)
)
