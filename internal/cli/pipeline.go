package cli

import (
	"context"
	"fmt"

	"github.com/alnah/podcut/internal/config"
	"github.com/alnah/podcut/internal/podcast"
	"github.com/alnah/podcut/internal/publish"
)

// requireAPIKey returns the OpenAI key or ErrAPIKeyMissing.
func requireAPIKey(env *Env) (string, error) {
	key := env.Getenv(EnvOpenAIAPIKey)
	if key == "" {
		return "", fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}
	return key, nil
}

// resolveCodec finds ffmpeg (installing it if needed) and builds a codec on it.
func resolveCodec(ctx context.Context, env *Env) (Codec, error) {
	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)
	return env.CodecFactory.NewCodec(ffmpegPath)
}

// newProcessor builds the announcement pipeline: API key, ffmpeg, codec and
// synthesizer, in that order so the cheap checks fail first.
func newProcessor(ctx context.Context, env *Env, cfg config.Config, opts ...podcast.ProcessorOption) (*podcast.Processor, error) {
	apiKey, err := requireAPIKey(env)
	if err != nil {
		return nil, err
	}
	codec, err := resolveCodec(ctx, env)
	if err != nil {
		return nil, err
	}
	synth := env.SynthesizerFactory.NewSynthesizer(apiKey, codec, SynthesizerOptions{
		Voice: cfg.Voice,
		Model: cfg.TTSModel,
		Warn:  warnTo(env.Stderr),
	})
	return podcast.NewProcessor(codec, synth, opts...), nil
}

// newPublisher builds an S3 publisher from configuration, or fails with
// publish.ErrNotConfigured when no bucket is set.
func newPublisher(ctx context.Context, env *Env, cfg config.Config) (Publisher, error) {
	if !cfg.S3Enabled() {
		return nil, fmt.Errorf("%w (set it with: podcut config set %s <bucket>)",
			publish.ErrNotConfigured, config.KeyS3Bucket)
	}
	return env.PublisherFactory.NewPublisher(ctx, publish.Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Prefix:          cfg.S3Prefix,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     env.Getenv(publish.EnvAccessKeyID),
		SecretAccessKey: env.Getenv(publish.EnvSecretAccessKey),
	}, func(key string) {
		fmt.Fprintf(env.Stderr, "  Uploaded %s\n", key)
	})
}
