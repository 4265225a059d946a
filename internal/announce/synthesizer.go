package announce

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/podcut/internal/apierr"
	"github.com/alnah/podcut/internal/audio"
)

// Speech defaults.
const (
	DefaultModel = string(openai.TTSModel1)
	DefaultVoice = "alloy"

	// maxInputChars is the speech endpoint's input limit.
	maxInputChars = 4096
)

// Retry defaults for transient speech API failures.
const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 20 * time.Second
)

// Voices lists the voice names the speech endpoint accepts.
var Voices = []string{
	"alloy", "ash", "ballad", "coral", "echo", "fable",
	"nova", "onyx", "sage", "shimmer", "verse",
}

// IsVoice reports whether v is a known voice.
func IsVoice(v string) bool { return slices.Contains(Voices, v) }

// speechClient is the subset of *openai.Client used here.
type speechClient interface {
	CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Compile-time interface compliance check.
var _ speechClient = (*openai.Client)(nil)

// OpenAISynthesizer speaks text through OpenAI's speech endpoint and decodes
// the returned mp3 into a Buffer.
type OpenAISynthesizer struct {
	client  speechClient
	decoder audio.BytesDecoder
	model   string
	voice   string
	speed   float64
	retry   apierr.RetryConfig
	warn    func(msg string)
}

// SynthesizerOption configures an OpenAISynthesizer.
type SynthesizerOption func(*OpenAISynthesizer)

// WithVoice sets the voice. Empty keeps the default.
func WithVoice(v string) SynthesizerOption {
	return func(s *OpenAISynthesizer) {
		if v != "" {
			s.voice = v
		}
	}
}

// WithModel sets the speech model. Empty keeps the default.
func WithModel(m string) SynthesizerOption {
	return func(s *OpenAISynthesizer) {
		if m != "" {
			s.model = m
		}
	}
}

// WithSpeed sets the speaking rate (0.25 to 4.0; 0 uses the API default).
func WithSpeed(speed float64) SynthesizerOption {
	return func(s *OpenAISynthesizer) { s.speed = speed }
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) SynthesizerOption {
	return func(s *OpenAISynthesizer) {
		if n >= 0 {
			s.retry.MaxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) SynthesizerOption {
	return func(s *OpenAISynthesizer) {
		if base > 0 {
			s.retry.BaseDelay = base
		}
		if max > 0 {
			s.retry.MaxDelay = max
		}
	}
}

// WithWarnFunc sets where retry warnings go. Nil silences them.
func WithWarnFunc(fn func(msg string)) SynthesizerOption {
	return func(s *OpenAISynthesizer) { s.warn = fn }
}

// NewOpenAISynthesizer creates a synthesizer using client for speech and
// decoder for the mp3 it returns.
func NewOpenAISynthesizer(client *openai.Client, decoder audio.BytesDecoder, opts ...SynthesizerOption) *OpenAISynthesizer {
	return newSynthesizer(client, decoder, opts...)
}

func newSynthesizer(client speechClient, decoder audio.BytesDecoder, opts ...SynthesizerOption) *OpenAISynthesizer {
	s := &OpenAISynthesizer{
		client:  client,
		decoder: decoder,
		model:   DefaultModel,
		voice:   DefaultVoice,
		retry: apierr.RetryConfig{
			MaxRetries: defaultMaxRetries,
			BaseDelay:  defaultBaseDelay,
			MaxDelay:   defaultMaxDelay,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Voice returns the configured voice.
func (s *OpenAISynthesizer) Voice() string { return s.voice }

// Synthesize speaks text and returns it as decoded audio. Rate limits,
// timeouts and server errors are retried; every failure wraps ErrSynthesis.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (*audio.Buffer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, ErrEmptyText)
	}
	if n := utf8.RuneCountInString(text); n > maxInputChars {
		return nil, fmt.Errorf("%w: %w: %d characters, limit %d", ErrSynthesis, ErrTextTooLong, n, maxInputChars)
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          s.speed,
	}

	cfg := s.retry
	if s.warn != nil {
		cfg.OnRetry = func(retry int, err error, wait time.Duration) {
			s.warn(fmt.Sprintf("Warning: speech request failed (%v), retry %d/%d in %s",
				err, retry, cfg.MaxRetries, wait))
		}
	}

	data, err := apierr.RetryWithBackoff(ctx, cfg, func() ([]byte, error) {
		return s.fetch(ctx, req)
	}, apierr.IsRetryable)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %q: %w", ErrSynthesis, text, err)
	}

	buf, err := s.decoder.DecodeBytes(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrSynthesis, text, err)
	}
	return buf, nil
}

func (s *OpenAISynthesizer) fetch(ctx context.Context, req openai.CreateSpeechRequest) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, apierr.Classify(err)
	}
	defer func() { _ = resp.Close() }()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	return data, nil
}
