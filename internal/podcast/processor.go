// Package podcast prepends spoken announcements to podcast files, one file,
// a folder or a freshly split episode at a time.
package podcast

import (
	"context"
	"path/filepath"

	"github.com/alnah/podcut/internal/announce"
	"github.com/alnah/podcut/internal/audio"
)

// Synthesizer speaks text as audio in the same Format the codec decodes to.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*audio.Buffer, error)
}

// Compile-time interface compliance check.
var _ Synthesizer = (*announce.OpenAISynthesizer)(nil)

// Processor runs the announcement pipeline over files.
type Processor struct {
	codec    audio.Codec
	synth    Synthesizer
	splitter *audio.Splitter
	fs       dirFS

	onFailure  func(Failure)
	onProgress func(Progress)
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithFailureHandler sets a callback invoked for every file that fails in a batch.
func WithFailureHandler(fn func(Failure)) ProcessorOption {
	return func(p *Processor) { p.onFailure = fn }
}

// WithProgress sets a callback invoked before each file of a batch.
func WithProgress(fn func(Progress)) ProcessorOption {
	return func(p *Processor) { p.onProgress = fn }
}

// WithSplitter sets the splitter used by ProcessEpisode.
func WithSplitter(s *audio.Splitter) ProcessorOption {
	return func(p *Processor) { p.splitter = s }
}

// withDirFS sets the filesystem used for folder checks and listing.
func withDirFS(fs dirFS) ProcessorOption {
	return func(p *Processor) { p.fs = fs }
}

// NewProcessor creates a Processor reading and writing through codec and
// speaking through synth.
func NewProcessor(codec audio.Codec, synth Synthesizer, opts ...ProcessorOption) *Processor {
	p := &Processor{
		codec: codec,
		synth: synth,
		fs:    osDirFS{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.splitter == nil {
		p.splitter = audio.NewSplitter(codec)
	}
	return p
}

// ProcessFile returns the announcement for path's name followed by path's
// audio. A non-zero gainDB is applied to the original audio only.
// Decode and synthesis errors are returned as they are.
func (p *Processor) ProcessFile(ctx context.Context, path string, gainDB float64) (*audio.Buffer, error) {
	original, err := p.codec.Decode(ctx, path)
	if err != nil {
		return nil, err
	}
	speech, err := p.synth.Synthesize(ctx, announce.Text(filepath.Base(path)))
	if err != nil {
		return nil, err
	}
	if gainDB != 0 {
		original = original.Gain(gainDB)
	}
	return audio.Concat(speech, original)
}
