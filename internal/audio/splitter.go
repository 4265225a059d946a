package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/alnah/podcut/internal/format"
)

// outDirPerm is used when the splitter creates its output folder.
const outDirPerm = 0750

// Chunk is one fixed-length segment written by the Splitter.
type Chunk struct {
	Source string        // Stem of the source file.
	Number int           // One-based position within the source.
	Start  time.Duration // Offset of the first sample in the source.
	End    time.Duration // Offset just past the last sample.
	Path   string        // Where the chunk is (or would be) written.
}

// Duration returns the length of the chunk.
func (c Chunk) Duration() time.Duration {
	return c.End - c.Start
}

// String returns a human-readable representation for progress output.
func (c Chunk) String() string {
	return fmt.Sprintf("%s part %02d: %s-%s",
		c.Source, c.Number, format.Duration(c.Start), format.Duration(c.End))
}

// ChunkName returns the file name of chunk number n of stem: "{stem}_part{NN}{ext}".
// Numbers past 99 simply widen.
func ChunkName(stem string, n int, ext string) string {
	return fmt.Sprintf("%s_part%02d%s", stem, n, ext)
}

// Span is a half-open time range within a source.
type Span struct {
	Start time.Duration
	End   time.Duration
}

// PlanChunks cuts total into consecutive spans of length, the last one
// shorter when total is not a multiple of length. An exact multiple never
// yields an empty trailing span. A zero total yields one empty span so that
// every source produces a file.
func PlanChunks(total, length time.Duration) ([]Span, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidChunkLength, length)
	}
	if total <= 0 {
		return []Span{{}}, nil
	}

	n := total / length
	if total%length != 0 {
		n++
	}
	spans := make([]Span, 0, n)
	for i := time.Duration(0); i < n; i++ {
		start := i * length
		spans = append(spans, Span{Start: start, End: min(start+length, total)})
	}
	return spans, nil
}

// Splitter cuts sources into fixed-length chunk files.
type Splitter struct {
	codec    Codec
	prober   Prober
	fs       fileSystem
	progress func(Chunk)
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithSplitProgress sets a callback invoked after each chunk is written.
func WithSplitProgress(fn func(Chunk)) SplitterOption {
	return func(s *Splitter) { s.progress = fn }
}

// WithProber sets the duration source used by Plan.
func WithProber(p Prober) SplitterOption {
	return func(s *Splitter) { s.prober = p }
}

// WithSplitterFileSystem sets the filesystem used to create the output folder.
func WithSplitterFileSystem(fs fileSystem) SplitterOption {
	return func(s *Splitter) { s.fs = fs }
}

// NewSplitter creates a Splitter that decodes and encodes through codec.
func NewSplitter(codec Codec, opts ...SplitterOption) *Splitter {
	s := &Splitter{
		codec:  codec,
		prober: MetaProber{},
		fs:     osFileSystem{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split writes every source as chunks of length into outDir, creating outDir
// with its parents. Sources are processed in order. The first decode or
// encode error stops the run; chunks already written stay on disk and are
// returned alongside the error.
func (s *Splitter) Split(ctx context.Context, sources []string, outDir string, length time.Duration) ([]Chunk, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidChunkLength, length)
	}

	var written []Chunk
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		buf, err := s.codec.Decode(ctx, src)
		if err != nil {
			return written, err
		}
		if err := s.fs.MkdirAll(outDir, outDirPerm); err != nil {
			return written, fmt.Errorf("%w: create %s: %v", ErrEncode, outDir, err)
		}

		chunks, err := planFor(NewEpisodeFile(src), outDir, buf.Duration(), length)
		if err != nil {
			return written, err
		}
		for _, c := range chunks {
			if err := s.codec.Encode(ctx, buf.Slice(c.Start, c.End), c.Path); err != nil {
				return written, err
			}
			written = append(written, c)
			if s.progress != nil {
				s.progress(c)
			}
		}
	}
	return written, nil
}

// Plan returns the chunks Split would write, reading durations from file
// headers instead of decoding. Nothing is written.
func (s *Splitter) Plan(ctx context.Context, sources []string, outDir string, length time.Duration) ([]Chunk, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidChunkLength, length)
	}

	var planned []Chunk
	for _, src := range sources {
		total, err := s.prober.Probe(ctx, src)
		if err != nil {
			return planned, err
		}
		chunks, err := planFor(NewEpisodeFile(src), outDir, total, length)
		if err != nil {
			return planned, err
		}
		planned = append(planned, chunks...)
	}
	return planned, nil
}

func planFor(ep EpisodeFile, outDir string, total, length time.Duration) ([]Chunk, error) {
	spans, err := PlanChunks(total, length)
	if err != nil {
		return nil, err
	}
	chunks := make([]Chunk, len(spans))
	for i, sp := range spans {
		chunks[i] = Chunk{
			Source: ep.Stem,
			Number: i + 1,
			Start:  sp.Start,
			End:    sp.End,
			Path:   filepath.Join(outDir, ChunkName(ep.Stem, i+1, ep.Ext)),
		}
	}
	return chunks, nil
}
