package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alnah/podcut/internal/ffmpeg"
)

// Compile-time interface implementation checks.
var (
	_ Codec        = (*FFmpegCodec)(nil)
	_ BytesDecoder = (*FFmpegCodec)(nil)
)

// Decoder reads an audio file into memory.
type Decoder interface {
	Decode(ctx context.Context, path string) (*Buffer, error)
}

// BytesDecoder decodes encoded audio held in memory, such as a TTS response.
type BytesDecoder interface {
	DecodeBytes(ctx context.Context, data []byte) (*Buffer, error)
}

// Encoder writes a buffer to path, choosing the container from its extension.
type Encoder interface {
	Encode(ctx context.Context, buf *Buffer, path string) error
}

// Codec decodes and encodes audio files.
type Codec interface {
	Decoder
	Encoder
}

// defaultMP3Quality is the libmp3lame VBR level (0 best, 9 smallest).
const defaultMP3Quality = 2

// maxStderrInError bounds how much ffmpeg diagnostic output ends up in errors.
const maxStderrInError = 512

// FFmpegCodec converts between files and Buffers by piping raw PCM through ffmpeg.
type FFmpegCodec struct {
	ffmpegPath string
	format     Format
	mp3Quality int

	// Injectable dependencies (defaults to OS implementations).
	runner pipeRunner
	fs     fileSystem
}

// CodecOption configures an FFmpegCodec.
type CodecOption func(*FFmpegCodec)

// WithFormat sets the PCM layout decoded buffers use.
func WithFormat(f Format) CodecOption {
	return func(c *FFmpegCodec) { c.format = f }
}

// WithMP3Quality sets the libmp3lame VBR quality level.
func WithMP3Quality(q int) CodecOption {
	return func(c *FFmpegCodec) { c.mp3Quality = q }
}

// WithPipeRunner sets the process runner.
func WithPipeRunner(r pipeRunner) CodecOption {
	return func(c *FFmpegCodec) { c.runner = r }
}

// WithFileSystem sets the filesystem used for existence checks and temp files.
func WithFileSystem(fs fileSystem) CodecOption {
	return func(c *FFmpegCodec) { c.fs = fs }
}

// NewFFmpegCodec creates a codec driving the ffmpeg binary at ffmpegPath.
func NewFFmpegCodec(ffmpegPath string, opts ...CodecOption) (*FFmpegCodec, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	c := &FFmpegCodec{
		ffmpegPath: ffmpegPath,
		format:     DefaultFormat,
		mp3Quality: defaultMP3Quality,
		runner:     osPipeRunner{},
		fs:         osFileSystem{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.format.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Format returns the PCM layout of decoded buffers.
func (c *FFmpegCodec) Format() Format { return c.format }

// Decode reads path into a Buffer at the codec's Format.
// A missing file yields ErrNotFound; anything ffmpeg cannot read yields ErrDecode.
func (c *FFmpegCodec) Decode(ctx context.Context, path string) (*Buffer, error) {
	info, err := c.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrDecode, path)
	}
	return c.decode(ctx, path, nil, path)
}

// DecodeBytes decodes encoded audio (any container ffmpeg can probe) from memory.
func (c *FFmpegCodec) DecodeBytes(ctx context.Context, data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}
	return c.decode(ctx, "pipe:0", data, "in-memory audio")
}

func (c *FFmpegCodec) decode(ctx context.Context, input string, stdin []byte, label string) (*Buffer, error) {
	args := decodeArgs(input, c.format)
	var in io.Reader
	if stdin != nil {
		in = bytes.NewReader(stdin)
	}
	out, stderr, err := c.runner.Run(ctx, c.ffmpegPath, args, in)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %v%s", ErrDecode, label, err, stderrDetail(stderr))
	}
	return pcmFromBytes(c.format, out), nil
}

// Encode writes buf to path. The audio is encoded into a temp file next to
// path and renamed over it, so path is either untouched or complete.
func (c *FFmpegCodec) Encode(ctx context.Context, buf *Buffer, path string) error {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)

	tmp, err := c.fs.CreateTemp(dir, ".podcut-*"+ext)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, path, err)
	}

	args := encodeArgs(buf.Format(), ext, c.mp3Quality, tmp)
	_, stderr, err := c.runner.Run(ctx, c.ffmpegPath, args, bytes.NewReader(buf.pcmBytes()))
	if err != nil {
		_ = c.fs.Remove(tmp) // best-effort cleanup; encode error takes precedence
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s: %v%s", ErrEncode, path, err, stderrDetail(stderr))
	}

	if err := c.fs.Rename(tmp, path); err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("%w: %s: %v", ErrEncode, path, err)
	}
	return nil
}

// decodeArgs converts input to raw interleaved s16le on stdout.
func decodeArgs(input string, f Format) []string {
	return []string{
		"-v", "error",
		"-i", input,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(f.Channels),
		"-ar", strconv.Itoa(f.SampleRate),
		"pipe:1",
	}
}

// encodeArgs reads raw s16le from stdin and writes output.
// Files without an extension are written as mp3.
func encodeArgs(f Format, ext string, mp3Quality int, output string) []string {
	args := []string{
		"-v", "error",
		"-y",
		"-f", "s16le",
		"-ar", strconv.Itoa(f.SampleRate),
		"-ac", strconv.Itoa(f.Channels),
		"-i", "pipe:0",
	}
	if ext == "" || strings.EqualFold(ext, ".mp3") {
		args = append(args, "-f", "mp3", "-c:a", "libmp3lame", "-q:a", strconv.Itoa(mp3Quality))
	}
	return append(args, output)
}

// stderrDetail formats the tail of ffmpeg's stderr for an error message.
func stderrDetail(stderr []byte) string {
	s := strings.TrimSpace(string(stderr))
	if s == "" {
		return ""
	}
	if len(s) > maxStderrInError {
		s = "..." + s[len(s)-maxStderrInError:]
	}
	return ": " + s
}
