package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Format describes the PCM layout every Buffer is decoded into.
// All buffers handled in one run share a Format so they can be concatenated.
type Format struct {
	SampleRate int // Frames per second.
	Channels   int // Interleaved channels per frame.
}

// DefaultFormat is CD-rate stereo, which ffmpeg resamples everything to.
var DefaultFormat = Format{SampleRate: 44100, Channels: 2}

// Validate reports whether f can describe audio.
func (f Format) Validate() error {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidFormat, f.SampleRate, f.Channels)
	}
	return nil
}

// String returns e.g. "44100 Hz stereo".
func (f Format) String() string {
	switch f.Channels {
	case 1:
		return fmt.Sprintf("%d Hz mono", f.SampleRate)
	case 2:
		return fmt.Sprintf("%d Hz stereo", f.SampleRate)
	default:
		return fmt.Sprintf("%d Hz %d-channel", f.SampleRate, f.Channels)
	}
}

// Buffer is decoded audio held in memory as interleaved signed 16-bit samples.
// Buffers are immutable: Slice, Append and Gain return new buffers and never
// modify their receiver, so a Buffer may be handed between stages freely.
type Buffer struct {
	format  Format
	samples []int16
}

// NewBuffer wraps interleaved samples. len(samples) must be a whole number of frames.
func NewBuffer(f Format, samples []int16) (*Buffer, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(samples)%f.Channels != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrInvalidFormat, len(samples), f.Channels)
	}
	return &Buffer{format: f, samples: samples}, nil
}

// Silence returns d of digital silence.
func Silence(f Format, d time.Duration) *Buffer {
	frames := framesIn(f, d)
	return &Buffer{format: f, samples: make([]int16, frames*f.Channels)}
}

// Format returns the buffer's PCM layout.
func (b *Buffer) Format() Format { return b.format }

// Frames returns the number of sample frames.
func (b *Buffer) Frames() int { return len(b.samples) / b.format.Channels }

// Samples returns the interleaved samples. Callers must not modify them.
func (b *Buffer) Samples() []int16 { return b.samples }

// Duration returns the buffer length, truncated to the nanosecond.
func (b *Buffer) Duration() time.Duration {
	frames := time.Duration(b.Frames())
	rate := time.Duration(b.format.SampleRate)
	return frames/rate*time.Second + frames%rate*time.Second/rate
}

// Milliseconds returns the buffer length in whole milliseconds.
func (b *Buffer) Milliseconds() int64 {
	return b.Duration().Milliseconds()
}

// Slice returns the audio between start and end. Both bounds are clamped to
// [0, Duration()]; an inverted range yields an empty buffer.
func (b *Buffer) Slice(start, end time.Duration) *Buffer {
	from := b.frameAt(start)
	to := b.frameAt(end)
	if to < from {
		to = from
	}
	ch := b.format.Channels
	return &Buffer{format: b.format, samples: b.samples[from*ch : to*ch : to*ch]}
}

// Append returns b followed by other. Both must share a Format.
func (b *Buffer) Append(other *Buffer) (*Buffer, error) {
	if b.format != other.format {
		return nil, fmt.Errorf("%w: %s vs %s", ErrFormatMismatch, b.format, other.format)
	}
	samples := make([]int16, 0, len(b.samples)+len(other.samples))
	samples = append(samples, b.samples...)
	samples = append(samples, other.samples...)
	return &Buffer{format: b.format, samples: samples}, nil
}

// Concat joins buffers in order.
func Concat(first *Buffer, rest ...*Buffer) (*Buffer, error) {
	out := first
	for _, next := range rest {
		var err error
		if out, err = out.Append(next); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Gain returns a copy scaled by db decibels, clipping at full scale.
// A zero gain returns b itself.
func (b *Buffer) Gain(db float64) *Buffer {
	if db == 0 {
		return b
	}
	factor := math.Pow(10, db/20)
	out := make([]int16, len(b.samples))
	for i, s := range b.samples {
		v := math.Round(float64(s) * factor)
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		out[i] = int16(v)
	}
	return &Buffer{format: b.format, samples: out}
}

// frameAt converts an offset into a frame index clamped to the buffer.
func (b *Buffer) frameAt(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return min(framesIn(b.format, d), b.Frames())
}

// framesIn returns how many whole frames fit in d without overflowing for
// multi-hour offsets.
func framesIn(f Format, d time.Duration) int {
	if d <= 0 {
		return 0
	}
	rate := time.Duration(f.SampleRate)
	whole := d / time.Second
	frac := d % time.Second
	return int(whole*rate + frac*rate/time.Second)
}

// pcmFromBytes interprets little-endian s16 bytes as a Buffer, dropping any
// trailing partial frame.
func pcmFromBytes(f Format, data []byte) *Buffer {
	frameBytes := 2 * f.Channels
	n := len(data) / frameBytes * f.Channels
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return &Buffer{format: f, samples: samples}
}

// pcmBytes serializes the buffer as little-endian s16.
func (b *Buffer) pcmBytes() []byte {
	out := make([]byte, 2*len(b.samples))
	for i, s := range b.samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}
