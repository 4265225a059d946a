package podcast_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alnah/podcut/internal/audio"
)

// byteRate is the sample rate of fake audio: one sample per file byte, ten per second.
var byteRate = audio.Format{SampleRate: 10, Channels: 1}

// ---------------------------------------------------------------------------
// fakeCodec - files hold one byte per sample
// ---------------------------------------------------------------------------

// fakeCodec decodes a file's bytes as samples and encodes samples back as
// bytes, so tests can read outputs as strings. A file whose content is
// "corrupt" fails to decode.
type fakeCodec struct {
	mu         sync.Mutex
	failEncode map[string]bool // by base name
	decoded    []string
}

func (c *fakeCodec) Decode(_ context.Context, path string) (*audio.Buffer, error) {
	c.mu.Lock()
	c.decoded = append(c.decoded, filepath.Base(path))
	c.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", audio.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", audio.ErrDecode, err)
	}
	if string(data) == "corrupt" {
		return nil, fmt.Errorf("%w: %s: invalid data", audio.ErrDecode, path)
	}
	samples := make([]int16, len(data))
	for i, b := range data {
		samples[i] = int16(b)
	}
	return audio.NewBuffer(byteRate, samples)
}

func (c *fakeCodec) Encode(_ context.Context, buf *audio.Buffer, path string) error {
	if c.failEncode[filepath.Base(path)] {
		return fmt.Errorf("%w: %s: disk full", audio.ErrEncode, path)
	}
	out := make([]byte, len(buf.Samples()))
	for i, s := range buf.Samples() {
		out[i] = byte(s)
	}
	return os.WriteFile(path, out, 0600)
}

// ---------------------------------------------------------------------------
// fakeSynth - speaks text as its own bytes
// ---------------------------------------------------------------------------

var errSpeech = errors.New("speech API unavailable")

type fakeSynth struct {
	mu    sync.Mutex
	texts []string
	fail  map[string]bool
}

func (s *fakeSynth) Synthesize(_ context.Context, text string) (*audio.Buffer, error) {
	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.mu.Unlock()
	if s.fail[text] {
		return nil, errSpeech
	}
	samples := make([]int16, len(text))
	for i := 0; i < len(text); i++ {
		samples[i] = int16(text[i])
	}
	return audio.NewBuffer(byteRate, samples)
}

func (s *fakeSynth) spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}
