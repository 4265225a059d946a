package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/simonhull/audiometa"
)

// Prober reports the playing time of an audio file without decoding it.
type Prober interface {
	Probe(ctx context.Context, path string) (time.Duration, error)
}

// MetaProber reads the duration from the file's container headers and tags.
type MetaProber struct{}

// Probe returns the duration recorded in path's headers.
func (MetaProber) Probe(ctx context.Context, path string) (time.Duration, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return 0, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}

	f, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	defer f.Close()

	if f.Audio.Duration <= 0 {
		return 0, fmt.Errorf("%w: %s: no duration in headers", ErrDecode, path)
	}
	return f.Audio.Duration, nil
}
