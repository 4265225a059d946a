package podcast

import (
	"errors"

	"github.com/alnah/podcut/internal/audio"
)

// ErrNotFound indicates a missing source file or folder, or a missing output folder.
// It is the same value as audio.ErrNotFound so either can be matched.
var ErrNotFound = audio.ErrNotFound

// ErrPartialFailure indicates a batch finished but some files failed.
var ErrPartialFailure = errors.New("some files failed")
