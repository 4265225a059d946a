package announce

import "errors"

// ErrSynthesis indicates the announcement could not be produced.
// Wrapped errors carry the cause (apierr sentinels, audio.ErrDecode).
var ErrSynthesis = errors.New("speech synthesis failed")

// ErrEmptyText indicates there was nothing to say.
var ErrEmptyText = errors.New("announcement text is empty")

// ErrTextTooLong indicates the text exceeds what the speech API accepts.
var ErrTextTooLong = errors.New("announcement text too long")
