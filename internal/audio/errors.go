package audio

import "errors"

// ErrDecode indicates a source could not be read or parsed as audio.
var ErrDecode = errors.New("audio decode failed")

// ErrEncode indicates audio could not be encoded or written to its destination.
var ErrEncode = errors.New("audio encode failed")

// ErrNotFound indicates an input file or folder does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidChunkLength indicates a non-positive split length.
var ErrInvalidChunkLength = errors.New("chunk length must be positive")

// ErrFormatMismatch indicates buffers with different PCM layouts were combined.
var ErrFormatMismatch = errors.New("audio format mismatch")

// ErrInvalidFormat indicates a PCM layout or sample count that cannot describe audio.
var ErrInvalidFormat = errors.New("invalid audio format")
