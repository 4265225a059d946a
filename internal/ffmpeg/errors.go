package ffmpeg

import "errors"

var (
	// ErrNotFound indicates no usable ffmpeg binary was found and installing one failed.
	ErrNotFound = errors.New("ffmpeg not found")

	// ErrUnsupportedPlatform indicates there is no prebuilt ffmpeg for this OS/architecture.
	ErrUnsupportedPlatform = errors.New("unsupported platform for ffmpeg install")

	// ErrChecksumMismatch indicates a downloaded archive did not match its pinned SHA256.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrDownloadFailed indicates the ffmpeg archive could not be fetched.
	ErrDownloadFailed = errors.New("download failed")
)
