package download

import "errors"

var (
	// ErrDownloadFailed indicates a file could not be fetched or saved.
	ErrDownloadFailed = errors.New("download failed")

	// ErrFetchPage indicates an HTML page could not be fetched.
	ErrFetchPage = errors.New("failed to fetch page")

	// ErrInvalidURL indicates a URL that cannot be requested or named.
	ErrInvalidURL = errors.New("invalid URL")
)
