package download

// Export internal functions for testing.
// This file is only compiled during `go test`.

var (
	FileName       = fileName
	WithFileSystem = withFileSystem
)

// FileSystem exposes the filesystem interface to external tests.
type FileSystem = fileSystem

// OSFileSystem exposes the default filesystem to external tests.
type OSFileSystem = osFileSystem
