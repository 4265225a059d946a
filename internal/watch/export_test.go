package watch

// Export internal functions for testing.
// This file is only compiled during `go test`.

var Relevant = relevant
