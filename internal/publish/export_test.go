package publish

// Export internal functions for testing.
// This file is only compiled during `go test`.

var WithClient = withClient

// ObjectPutter exposes the S3 client interface to external tests.
type ObjectPutter = objectPutter
