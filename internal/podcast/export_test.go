package podcast

// Exports for testing.

// DirFS exports dirFS for testing.
type DirFS = dirFS

// WithDirFS exports withDirFS for testing.
var WithDirFS = withDirFS

// SourceSuffix exports sourceSuffix for testing.
const SourceSuffix = sourceSuffix
