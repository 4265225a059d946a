package audio

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// PCMFromBytes exports pcmFromBytes for testing.
var PCMFromBytes = pcmFromBytes

// PCMBytes exports Buffer.pcmBytes for testing.
func PCMBytes(b *Buffer) []byte { return b.pcmBytes() }

// DecodeArgs exports decodeArgs for testing.
var DecodeArgs = decodeArgs

// EncodeArgs exports encodeArgs for testing.
var EncodeArgs = encodeArgs

// StderrDetail exports stderrDetail for testing.
var StderrDetail = stderrDetail

// --- Dependency injection exports ---

// PipeRunner exports pipeRunner interface for testing.
type PipeRunner = pipeRunner

// FileSystem exports fileSystem interface for testing.
type FileSystem = fileSystem

// OSFileSystem exports osFileSystem for testing.
type OSFileSystem = osFileSystem
