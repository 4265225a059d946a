package cli

// Export internal functions for testing.

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// IsValidConfigKey exports isValidConfigKey for testing.
var IsValidConfigKey = isValidConfigKey

// MinutesToLength exports minutesToLength for testing.
var MinutesToLength = minutesToLength

// ResolveGain exports resolveGain for testing.
var ResolveGain = resolveGain

// ResolveDir exports resolveDir for testing.
var ResolveDir = resolveDir

// FilterLinks exports filterLinks for testing.
var FilterLinks = filterLinks

// RequireFiles exports requireFiles for testing.
var RequireFiles = requireFiles
