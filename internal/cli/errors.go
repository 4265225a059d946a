package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
	ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

	// ErrInvalidGain indicates a --gain value outside the accepted range.
	ErrInvalidGain = errors.New("invalid gain")

	// ErrInvalidDuration indicates a chunk length that is not a positive number of minutes.
	ErrInvalidDuration = errors.New("invalid duration")
)

// EnvOpenAIAPIKey is the environment variable holding the OpenAI API key.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"
