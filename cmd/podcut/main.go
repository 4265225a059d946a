package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/podcut/internal/announce"
	"github.com/alnah/podcut/internal/apierr"
	"github.com/alnah/podcut/internal/audio"
	"github.com/alnah/podcut/internal/cli"
	"github.com/alnah/podcut/internal/config"
	"github.com/alnah/podcut/internal/download"
	"github.com/alnah/podcut/internal/ffmpeg"
	"github.com/alnah/podcut/internal/interrupt"
	"github.com/alnah/podcut/internal/podcast"
	"github.com/alnah/podcut/internal/publish"
	"github.com/alnah/podcut/internal/watch"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitSynthesis  = 5
	ExitPartial    = 6
	ExitInterrupt  = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels ctx, a second one exits immediately.
	handler, ctx := interrupt.NewHandler(context.Background())
	defer handler.Stop()

	env := cli.DefaultEnv()
	rootCmd := newRootCmd(env)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		handler.Stop()
		os.Exit(exitCode(err))
	}
}

// newRootCmd assembles the podcut command tree.
func newRootCmd(env *cli.Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "podcut",
		Short: "Split, announce and publish podcast episodes",
		Long: `podcut cuts long podcast episodes into fixed-length chunks and prepends a
spoken announcement of each chunk's name, so a player without a display still
tells you where you are.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.SplitCmd(env))
	rootCmd.AddCommand(cli.AnnounceCmd(env))
	rootCmd.AddCommand(cli.EpisodeCmd(env))
	rootCmd.AddCommand(cli.DownloadCmd(env))
	rootCmd.AddCommand(cli.WatchCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	return rootCmd
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// A partial failure also wraps each file's cause, so it is matched
	// before the causes themselves.
	if errors.Is(err, podcast.ErrPartialFailure) || errors.Is(err, download.ErrDownloadFailed) {
		return ExitPartial
	}

	// Setup errors: missing tools, credentials or bucket.
	if errors.Is(err, ffmpeg.ErrNotFound) || errors.Is(err, ffmpeg.ErrUnsupportedPlatform) ||
		errors.Is(err, ffmpeg.ErrChecksumMismatch) || errors.Is(err, ffmpeg.ErrDownloadFailed) ||
		errors.Is(err, cli.ErrAPIKeyMissing) || errors.Is(err, publish.ErrNotConfigured) {
		return ExitSetup
	}

	// Validation errors: bad inputs or settings.
	if errors.Is(err, audio.ErrNotFound) || errors.Is(err, audio.ErrInvalidChunkLength) ||
		errors.Is(err, cli.ErrInvalidGain) || errors.Is(err, cli.ErrInvalidDuration) ||
		errors.Is(err, config.ErrInvalidKey) || errors.Is(err, config.ErrUnknownKey) ||
		errors.Is(err, config.ErrInvalidValue) || errors.Is(err, config.ErrNotDirectory) ||
		errors.Is(err, config.ErrNotWritable) || errors.Is(err, watch.ErrNotDirectory) ||
		errors.Is(err, download.ErrInvalidURL) {
		return ExitValidation
	}

	// Synthesis errors.
	if errors.Is(err, announce.ErrSynthesis) || errors.Is(err, apierr.ErrRateLimit) ||
		errors.Is(err, apierr.ErrQuotaExceeded) || errors.Is(err, apierr.ErrTimeout) ||
		errors.Is(err, apierr.ErrAuthFailed) || errors.Is(err, apierr.ErrBadRequest) ||
		errors.Is(err, apierr.ErrServer) {
		return ExitSynthesis
	}

	// Processing errors quote file names and OS messages, which may read
	// like usage text.
	for _, sentinel := range generalErrors {
		if errors.Is(err, sentinel) {
			return ExitGeneral
		}
	}

	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	return ExitGeneral
}

// generalErrors are processing failures that map to ExitGeneral.
var generalErrors = []error{
	audio.ErrDecode, audio.ErrEncode, audio.ErrFormatMismatch, audio.ErrInvalidFormat,
	announce.ErrEmptyText, announce.ErrTextTooLong,
	download.ErrFetchPage, publish.ErrUpload,
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
