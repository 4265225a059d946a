package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/alnah/podcut/internal/audio"
	"github.com/alnah/podcut/internal/config"
	"github.com/alnah/podcut/internal/download"
	"github.com/alnah/podcut/internal/format"
	"github.com/alnah/podcut/internal/podcast"
)

// loadConfig loads configuration, downgrading failures to a warning so a
// broken config file never blocks a run that passes everything by flag.
func loadConfig(ctx context.Context, env *Env) config.Config {
	cfg, err := env.ConfigLoader.Load(ctx)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
		return config.Config{}
	}
	return cfg
}

// resolveGain picks the gain from the flag when set, then config, then def,
// and checks it is within range.
func resolveGain(flagSet bool, flagDB float64, cfg config.Config, def float64) (float64, error) {
	db := def
	switch {
	case flagSet:
		db = flagDB
	default:
		if v, ok := cfg.Gain(); ok {
			db = v
		}
	}
	if math.IsNaN(db) || db < config.MinGainDB || db > config.MaxGainDB {
		return 0, fmt.Errorf("%w: %g dB (must be between %g and %g)",
			ErrInvalidGain, db, config.MinGainDB, config.MaxGainDB)
	}
	return db, nil
}

// resolveDir returns flagDir, else the configured output-dir, else fallback.
func resolveDir(flagDir string, cfg config.Config, fallback string) string {
	if flagDir != "" {
		return config.ExpandPath(flagDir)
	}
	if cfg.OutputDir != "" {
		return config.ExpandPath(cfg.OutputDir)
	}
	return fallback
}

// requireFiles checks every path exists and is a regular file.
func requireFiles(paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", audio.ErrNotFound, p)
			}
			return fmt.Errorf("cannot access input file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", audio.ErrNotFound, p)
		}
	}
	return nil
}

// batchProgress prints one line per file as a batch starts it.
func batchProgress(w io.Writer) func(podcast.Progress) {
	return func(p podcast.Progress) {
		fmt.Fprintf(w, "  [%d/%d] %s\n", p.Index, p.Total, filepath.Base(p.Job.Input))
	}
}

// batchFailure prints a warning for a file that failed and was skipped.
func batchFailure(w io.Writer) func(podcast.Failure) {
	return func(f podcast.Failure) {
		fmt.Fprintf(w, "Warning: skipped %s\n", f)
	}
}

// downloadProgress prints the outcome of each download.
func downloadProgress(w io.Writer) func(download.Result) {
	return func(r download.Result) {
		if r.Err != nil {
			fmt.Fprintf(w, "Warning: %v\n", r.Err)
			return
		}
		size := ""
		if info, err := os.Stat(r.Path); err == nil {
			size = " (" + format.Size(info.Size()) + ")"
		}
		fmt.Fprintf(w, "  Saved %s%s\n", filepath.Base(r.Path), size)
	}
}

// warnTo returns a WarnFunc writing one line per message.
func warnTo(w io.Writer) func(string) {
	return func(msg string) { fmt.Fprintln(w, msg) }
}

// reportSummary prints the closing line of a batch.
func reportSummary(w io.Writer, r podcast.Report) {
	if len(r.Failures) == 0 {
		fmt.Fprintf(w, "Done: %s written\n", format.Count(len(r.Written), "file", "files"))
		return
	}
	fmt.Fprintf(w, "Done: %s written, %d failed\n", format.Count(len(r.Written), "file", "files"), len(r.Failures))
}
