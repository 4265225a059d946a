package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alnah/podcut/internal/format"
	"github.com/alnah/podcut/internal/podcast"
	"github.com/alnah/podcut/internal/watch"
)

// WatchCmd creates the watch command.
// The env parameter provides injectable dependencies for testing.
func WatchCmd(env *Env) *cobra.Command {
	var gainDB float64

	cmd := &cobra.Command{
		Use:   "watch <folder>",
		Short: "Process episodes as they are dropped into a folder",
		Long: `Watch a folder and run the episode pipeline on every mp3 that appears in it,
once the file has stopped changing.

Each episode is split into announced 15-minute chunks in a subfolder named
after it. Subfolders are not watched.

Ctrl+C stops watching once the episode in progress is finished; press it
twice to abort at once.`,
		Example: `  podcut watch ~/Podcasts/inbox
  podcut watch inbox --gain 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, env, args[0], cmd.Flags().Changed("gain"), gainDB)
		},
	}

	cmd.Flags().Float64Var(&gainDB, "gain", podcast.DefaultEpisodeGainDB, "Loudness change in dB applied to each chunk")

	return cmd
}

func runWatch(cmd *cobra.Command, env *Env, dir string, gainSet bool, gainDB float64) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %s", podcast.ErrNotFound, dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", watch.ErrNotDirectory, dir)
	}
	cfg := loadConfig(ctx, env)
	gain, err := resolveGain(gainSet, gainDB, cfg, podcast.DefaultEpisodeGainDB)
	if err != nil {
		return err
	}

	proc, err := newProcessor(ctx, env, cfg, podcast.WithFailureHandler(batchFailure(env.Stderr)))
	if err != nil {
		return err
	}

	// === WATCH ===

	w := env.WatcherFactory.NewWatcher(
		func(path string) {
			fmt.Fprintf(env.Stderr, "New episode: %s\n", filepath.Base(path))
		},
		func(err error) {
			fmt.Fprintf(env.Stderr, "Warning: %v\n", err)
		},
	)

	// An episode already started runs to completion after the watch is
	// canceled; only a forced exit interrupts it.
	work := context.WithoutCancel(ctx)

	fmt.Fprintf(env.Stderr, "Watching %s (gain %s, Ctrl+C to stop)\n", dir, format.Gain(gain))
	err = w.Run(ctx, dir, func(_ context.Context, path string) error {
		ep, err := proc.ProcessEpisode(work, path, gain)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "  %s: %s in %s\n", filepath.Base(path),
			format.Count(len(ep.Report.Written), "chunk", "chunks"), ep.Dir)
		return ep.Report.Err()
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stderr, "Stopped watching")
	return nil
}
