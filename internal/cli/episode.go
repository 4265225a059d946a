package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alnah/podcut/internal/format"
	"github.com/alnah/podcut/internal/podcast"
)

// EpisodeCmd creates the episode command.
// The env parameter provides injectable dependencies for testing.
func EpisodeCmd(env *Env) *cobra.Command {
	var (
		gainDB float64
		upload bool
	)

	cmd := &cobra.Command{
		Use:   "episode <file>...",
		Short: "Split episodes into announced 15-minute chunks",
		Long: `Split each episode into 15-minute chunks inside a folder named after it,
then prepend a spoken announcement of each chunk's name and apply a gain.

The folder is created next to the episode: show/ep01.mp3 -> show/ep01/.
The default gain is +5 dB, overridable with --gain or config gain-db.

With --upload, each finished folder is published to the configured S3 bucket.`,
		Example: `  podcut episode ep01.mp3
  podcut episode *.mp3 --gain 0
  podcut episode ep01.mp3 --upload`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEpisode(cmd, env, args, cmd.Flags().Changed("gain"), gainDB, upload)
		},
	}

	cmd.Flags().Float64Var(&gainDB, "gain", podcast.DefaultEpisodeGainDB, "Loudness change in dB applied to each chunk")
	cmd.Flags().BoolVar(&upload, "upload", false, "Publish each episode folder to S3")

	return cmd
}

func runEpisode(cmd *cobra.Command, env *Env, paths []string, gainSet bool, gainDB float64, upload bool) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	if err := requireFiles(paths); err != nil {
		return err
	}
	cfg := loadConfig(ctx, env)
	gain, err := resolveGain(gainSet, gainDB, cfg, podcast.DefaultEpisodeGainDB)
	if err != nil {
		return err
	}

	var pub Publisher
	if upload {
		if pub, err = newPublisher(ctx, env, cfg); err != nil {
			return err
		}
	}

	// === SETUP ===

	proc, err := newProcessor(ctx, env, cfg,
		podcast.WithProgress(batchProgress(env.Stderr)),
		podcast.WithFailureHandler(batchFailure(env.Stderr)),
	)
	if err != nil {
		return err
	}

	// === PROCESS ===

	var partial []error
	for _, path := range paths {
		fmt.Fprintf(env.Stderr, "Episode %s (gain %s)\n", filepath.Base(path), format.Gain(gain))
		ep, err := proc.ProcessEpisode(ctx, path, gain)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Split into %s in %s\n", format.Count(len(ep.Chunks), "chunk", "chunks"), ep.Dir)
		if len(ep.Chunks) > 0 && ep.Report.Total() == 0 {
			fmt.Fprintf(env.Stderr, "Warning: no chunk of %s was announced (only names ending in lowercase \"mp3\" are)\n",
				filepath.Base(path))
		}
		reportSummary(env.Stderr, ep.Report)
		if err := ep.Report.Err(); err != nil {
			partial = append(partial, err)
		}

		if pub != nil {
			urls, err := pub.PublishDir(ctx, ep.Dir, filepath.Base(ep.Dir))
			for _, u := range urls {
				fmt.Fprintln(env.Stdout, u)
			}
			if err != nil {
				return err
			}
		}
	}
	return errors.Join(partial...)
}
