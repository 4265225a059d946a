package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/podcut/internal/format"
	"github.com/alnah/podcut/internal/podcast"
)

// AnnounceCmd creates the announce command.
// The env parameter provides injectable dependencies for testing.
func AnnounceCmd(env *Env) *cobra.Command {
	var (
		output string
		gainDB float64
		prefix string
		suffix string
	)

	cmd := &cobra.Command{
		Use:   "announce [folder]",
		Short: "Prepend a spoken file name to every mp3 in a folder",
		Long: `Prepend a spoken announcement of each file's name to every file in the
folder whose name ends in "mp3", optionally changing its loudness.

Underscores in names are read as spaces. Outputs are named
{prefix}{stem}{suffix}{ext}. Without --output, files are written to the
configured output-dir, else back into the folder itself (replacing the
originals when no prefix or suffix is given).

A file that fails is reported and skipped; the rest are still processed.`,
		Example: `  podcut announce ~/Podcasts/history
  podcut announce . -o announced --gain 3
  podcut announce chunks --prefix "rome_" --suffix "_v2"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := "."
			if len(args) == 1 {
				folder = args[0]
			}
			return runAnnounce(cmd, env, folder, output, cmd.Flags().Changed("gain"), gainDB, prefix, suffix)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output folder, must exist (default: config output-dir, else the source folder)")
	cmd.Flags().Float64Var(&gainDB, "gain", 0, "Loudness change in dB applied to the original audio")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Text prepended to output file names")
	cmd.Flags().StringVar(&suffix, "suffix", "", "Text appended to output file names")

	return cmd
}

func runAnnounce(cmd *cobra.Command, env *Env, folder, output string, gainSet bool, gainDB float64, prefix, suffix string) error {
	ctx := cmd.Context()

	cfg := loadConfig(ctx, env)
	gain, err := resolveGain(gainSet, gainDB, cfg, 0)
	if err != nil {
		return err
	}
	outDir := resolveDir(output, cfg, folder)

	proc, err := newProcessor(ctx, env, cfg,
		podcast.WithProgress(batchProgress(env.Stderr)),
		podcast.WithFailureHandler(batchFailure(env.Stderr)),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Announcing %s -> %s (gain %s)\n", folder, outDir, format.Gain(gain))
	report, err := proc.ProcessFolder(ctx, folder, podcast.BatchOptions{
		OutputDir: outDir,
		GainDB:    gain,
		Prefix:    prefix,
		Suffix:    suffix,
	})
	if err != nil {
		return err
	}
	reportSummary(env.Stderr, report)
	return report.Err()
}
