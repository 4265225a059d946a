package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/podcut/internal/audio"
	"github.com/alnah/podcut/internal/format"
	"github.com/alnah/podcut/internal/podcast"
)

// defaultSplitMinutes matches the chunk length the episode command uses.
var defaultSplitMinutes = podcast.EpisodeChunkLength.Minutes()

// minutesToLength converts a minute count to a chunk length, rounded to the
// millisecond.
func minutesToLength(minutes float64) (time.Duration, error) {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes <= 0 {
		return 0, fmt.Errorf("%w: --minutes must be positive, got %g", ErrInvalidDuration, minutes)
	}
	ms := math.Round(minutes * 60000)
	if ms < 1 || ms > float64(math.MaxInt64/int64(time.Millisecond)) {
		return 0, fmt.Errorf("%w: --minutes out of range: %g", ErrInvalidDuration, minutes)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// SplitCmd creates the split command.
// The env parameter provides injectable dependencies for testing.
func SplitCmd(env *Env) *cobra.Command {
	var (
		output  string
		minutes float64
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "split <file>...",
		Short: "Split audio files into fixed-length chunks",
		Long: `Split each audio file into consecutive chunks of the given length.

Chunks are named {stem}_partNN{ext} and written to the output folder, which is
created if needed. The last chunk of a file holds the remainder.

Use --dry-run to print the chunk plan from file headers without decoding.`,
		Example: `  podcut split episode.mp3 -o chunks -m 10
  podcut split *.mp3 -o ~/Podcasts/chunks
  podcut split long.mp3 -m 20 --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, env, args, output, minutes, dryRun)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output folder (default: config output-dir, else current folder)")
	cmd.Flags().Float64VarP(&minutes, "minutes", "m", defaultSplitMinutes, "Chunk length in minutes")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the chunk plan without writing files")

	return cmd
}

func runSplit(cmd *cobra.Command, env *Env, sources []string, output string, minutes float64, dryRun bool) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	length, err := minutesToLength(minutes)
	if err != nil {
		return err
	}
	if err := requireFiles(sources); err != nil {
		return err
	}
	cfg := loadConfig(ctx, env)
	outDir := resolveDir(output, cfg, ".")

	// === DRY RUN ===

	if dryRun {
		splitter := audio.NewSplitter(nil, audio.WithProber(env.Prober))
		chunks, err := splitter.Plan(ctx, sources, outDir, length)
		if err != nil {
			return err
		}
		for _, c := range chunks {
			fmt.Fprintf(env.Stdout, "%s\t%s\n", c, c.Path)
		}
		fmt.Fprintf(env.Stderr, "Plan: %s of %s\n",
			format.Count(len(chunks), "chunk", "chunks"), format.DurationHuman(length))
		return nil
	}

	// === SPLIT ===

	codec, err := resolveCodec(ctx, env)
	if err != nil {
		return err
	}
	splitter := audio.NewSplitter(codec, audio.WithSplitProgress(func(c audio.Chunk) {
		fmt.Fprintf(env.Stderr, "  %s\n", c)
	}))

	fmt.Fprintf(env.Stderr, "Splitting %s into %s chunks...\n",
		format.Count(len(sources), "file", "files"), format.DurationHuman(length))
	chunks, err := splitter.Split(ctx, sources, outDir, length)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Done: %s in %s\n", format.Count(len(chunks), "chunk", "chunks"), outDir)
	return nil
}
