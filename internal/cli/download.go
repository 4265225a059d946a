package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/podcut/internal/format"
)

// DownloadCmd creates the download command.
// The env parameter provides injectable dependencies for testing.
func DownloadCmd(env *Env) *cobra.Command {
	var (
		output  string
		archive bool
		match   string
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "download <page-url>",
		Short: "Download every mp3 linked from a web page",
		Long: `Download every mp3 linked from a web page.

With --archive, the page is treated as a blog archive: every page listed in
its archive items is scanned for mp3 links. --match keeps only links
containing the given text.

Files are named after the last segment of their URL. A failed download is
reported and the rest continue.`,
		Example: `  podcut download https://example.com/episodes -o ~/Podcasts
  podcut download https://thehistoryofrome.typepad.com/the_history_of_rome/archives.html --archive --match historyofrome
  podcut download https://example.com/episodes --list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, env, args[0], output, archive, match, list)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Download folder (default: config output-dir, else current folder)")
	cmd.Flags().BoolVar(&archive, "archive", false, "Treat the page as an archive listing and scan every listed page")
	cmd.Flags().StringVar(&match, "match", "", "Keep only links containing this text")
	cmd.Flags().BoolVar(&list, "list", false, "Print the links without downloading")

	return cmd
}

func runDownload(cmd *cobra.Command, env *Env, pageURL, output string, archive bool, match string, list bool) error {
	ctx := cmd.Context()

	cfg := loadConfig(ctx, env)
	dir := resolveDir(output, cfg, ".")
	client := env.DownloaderFactory.NewDownloader(downloadProgress(env.Stderr))

	// === COLLECT ===

	var links []string
	var err error
	if archive {
		fmt.Fprintln(env.Stderr, "Scanning archive...")
		links, err = client.CollectArchive(ctx, pageURL, match)
	} else {
		links, err = client.MP3Links(ctx, pageURL)
		links = filterLinks(links, match)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Found %s\n", format.Count(len(links), "mp3 link", "mp3 links"))

	if list {
		for _, l := range links {
			fmt.Fprintln(env.Stdout, l)
		}
		return nil
	}
	if len(links) == 0 {
		return nil
	}

	// === DOWNLOAD ===

	report, err := client.Download(ctx, links, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Done: %s saved to %s\n", format.Count(len(report.Saved), "file", "files"), dir)
	return report.Err()
}

// filterLinks keeps links containing match; an empty match keeps all.
func filterLinks(links []string, match string) []string {
	if match == "" {
		return links
	}
	var kept []string
	for _, l := range links {
		if strings.Contains(l, match) {
			kept = append(kept, l)
		}
	}
	return kept
}
