package podcast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/podcut/internal/audio"
)

// Episode pipeline settings.
const (
	// EpisodeChunkLength is the fixed chunk length for ProcessEpisode.
	EpisodeChunkLength = 15 * time.Minute

	// DefaultEpisodeGainDB is the boost the CLI applies to episode chunks
	// unless told otherwise.
	DefaultEpisodeGainDB = 5.0

	episodeDirPerm = 0750
)

// Episode is the outcome of ProcessEpisode.
type Episode struct {
	Dir    string        // Folder holding the announced chunks.
	Chunks []audio.Chunk // Chunks written by the split step.
	Report Report        // Outcome of announcing the folder.
}

// EpisodeDir returns the folder ProcessEpisode writes path's chunks to:
// a sibling of path named after its stem.
func EpisodeDir(path string) string {
	ep := audio.NewEpisodeFile(path)
	return filepath.Join(ep.Dir(), ep.Stem)
}

// ProcessEpisode splits path into 15-minute chunks inside EpisodeDir(path),
// then announces every chunk in place with gainDB applied.
//
// A missing path is ErrNotFound and creates nothing. A split failure is
// returned as is, with whatever chunks were already written. Per-chunk
// announcement failures are only in Episode.Report. Nothing is rolled back.
func (p *Processor) ProcessEpisode(ctx context.Context, path string, gainDB float64) (Episode, error) {
	ep := Episode{Dir: EpisodeDir(path)}
	if _, err := p.fs.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ep, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return ep, fmt.Errorf("episode %s: %w", path, err)
	}
	if err := p.fs.MkdirAll(ep.Dir, episodeDirPerm); err != nil {
		return ep, fmt.Errorf("create episode folder %s: %w", ep.Dir, err)
	}

	chunks, err := p.splitter.Split(ctx, []string{path}, ep.Dir, EpisodeChunkLength)
	ep.Chunks = chunks
	if err != nil {
		return ep, err
	}

	ep.Report, err = p.ProcessFolder(ctx, ep.Dir, BatchOptions{OutputDir: ep.Dir, GainDB: gainDB})
	return ep, err
}
