package audio

import (
	"path/filepath"
	"strings"
)

// EpisodeFile is a source audio path split into the parts used to name outputs.
type EpisodeFile struct {
	Path string // As given by the caller.
	Stem string // Base name without extension.
	Ext  string // Extension including the dot, or "".
}

// NewEpisodeFile derives Stem and Ext from path.
func NewEpisodeFile(path string) EpisodeFile {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return EpisodeFile{
		Path: path,
		Stem: strings.TrimSuffix(base, ext),
		Ext:  ext,
	}
}

// Dir returns the folder containing the file.
func (e EpisodeFile) Dir() string { return filepath.Dir(e.Path) }

// Name returns the base name.
func (e EpisodeFile) Name() string { return e.Stem + e.Ext }
