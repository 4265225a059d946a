package podcast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/podcut/internal/audio"
)

// sourceSuffix selects batch inputs. The match is literal and case-sensitive.
const sourceSuffix = "mp3"

// BatchOptions controls ProcessFolder. Zero values leave that aspect unchanged.
type BatchOptions struct {
	OutputDir string  // Defaults to the source folder. Must already exist.
	GainDB    float64 // Applied to each original; 0 means none.
	Prefix    string  // Prepended to each output stem.
	Suffix    string  // Appended to each output stem, before the extension.
}

// Job is one file of a batch.
type Job struct {
	Input  string
	Output string
	GainDB float64
	Prefix string
	Suffix string
}

// Failure records a file that could not be processed.
type Failure struct {
	Name string // Base name of the source file.
	Err  error
}

func (f Failure) String() string { return f.Name + ": " + f.Err.Error() }

// Progress is reported before each file of a batch.
type Progress struct {
	Index int // One-based.
	Total int
	Job   Job
}

// Report is the outcome of a batch.
type Report struct {
	Written  []string  // Output paths, in processing order.
	Failures []Failure // Files that failed, in processing order.
}

// Total returns how many files the batch attempted.
func (r Report) Total() int { return len(r.Written) + len(r.Failures) }

// Err returns nil when every file succeeded, and otherwise an error wrapping
// ErrPartialFailure and each file's error.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures)+1)
	errs = append(errs, fmt.Errorf("%w: %d of %d", ErrPartialFailure, len(r.Failures), r.Total()))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Name, f.Err))
	}
	return errors.Join(errs...)
}

// OutputName returns "{prefix}{stem}{suffix}{ext}" for a source name.
func OutputName(name, prefix, suffix string) string {
	ep := audio.NewEpisodeFile(name)
	return prefix + ep.Stem + suffix + ep.Ext
}

// ProcessFolder announces every file in srcDir whose name ends in "mp3",
// in lexicographic order, writing results to opts.OutputDir.
//
// The folder is listed once up front, so outputs written into srcDir are not
// picked up by the same run. A file that fails is recorded in the report and
// passed to the failure handler, and the batch moves on. Cancelling ctx stops
// the batch between files; the partial report is returned with ctx's error.
func (p *Processor) ProcessFolder(ctx context.Context, srcDir string, opts BatchOptions) (Report, error) {
	if err := p.requireDir(srcDir, "source folder"); err != nil {
		return Report{}, err
	}
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = srcDir
	}
	if err := p.requireDir(outDir, "output folder"); err != nil {
		return Report{}, err
	}

	entries, err := p.fs.ReadDir(srcDir)
	if err != nil {
		return Report{}, fmt.Errorf("list %s: %w", srcDir, err)
	}
	jobs := planJobs(srcDir, outDir, entries, opts)

	var report Report
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if p.onProgress != nil {
			p.onProgress(Progress{Index: i + 1, Total: len(jobs), Job: job})
		}

		if err := p.runJob(ctx, job); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			f := Failure{Name: filepath.Base(job.Input), Err: err}
			report.Failures = append(report.Failures, f)
			if p.onFailure != nil {
				p.onFailure(f)
			}
			continue
		}
		report.Written = append(report.Written, job.Output)
	}
	return report, nil
}

func (p *Processor) runJob(ctx context.Context, job Job) error {
	buf, err := p.ProcessFile(ctx, job.Input, job.GainDB)
	if err != nil {
		return err
	}
	return p.codec.Encode(ctx, buf, job.Output)
}

// planJobs keeps non-directory entries ending in sourceSuffix. Hidden files,
// including temp files left by an interrupted encode, are skipped. os.ReadDir
// already sorts by name.
func planJobs(srcDir, outDir string, entries []os.DirEntry, opts BatchOptions) []Job {
	var jobs []Job
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), sourceSuffix) {
			continue
		}
		jobs = append(jobs, Job{
			Input:  filepath.Join(srcDir, e.Name()),
			Output: filepath.Join(outDir, OutputName(e.Name(), opts.Prefix, opts.Suffix)),
			GainDB: opts.GainDB,
			Prefix: opts.Prefix,
			Suffix: opts.Suffix,
		})
	}
	return jobs
}

func (p *Processor) requireDir(path, what string) error {
	info, err := p.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s %s", ErrNotFound, what, path)
		}
		return fmt.Errorf("%s %s: %w", what, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s %s is not a directory", ErrNotFound, what, path)
	}
	return nil
}
