// Package ffmpeg locates the ffmpeg binary podcut drives for all audio work,
// installing a pinned static build under ~/.podcut/bin when none is available.
package ffmpeg

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Static builds from github.com/eugeneware/ffmpeg-static release b6.1.1.
const (
	ffmpegVersion   = "6.1.1"
	downloadBaseURL = "https://github.com/eugeneware/ffmpeg-static/releases/download/b6.1.1"

	// downloadTimeout covers a ~30MB compressed binary on a slow link.
	downloadTimeout = 10 * time.Minute

	// versionFileName records which build is installed so upgrades replace it.
	versionFileName = ".version"

	installDirPerm = 0750

	// maxDecompressedSize caps extraction; the binary is ~80MB uncompressed.
	maxDecompressedSize = 200 * 1024 * 1024
)

// EnvPath pins the ffmpeg binary and disables auto-install.
const EnvPath = "FFMPEG_PATH"

var defaultHTTPClient = &http.Client{
	Timeout: downloadTimeout,
	Transport: &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	},
}

// binaryInfo describes one downloadable gzipped build.
type binaryInfo struct {
	URL    string
	SHA256 string
}

// platformBinary returns the pinned build for goos/goarch.
func platformBinary(goos, goarch string) (binaryInfo, bool) {
	builds := map[string]binaryInfo{
		"darwin/arm64": {
			URL:    downloadBaseURL + "/ffmpeg-darwin-arm64.gz",
			SHA256: "8923876afa8db5585022d7860ec7e589af192f441c56793971276d450ed3bbfa",
		},
		"darwin/amd64": {
			URL:    downloadBaseURL + "/ffmpeg-darwin-x64.gz",
			SHA256: "5d8fb6f280c428d0e82cd5ee68215f0734d64f88e37dcc9e082f818c9e5025f0",
		},
		"linux/amd64": {
			URL:    downloadBaseURL + "/ffmpeg-linux-x64.gz",
			SHA256: "bfe8a8fc511530457b528c48d77b5737527b504a3797a9bc4866aeca69c2dffa",
		},
		"windows/amd64": {
			URL:    downloadBaseURL + "/ffmpeg-win32-x64.gz",
			SHA256: "8883a3dffbd0a16cf4ef95206ea05283f78908dbfb118f73c83f4951dcc06d77",
		},
	}
	info, ok := builds[goos+"/"+goarch]
	return info, ok
}

// Resolver finds ffmpeg, installing it on first use if needed.
type Resolver struct {
	reader fileReader
	writer fileWriter
	http   httpDoer
	env    envProvider
	stderr io.Writer
	goos   string
	goarch string

	// build overrides platformBinary (for testing downloads).
	build *binaryInfo
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileReader sets the filesystem read side.
func WithFileReader(r fileReader) ResolverOption {
	return func(res *Resolver) { res.reader = r }
}

// WithFileWriter sets the filesystem write side.
func WithFileWriter(w fileWriter) ResolverOption {
	return func(res *Resolver) { res.writer = w }
}

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c httpDoer) ResolverOption {
	return func(res *Resolver) { res.http = c }
}

// WithEnvProvider sets the environment lookup.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(res *Resolver) { res.env = e }
}

// WithStderr sets the writer for status messages.
func WithStderr(w io.Writer) ResolverOption {
	return func(res *Resolver) { res.stderr = w }
}

// WithPlatform overrides the target OS and architecture.
func WithPlatform(goos, goarch string) ResolverOption {
	return func(res *Resolver) {
		res.goos = goos
		res.goarch = goarch
	}
}

// WithBuild overrides the download location and checksum.
func WithBuild(url, sha256sum string) ResolverOption {
	return func(res *Resolver) {
		res.build = &binaryInfo{URL: url, SHA256: sha256sum}
	}
}

// NewResolver creates a Resolver with production defaults.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		reader: osFS{},
		writer: osFS{},
		http:   defaultHTTPClient,
		env:    osEnv{},
		stderr: os.Stderr,
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the ffmpeg path, trying in order:
//  1. FFMPEG_PATH (an error if set but missing)
//  2. ~/.podcut/bin/ffmpeg at the pinned version
//  3. ffmpeg on PATH
//  4. a fresh install into ~/.podcut/bin
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if p := r.env.Getenv(EnvPath); p != "" {
		if _, err := r.reader.Stat(p); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but the file does not exist", ErrNotFound, EnvPath, p)
		}
		return p, nil
	}

	target, err := r.binaryPath()
	if err != nil {
		return "", err
	}
	if r.installed(target) {
		return target, nil
	}

	if p, err := r.env.LookPath("ffmpeg"); err == nil {
		return p, nil
	}

	fmt.Fprintln(r.stderr, "ffmpeg not found, downloading...")
	if err := r.install(ctx, target); err != nil {
		return "", fmt.Errorf("%w: install failed: %v\n\n%s", ErrNotFound, err, r.manualInstallHint())
	}
	return target, nil
}

// binaryPath is where podcut installs its own ffmpeg.
func (r *Resolver) binaryPath() (string, error) {
	home, err := r.env.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	name := "ffmpeg"
	if r.goos == "windows" {
		name += ".exe"
	}
	return filepath.Join(home, ".podcut", "bin", name), nil
}

// installed reports whether target exists next to a matching version file.
func (r *Resolver) installed(target string) bool {
	if _, err := r.reader.Stat(target); err != nil {
		return false
	}
	v, err := r.reader.ReadFile(filepath.Join(filepath.Dir(target), versionFileName))
	return err == nil && string(v) == ffmpegVersion
}

func (r *Resolver) install(ctx context.Context, target string) error {
	info, ok := platformBinary(r.goos, r.goarch)
	if r.build != nil {
		info, ok = *r.build, true
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, r.goos, r.goarch)
	}

	dir := filepath.Dir(target)
	if err := r.writer.MkdirAll(dir, installDirPerm); err != nil {
		return fmt.Errorf("cannot create install directory %s: %w", dir, err)
	}

	if err := r.fetch(ctx, info, target); err != nil {
		_ = r.writer.Remove(target)
		return err
	}

	if err := r.writer.WriteFile(filepath.Join(dir, versionFileName), []byte(ffmpegVersion), 0644); err != nil {
		return fmt.Errorf("write version file: %w", err)
	}
	return nil
}

// fetch downloads the gzipped build, checks it and extracts it to target.
func (r *Resolver) fetch(ctx context.Context, info binaryInfo, target string) error {
	tmp, err := r.writer.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return fmt.Errorf("cannot create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = r.writer.Remove(tmpPath) }()

	copyErr := r.downloadTo(ctx, info.URL, tmp)
	closeErr := tmp.Close()
	if copyErr != nil {
		return copyErr
	}
	if closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}

	if err := verifyChecksum(tmpPath, info.SHA256); err != nil {
		return err
	}
	if err := decompressGzip(tmpPath, target); err != nil {
		return err
	}
	if r.goos != "windows" {
		if err := r.writer.Chmod(target, 0755); err != nil {
			return fmt.Errorf("make binary executable: %w", err)
		}
	}
	return nil
}

func (r *Resolver) downloadTo(ctx context.Context, url string, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: invalid URL: %v", ErrDownloadFailed, err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d from %s", ErrDownloadFailed, resp.StatusCode, url)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return nil
}

func (r *Resolver) manualInstallHint() string {
	switch r.goos {
	case "darwin":
		return "Install ffmpeg with: brew install ffmpeg\nor set " + EnvPath + " to an ffmpeg binary."
	case "linux":
		return "Install ffmpeg with your package manager (apt, dnf, pacman)\nor set " + EnvPath + " to an ffmpeg binary."
	case "windows":
		return "Install ffmpeg with: winget install ffmpeg\nor set " + EnvPath + " to ffmpeg.exe."
	default:
		return "Download ffmpeg from https://ffmpeg.org/download.html\nor set " + EnvPath + " to an ffmpeg binary."
	}
}

// Resolve finds ffmpeg with a default Resolver.
func Resolve(ctx context.Context) (string, error) {
	return NewResolver().Resolve(ctx)
}

// verifyChecksum compares the SHA256 of path with want (hex).
func verifyChecksum(path, want string) error {
	f, err := os.Open(path) // #nosec G304 -- internal temp file
	if err != nil {
		return fmt.Errorf("cannot open file for checksum: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("compute checksum: %w", err)
	}
	if got := hex.EncodeToString(h.Sum(nil)); got != want {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, want, got)
	}
	return nil
}

// decompressGzip extracts gzPath into dst through a temp file and rename,
// refusing output larger than maxDecompressedSize.
func decompressGzip(gzPath, dst string) error {
	src, err := os.Open(gzPath) // #nosec G304 -- internal temp file
	if err != nil {
		return fmt.Errorf("cannot open gzip file: %w", err)
	}
	defer func() { _ = src.Close() }()

	zr, err := gzip.NewReader(src)
	if err != nil {
		return fmt.Errorf("invalid gzip file: %w", err)
	}
	defer func() { _ = zr.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".extract-*")
	if err != nil {
		return fmt.Errorf("cannot create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	done := false
	defer func() {
		_ = tmp.Close()
		if !done {
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(zr, maxDecompressedSize))
	if err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}
	if n >= maxDecompressedSize {
		return fmt.Errorf("decompression failed: file exceeds %d bytes limit", maxDecompressedSize)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("install binary: %w", err)
	}
	done = true
	return nil
}
