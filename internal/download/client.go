// Package download scrapes mp3 links from web pages and saves the files.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// defaultRequestsPerSecond keeps scraping polite towards small blogs.
	defaultRequestsPerSecond = 2
	defaultBurst             = 1

	// defaultParallel bounds concurrent archive page fetches.
	defaultParallel = 4

	// maxPageSize caps how much of an HTML page is parsed.
	maxPageSize = 10 * 1024 * 1024

	dirPerm = 0750

	userAgent = "podcut/1.0"
)

var defaultHTTPClient = &http.Client{
	Timeout: 30 * time.Minute,
	Transport: &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	},
}

// Client fetches pages and mp3 files. All requests share one rate limiter.
type Client struct {
	http     httpDoer
	fs       fileSystem
	limiter  *rate.Limiter
	parallel int
	progress func(Result)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c httpDoer) Option {
	return func(cl *Client) { cl.http = c }
}

// WithRateLimit sets how many requests per second are sent, with burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(cl *Client) {
		if rps <= 0 {
			cl.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		cl.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithParallel sets how many archive pages are fetched at once.
func WithParallel(n int) Option {
	return func(cl *Client) { cl.parallel = max(n, 1) }
}

// WithProgress sets a callback invoked after each download attempt.
func WithProgress(fn func(Result)) Option {
	return func(cl *Client) { cl.progress = fn }
}

// withFileSystem sets the filesystem (for testing).
func withFileSystem(fs fileSystem) Option {
	return func(cl *Client) { cl.fs = fs }
}

// NewClient creates a Client with production defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:     defaultHTTPClient,
		fs:       osFileSystem{},
		limiter:  rate.NewLimiter(defaultRequestsPerSecond, defaultBurst),
		parallel: defaultParallel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MP3Links returns every link on pageURL whose href is an http(s) URL ending
// in .mp3, in page order. Duplicates are kept.
func (c *Client) MP3Links(ctx context.Context, pageURL string) ([]string, error) {
	doc, _, err := c.page(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return mp3Links(doc), nil
}

// ArchiveLinks returns the first link of every archive list item on
// archiveURL, resolved to absolute URLs.
func (c *Client) ArchiveLinks(ctx context.Context, archiveURL string) ([]string, error) {
	doc, base, err := c.page(ctx, archiveURL)
	if err != nil {
		return nil, err
	}
	return archiveLinks(doc, base), nil
}

// CollectArchive gathers the mp3 links of every page listed on archiveURL,
// keeping those that contain match (all of them when match is empty).
// Pages are fetched concurrently; the result follows archive order.
// Any page failure fails the whole collection.
func (c *Client) CollectArchive(ctx context.Context, archiveURL, match string) ([]string, error) {
	pages, err := c.ArchiveLinks(ctx, archiveURL)
	if err != nil {
		return nil, err
	}

	perPage := make([][]string, len(pages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)
	for i, p := range pages {
		g.Go(func() error {
			links, err := c.MP3Links(ctx, p)
			if err != nil {
				return err
			}
			perPage[i] = links
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var links []string
	for _, page := range perPage {
		for _, l := range page {
			if strings.Contains(l, match) {
				links = append(links, l)
			}
		}
	}
	return links, nil
}

// Result is the outcome of one download.
type Result struct {
	URL  string
	Path string // Set when the file was saved.
	Err  error  // Set when it was not.
}

// Report summarizes a Download run.
type Report struct {
	Saved    []string
	Failures []Result
}

// Err returns nil when every URL was saved, otherwise an ErrDownloadFailed
// joined with each failure.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := []error{fmt.Errorf("%w: %d of %d files", ErrDownloadFailed,
		len(r.Failures), len(r.Failures)+len(r.Saved))}
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// Download saves each URL into dir, creating dir if needed, one at a time.
// Files are named after the last URL path segment and written atomically;
// an existing file of that name is replaced. A failed URL is recorded and
// the run continues. The returned error is non-nil only when dir cannot be
// created or ctx ends.
func (c *Client) Download(ctx context.Context, urls []string, dir string) (Report, error) {
	var report Report
	if err := c.fs.MkdirAll(dir, dirPerm); err != nil {
		return report, fmt.Errorf("create %s: %w", dir, err)
	}

	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := Result{URL: u}
		res.Path, res.Err = c.save(ctx, u, dir)
		if res.Err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			report.Failures = append(report.Failures, res)
		} else {
			report.Saved = append(report.Saved, res.Path)
		}
		if c.progress != nil {
			c.progress(res)
		}
	}
	return report, nil
}

func (c *Client) save(ctx context.Context, rawURL, dir string) (string, error) {
	name, ok := fileName(rawURL)
	if !ok {
		return "", fmt.Errorf("%w: %w: no file name in %q", ErrDownloadFailed, ErrInvalidURL, rawURL)
	}
	dst := filepath.Join(dir, name)

	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDownloadFailed, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	tmp, err := c.fs.CreateTemp(dir, ".podcut-download-*")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = c.fs.Remove(tmpPath)
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, err)
	}
	if err := c.fs.Rename(tmpPath, dst); err != nil {
		_ = c.fs.Remove(tmpPath)
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, err)
	}
	return dst, nil
}

// page fetches and parses an HTML page.
func (c *Client) page(ctx context.Context, pageURL string) (*html.Node, *url.URL, error) {
	resp, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrFetchPage, pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: parse: %v", ErrFetchPage, pageURL, err)
	}
	base := resp.Request
	if base == nil {
		u, _ := url.Parse(pageURL)
		return doc, u, nil
	}
	return doc, base.URL, nil
}

// get waits for the limiter and issues a GET, failing on non-2xx status.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp, nil
}
