// Package publish uploads finished episode folders to S3 or an
// S3-compatible store.
package publish

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Environment variables for explicit credentials. When unset the default AWS
// chain (shared config, instance role) applies.
const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
)

// Config locates the bucket.
type Config struct {
	Bucket          string
	Region          string
	Prefix          string // Key prefix under which folders are published.
	Endpoint        string // Optional: S3-compatible endpoint such as MinIO.
	AccessKeyID     string // Optional.
	SecretAccessKey string // Optional.
}

// objectPutter is the part of the S3 client the publisher uses.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads files to one bucket.
type S3Publisher struct {
	client   objectPutter
	bucket   string
	region   string
	prefix   string
	endpoint string
	progress func(key string)
}

// Option configures an S3Publisher.
type Option func(*S3Publisher)

// WithProgress sets a callback invoked after each object is stored.
func WithProgress(fn func(key string)) Option {
	return func(p *S3Publisher) { p.progress = fn }
}

// withClient replaces the S3 client (for testing).
func withClient(c objectPutter) Option {
	return func(p *S3Publisher) { p.client = c }
}

// NewS3Publisher loads AWS configuration and builds a client for cfg.
func NewS3Publisher(ctx context.Context, cfg Config, opts ...Option) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}
	p := &S3Publisher{
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		prefix:   cfg.Prefix,
		endpoint: cfg.Endpoint,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client != nil {
		return p, nil
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if p.region == "" {
		p.region = awsCfg.Region
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	p.client = s3.NewFromConfig(awsCfg, clientOpts...)
	return p, nil
}

// PublishDir uploads every regular file directly inside dir, in name order,
// to <prefix>/<sub>/<name> and returns the object URLs. Hidden files are
// skipped. The first failure stops the run; URLs of objects already stored
// are returned with the error.
func (p *S3Publisher) PublishDir(ctx context.Context, dir, sub string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	urls := make([]string, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return urls, err
		}
		key := p.Key(sub, name)
		if err := p.putFile(ctx, filepath.Join(dir, name), key); err != nil {
			return urls, err
		}
		urls = append(urls, p.URL(key))
		if p.progress != nil {
			p.progress(key)
		}
	}
	return urls, nil
}

func (p *S3Publisher) putFile(ctx context.Context, src, key string) error {
	f, err := os.Open(src) // #nosec G304 -- files listed from the output folder
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpload, src, err)
	}
	defer func() { _ = f.Close() }()

	in := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := contentType(src); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := p.client.PutObject(ctx, in); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: s3://%s/%s: %w", ErrUpload, p.bucket, key, err)
	}
	return nil
}

// Key joins the configured prefix, sub and name with slashes.
func (p *S3Publisher) Key(sub, name string) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.prefix, sub} {
		if s = strings.Trim(s, "/"); s != "" {
			parts = append(parts, s)
		}
	}
	return path.Join(append(parts, name)...)
}

// URL returns where key can be fetched: path style on a custom endpoint,
// virtual-hosted style on AWS.
func (p *S3Publisher) URL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if p.endpoint != "" {
		return strings.TrimRight(p.endpoint, "/") + "/" + p.bucket + "/" + escaped
	}
	if p.region == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", p.bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, escaped)
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case "":
		return ""
	default:
		return mime.TypeByExtension(filepath.Ext(name))
	}
}
