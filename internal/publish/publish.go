package publish

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/routekit/internal/build"
	"github.com/vango-dev/routekit/internal/config"
	"github.com/vango-dev/routekit/internal/errors"
)

// DigestKey is the object metadata key holding the file's BLAKE3 digest.
const DigestKey = "routekit-digest"

// ObjectStore is the subset of the S3 client used for publishing.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads the built static tree to a bucket.
type Publisher struct {
	store  ObjectStore
	bucket string
	prefix string
	logger *slog.Logger
}

// Report lists the object keys written by a publish.
type Report struct {
	Bucket string
	Keys   []string
	Bytes  int64
}

// NewClient creates an S3 client for cfg. Credentials come from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN; requests
// are unsigned when no key is set.
func NewClient(cfg config.PublishConfig) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		creds := aws.Credentials{
			AccessKeyID:     key,
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil },
		))
	}
	return s3.New(opts)
}

// New creates a publisher writing to the bucket named in cfg.
func New(store ObjectStore, cfg config.PublishConfig, logger *slog.Logger) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("E170").
			WithDetail("No bucket configured").
			WithSuggestion("Set [publish] bucket in routekit.toml")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		store:  store,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}, nil
}

// Key returns the object key for a path relative to the static tree.
func (p *Publisher) Key(rel string) string {
	rel = filepath.ToSlash(rel)
	if p.prefix == "" {
		return rel
	}
	return path.Join(p.prefix, rel)
}

// Publish uploads every file under dir. Keys are relative to dir and
// written in lexical order.
func (p *Publisher) Publish(ctx context.Context, dir string) (*Report, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.New("E170").
			WithDetail("Static output not found at " + dir).
			WithSuggestion("Run 'routekit build' first")
	}

	report := &Report{Bucket: p.bucket}
	err = filepath.WalkDir(dir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		key := p.Key(rel)
		_, err = p.store.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType(file)),
			Metadata:    map[string]string{DigestKey: build.Digest(data)},
		})
		if err != nil {
			return errors.New("E170").WithDetail("Upload of " + key + " failed").Wrap(err)
		}

		p.logger.Debug("uploaded", "key", key, "bytes", len(data))
		report.Keys = append(report.Keys, key)
		report.Bytes += int64(len(data))
		return nil
	})
	if err != nil {
		return report, errors.FromError(err, "E170")
	}
	return report, nil
}

func contentType(file string) string {
	if t := mime.TypeByExtension(filepath.Ext(file)); t != "" {
		return t
	}
	return "application/octet-stream"
}
