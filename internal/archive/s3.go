// Package archive stores uploaded source files in S3, keyed by content hash,
// so every import batch can be traced back to the exact bytes it read.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putter is the part of *s3.Client the archiver uses.
type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures where files are written.
type Options struct {
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string
	UsePathStyle bool
	Timeout      time.Duration
}

// S3Archiver uploads source files to a bucket.
type S3Archiver struct {
	client  putter
	bucket  string
	prefix  string
	timeout time.Duration
}

var _ core.SourceArchiver = (*S3Archiver)(nil)

// New loads AWS credentials from the default chain and returns an archiver
// for opts.Bucket.
func New(ctx context.Context, opts Options) (*S3Archiver, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return newArchiver(client, opts), nil
}

func newArchiver(client putter, opts Options) *S3Archiver {
	return &S3Archiver{
		client:  client,
		bucket:  opts.Bucket,
		prefix:  opts.Prefix,
		timeout: opts.Timeout,
	}
}

// Key returns the object key for a file: prefix/hash/base-name.
func (a *S3Archiver) Key(fileName, hash string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "source"
	}
	return strings.TrimSuffix(a.prefix, "/") + "/" + hash + "/" + name
}

// Archive uploads data and returns the object key. Uploading the same
// content twice overwrites the same key.
func (a *S3Archiver) Archive(ctx context.Context, fileName, hash string, data []byte) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	key := a.Key(fileName, hash)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(fileName)),
		Metadata: map[string]string{
			"source-filename": fileName,
			"sha256":          hash,
		},
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}

func contentType(fileName string) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
