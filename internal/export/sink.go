// Package export writes interaction log CSV files to a destination outside the
// session: a local directory or an S3 bucket.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ContentType of every exported file
const ContentType = "text/csv; charset=utf-8"

// ErrNoSink is returned when exporting without a configured destination
var ErrNoSink = errors.New("no export destination configured")

// Sink stores one exported file and returns where it ended up
type Sink interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// FileName returns the export file name for a session
func FileName(sessionID string, now time.Time) string {
	return fmt.Sprintf("interactions-%s-%d.csv", sanitizeName(sessionID), now.Unix())
}

// sanitizeName keeps IDs from escaping the target directory or key prefix
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

// FileSink writes exports into a local directory
type FileSink struct {
	dir string
}

// NewFileSink creates the directory if needed
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Write stores data as dir/name
func (f *FileSink) Write(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(f.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// PutObjectAPI is the subset of the S3 client the sink needs
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads exports to a bucket under a key prefix
type S3Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Sink loads the default AWS configuration for region and creates the sink
func NewS3Sink(ctx context.Context, bucket, region, prefix string) (*S3Sink, error) {
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3SinkWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3SinkWithClient wraps an existing client
func NewS3SinkWithClient(client PutObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Write uploads data as prefix/name
func (s *S3Sink) Write(ctx context.Context, name string, data []byte) (string, error) {
	key := filepath.Base(name)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export to S3: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
