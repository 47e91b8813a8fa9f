// Package storage keeps uploaded documents and images in two S3 buckets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

//go:generate mockgen -source=./s3.go -destination=../mocks/mock_object_store.go -package=mocks ObjectStore

// Bucket names one of the two logical buckets.
type Bucket int

const (
	// FilesBucket holds opportunity documents, stored as uploaded.
	FilesBucket Bucket = iota
	// ImagesBucket holds re-encoded section images.
	ImagesBucket
)

func (b Bucket) String() string {
	switch b {
	case FilesBucket:
		return "files"
	case ImagesBucket:
		return "images"
	}
	return fmt.Sprintf("bucket(%d)", int(b))
}

// ObjectStore is the storage used by the upload and delete paths.
type ObjectStore interface {
	Put(ctx context.Context, bucket Bucket, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, bucket Bucket, key string) error
	PublicURL(bucket Bucket, key string) string
}

type Config struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	// PublicURL is the base that object URLs are built on. When empty the
	// endpoint, or the regional AWS host, is used.
	PublicURL    string
	FilesBucket  string
	ImagesBucket string
}

type S3Store struct {
	client  *s3.Client
	config  Config
	buckets map[Bucket]string
}

// NewS3Store builds a client from cfg. Static keys are used when given,
// otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewS3StoreWithClient(client, cfg), nil
}

func NewS3StoreWithClient(client *s3.Client, cfg Config) *S3Store {
	return &S3Store{
		client: client,
		config: cfg,
		buckets: map[Bucket]string{
			FilesBucket:  cfg.FilesBucket,
			ImagesBucket: cfg.ImagesBucket,
		},
	}
}

func (s *S3Store) bucketName(b Bucket) (string, error) {
	name, ok := s.buckets[b]
	if !ok || name == "" {
		return "", fmt.Errorf("no bucket configured for %s", b)
	}
	return name, nil
}

// Put uploads body under key. Existing keys are never overwritten.
func (s *S3Store) Put(ctx context.Context, bucket Bucket, key string, body io.Reader, contentType string) error {
	name, err := s.bucketName(bucket)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(name),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to s3: %w", err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, bucket Bucket, key string) error {
	name, err := s.bucketName(bucket)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(name),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *S3Store) PublicURL(bucket Bucket, key string) string {
	name := s.buckets[bucket]
	escaped := escapeKey(key)

	switch {
	case s.config.PublicURL != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.config.PublicURL, "/"), name, escaped)
	case s.config.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.config.Endpoint, "/"), name, escaped)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", name, s.config.Region, escaped)
	}
}

// EnsureBuckets creates any missing bucket. Used at startup against local
// MinIO; production buckets are expected to exist.
func (s *S3Store) EnsureBuckets(ctx context.Context) error {
	for _, b := range []Bucket{FilesBucket, ImagesBucket} {
		name, err := s.bucketName(b)
		if err != nil {
			return err
		}

		if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)}); err == nil {
			continue
		}

		_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(name)})
		if err != nil && !isBucketAlreadyExists(err) {
			return fmt.Errorf("failed to create bucket %s: %w", name, err)
		}
	}
	return nil
}

func isBucketAlreadyExists(err error) bool {
	var exists *types.BucketAlreadyExists
	var owned *types.BucketAlreadyOwnedByYou
	return errors.As(err, &exists) || errors.As(err, &owned)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
