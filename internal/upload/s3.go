package upload

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3KeyPrefix = "products"

// ObjectAPI is the subset of *s3.Client used by S3Storage.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type S3Options struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

type S3Storage struct {
	api       ObjectAPI
	bucket    string
	publicURL string
}

var _ Storage = (*S3Storage)(nil)

// NewS3Client builds a client for AWS or an S3-compatible server such as
// MinIO. Static credentials are used when both keys are set; otherwise the
// default AWS credential chain applies.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(o.Region),
	}
	if o.AccessKey != "" && o.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
			so.UsePathStyle = true
		}
	}), nil
}

func NewS3Storage(api ObjectAPI, bucket, publicURL string) *S3Storage {
	return &S3Storage{
		api:       api,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Save uploads f under products/<uuid><ext>. The returned reference is the
// public URL of the object when one is configured, else the object key.
func (s *S3Storage) Save(ctx context.Context, f File) (string, error) {
	if f.Body == nil {
		return "", ErrNoFile
	}

	key := path.Join(s3KeyPrefix, storedName(f.Name))

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f.Body,
	}
	if f.ContentType != "" {
		in.ContentType = aws.String(f.ContentType)
	}
	if f.Size > 0 {
		in.ContentLength = aws.Int64(f.Size)
	}

	if _, err := s.api.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	if s.publicURL == "" {
		return key, nil
	}
	return s.publicURL + "/" + key, nil
}

func (s *S3Storage) Ping(ctx context.Context) error {
	_, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	return nil
}
