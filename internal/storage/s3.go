// Package storage keeps uploaded profile images in an S3 compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"sunday-market/internal/core/config"
)

// MaxImageBytes caps a single upload.
const MaxImageBytes = 5 << 20

var (
	ErrNotImage = errors.New("file is not a supported image")
	ErrTooLarge = errors.New("file is too large")
)

var allowed = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageStore saves an image and returns its public URL. DeleteImage takes
// a URL previously returned by PutImage.
type ImageStore interface {
	PutImage(ctx context.Context, owner string, r io.Reader) (string, error)
	DeleteImage(ctx context.Context, url string) error
}

var ErrForeignURL = errors.New("url does not belong to this bucket")

type S3Store struct {
	api      s3iface.S3API
	bucket   string
	endpoint string
	region   string
	secure   bool
}

// NewS3 builds a store from config. An Endpoint selects path-style
// addressing for MinIO and similar servers.
func NewS3(cfg config.S3) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	ac := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		ac.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		ac.Endpoint = aws.String(cfg.Endpoint)
		ac.S3ForcePathStyle = aws.Bool(true)
		ac.DisableSSL = aws.Bool(cfg.DisableSSL)
	}
	sess, err := session.NewSession(ac)
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}
	return NewS3WithAPI(s3.New(sess), cfg), nil
}

func NewS3WithAPI(api s3iface.S3API, cfg config.S3) *S3Store {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return &S3Store{
		api:      api,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		region:   region,
		secure:   !cfg.DisableSSL,
	}
}

// EnsureBucket creates the bucket when HeadBucket cannot see it.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.api.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if _, err := s.api.CreateBucketWithContext(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// PutImage sniffs the content type, rejects anything but common web image
// formats and stores the bytes under avatars/<owner>/.
func (s *S3Store) PutImage(ctx context.Context, owner string, r io.Reader) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(body) > MaxImageBytes {
		return "", ErrTooLarge
	}
	mt := mimetype.Detect(body)
	if !allowed[mt.String()] {
		return "", ErrNotImage
	}

	key := fmt.Sprintf("avatars/%s/%s%s", owner, uuid.NewString(), mt.Extension())
	_, err = s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(mt.String()),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return s.url(key), nil
}

func (s *S3Store) DeleteImage(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, s.url(""))
	if key == url || key == "" {
		return ErrForeignURL
	}
	_, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) url(key string) string {
	if s.endpoint != "" && !strings.Contains(s.endpoint, "amazonaws.com") {
		scheme := "http"
		if s.secure {
			scheme = "https"
		}
		host := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "http://"), "https://")
		return fmt.Sprintf("%s://%s/%s/%s", scheme, strings.TrimRight(host, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
