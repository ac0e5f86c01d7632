// Package media stores binary uploads (post images, avatars) on any
// S3-compatible object store and hands back public URLs.
package media

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goliatone/go-errors"
)

// Config carries the object store settings. Endpoint may be a bare host:port;
// the scheme is derived from DisableTLS.
type Config struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	PublicBaseURL  string
	DisableTLS     bool
	ForcePathStyle bool
}

// Store wraps an S3 client for a single bucket.
type Store struct {
	api           *s3.Client
	bucket        string
	endpoint      string
	publicBaseURL string
}

func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("media endpoint is required", errors.CategoryBadInput)
	}
	if cfg.Bucket == "" {
		return nil, errors.New("media bucket is required", errors.CategoryBadInput)
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("media credentials are required", errors.CategoryBadInput)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	scheme := "https"
	if cfg.DisableTLS {
		scheme = "http"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = fmt.Sprintf("%s://%s", scheme, endpoint)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to configure object store client")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &Store{
		api:           client,
		bucket:        cfg.Bucket,
		endpoint:      endpoint,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload stores body under key and returns the public URL for it.
func (s *Store) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryOperation, "failed to store object").
			WithMetadata(map[string]any{
				"bucket": s.bucket,
				"key":    key,
			})
	}

	return s.URLFor(key), nil
}

// Remove deletes the object under key. Deleting a missing object is not an
// error.
func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to delete object").
			WithMetadata(map[string]any{
				"bucket": s.bucket,
				"key":    key,
			})
	}

	return nil
}

// URLFor maps a key to its public URL, preferring the configured CDN base.
func (s *Store) URLFor(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}
