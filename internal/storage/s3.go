package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rabbitt-learning/certgen/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store uploads certificate images to S3 and hands back their public URL.
// A single failed upload is a single failed render: no retries, no
// partial-upload recovery.
type Store struct {
	bucket        string
	region        string
	publicBaseURL string
	s3Client      S3API
	logger        *logging.Logger
}

// NewStore creates an artifact Store backed by S3.
func NewStore(s3Client S3API, bucket, region, publicBaseURL string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		s3Client:      s3Client,
		logger:        logger,
	}
}

// Put uploads bytes under key with a single attempt and returns the public
// URL. The URL is resolvable as soon as Put returns.
func (s *Store) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if s.s3Client == nil || s.bucket == "" {
		return "", fmt.Errorf("storage: store not configured")
	}

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: s3 put %s: %w", key, err)
	}

	url := s.URLFor(key)
	s.logger.Info("artifact uploaded", "key", key, "bytes", len(body), "url", url)
	return url, nil
}

// URLFor returns the public URL an object will have once uploaded under key.
// Deterministic so callers can embed the URL in the image itself (QR code)
// before the upload happens.
func (s *Store) URLFor(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
