package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures S3Source.
type S3Config struct {
	// Endpoint is host[:port] or a URL; an https URL turns on TLS.
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
	MaxBytes        int64
}

// S3Source reads CSV objects from S3-compatible storage.
type S3Source struct {
	client   *minio.Client
	maxBytes int64
}

// NewS3Source creates an S3Source for the configured endpoint.
func NewS3Source(cfg S3Config) (*S3Source, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("s3 endpoint is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("s3 credentials are required")
	}

	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &S3Source{client: client, maxBytes: cfg.MaxBytes}, nil
}

// Fetch reads the object named by an s3://bucket/key locator.
func (s *S3Source) Fetch(ctx context.Context, locator string) (string, error) {
	bucket, key, err := splitS3Locator(locator)
	if err != nil {
		return "", &FetchError{Locator: locator, Err: err}
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", s3Error(locator, err)
	}
	defer obj.Close()

	text, err := ReadText(obj, s.maxBytes)
	if err != nil {
		return "", s3Error(locator, err)
	}
	return text, nil
}

// splitS3Locator parses s3://bucket/key.
func splitS3Locator(locator string) (bucket, key string, err error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", "", err
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("want s3://bucket/key, got %q", locator)
	}
	return bucket, key, nil
}

func s3Error(locator string, err error) *FetchError {
	fe := &FetchError{Locator: locator, Err: err}
	if resp := minio.ToErrorResponse(err); resp.StatusCode != 0 {
		fe.StatusCode = resp.StatusCode
	}
	return fe
}
