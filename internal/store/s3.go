// Package store holds the worker's collaborators: the S3 object store for
// media bytes and the Postgres listing store for property records.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config configures the media bucket client. Endpoint is optional and
// used for S3-compatible stores (MinIO and friends).
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
	UsePathStyle    bool
}

// ObjectStore reads originals from and writes thumbnails to the media
// bucket.
type ObjectStore struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
}

func NewObjectStore(ctx context.Context, cfg S3Config) (*ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
		}
	})

	return &ObjectStore{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
	}, nil
}

// Download copies the object at key into a temporary file and returns its
// path with a cleanup func the caller must run.
func (s *ObjectStore) Download(ctx context.Context, key string) (string, func() error, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
	})
	if err != nil {
		return "", nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	temp, err := os.CreateTemp("", "media-src-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(temp, out.Body); err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return "", nil, fmt.Errorf("copy object to disk: %w", err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(temp.Name())
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}

	cleanup := func() error { return os.Remove(temp.Name()) }
	return temp.Name(), cleanup, nil
}

// Upload stores the file at path under key. An empty contentType is sniffed
// from the file itself, so a WebP thumbnail derived from an MP4 is not
// mislabeled with the original's type.
func (s *ObjectStore) Upload(ctx context.Context, key, path, contentType string) error {
	if contentType == "" {
		ct, err := detectMime(path)
		if err != nil {
			return err
		}
		contentType = ct
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload source: %w", err)
	}
	defer file.Close()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &s.cfg.Bucket,
		Key:         &key,
		Body:        file,
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// Exists probes whether key resolves to a stored object. Used to verify a
// derived thumbnail URL before trusting it; the naming convention alone
// never guarantees existence.
func (s *ObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head object %s: %w", key, err)
	}
	return true, nil
}

// URLFor builds the public URL for a stored key.
func (s *ObjectStore) URLFor(key string) string {
	base := s.cfg.PublicBaseURL
	if base == "" {
		if s.cfg.Endpoint != "" {
			base = fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket)
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.Bucket, s.cfg.Region)
		}
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func detectMime(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for mime detect: %w", err)
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read for mime detect: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}
