package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"meeplemart/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStorage is durable blob storage with public URL resolution. Save and
// Delete address blobs by key; URL turns a key into the stable public
// locator; KeyFromURL reverses that for deletion and cache invalidation.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	URL(key string) string
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) string
}

type minioStorage struct {
	client    *minio.Client
	bucket    string
	endpoint  string
	useSSL    bool
	publicURL string // optional CDN / custom-domain base
}

func NewMinioStorage(cfg config.StorageConfig) (ObjectStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStorage{
		client:    client,
		bucket:    cfg.Bucket,
		endpoint:  cfg.Endpoint,
		useSSL:    cfg.UseSSL,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
// Called once at startup.
func EnsureBucket(ctx context.Context, storage ObjectStorage) error {
	s, ok := storage.(*minioStorage)
	if !ok {
		return nil
	}
	found, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *minioStorage) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *minioStorage) URL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}

// Delete removes a blob. A missing key is a no-op success; other errors are
// returned for the caller to log and swallow.
func (s *minioStorage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// KeyFromURL strips scheme, host and, for path-style endpoints, the bucket
// segment, leaving the object key. Returns "" for unparseable input.
func (s *minioStorage) KeyFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := strings.TrimPrefix(parsed.Path, "/")
	if s.publicURL == "" {
		path = strings.TrimPrefix(path, s.bucket+"/")
	}
	return path
}
