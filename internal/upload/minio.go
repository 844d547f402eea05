package upload

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const objectPrefix = "customers/"

// MinIOConfig configures a MinIOStore.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Region skips the bucket location lookup when set.
	Region string
	// PublicURL is the base URL objects are served from. Defaults to the
	// endpoint URL followed by the bucket name.
	PublicURL string
}

// MinIOStore uploads images to an S3-compatible bucket.
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	region    string
	publicURL string

	bucketReady atomic.Bool
}

// NewMinIOStore creates a MinIO-backed store. The bucket is checked lazily on
// the first upload so startup does not depend on the object store.
func NewMinIOStore(cfg MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimRight(client.EndpointURL().String(), "/") + "/" + cfg.Bucket
	}

	return &MinIOStore{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		publicURL: publicURL,
	}, nil
}

// ensureBucket creates the bucket on first use. No lock is held across the
// network calls: concurrent first uploads may each check, and losing the
// MakeBucket race to another upload counts as success.
func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	if s.bucketReady.Load() {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			return fmt.Errorf("create bucket: %w", err)
		}
	}

	s.bucketReady.Store(true)
	return nil
}

// Save uploads the image as customers/<name> and returns its public URL.
func (s *MinIOStore) Save(ctx context.Context, r io.Reader, size int64, contentType, name string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := objectPrefix + name
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"Uploaded-At": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return s.publicURL + "/" + key, nil
}

// Delete removes an object previously returned by Save. Unknown URLs are ignored.
func (s *MinIOStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || !strings.HasPrefix(key, objectPrefix) {
		return nil
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
