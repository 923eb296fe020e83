package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"
)

const publicCacheControl = "public, max-age=3600"

// GCSStore uploads objects to a Google Cloud Storage bucket.
type GCSStore struct {
	svc    *storage.Service
	bucket string
}

// NewGCSStore creates a GCS store. Without a credentials file the
// application default credentials are used.
func NewGCSStore(ctx context.Context, bucket, credentialsFile string, opts ...option.ClientOption) (*GCSStore, error) {
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}
	return &GCSStore{svc: svc, bucket: bucket}, nil
}

// Put uploads the object and returns its public URL
func (s *GCSStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	obj := &storage.Object{
		Name:         key,
		ContentType:  contentType,
		CacheControl: publicCacheControl,
	}
	if _, err := s.svc.Objects.Insert(s.bucket, obj).
		Media(r, googleapi.ContentType(contentType)).
		Context(ctx).
		Do(); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, url.PathEscape(key)), nil
}
