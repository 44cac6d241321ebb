// Package services wraps external storage used by the HTTP layer.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"dkstore_back_end/internal/config"
)

var ErrStorageDisabled = errors.New("object storage not configured")

// ImageStore keeps product images in a MinIO bucket.
type ImageStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	private bool
	ttl     time.Duration
	log     *slog.Logger
}

// NewImageStore accepts a nil client; every write then fails with ErrStorageDisabled.
func NewImageStore(client *minio.Client, cfg config.MinIO) *ImageStore {
	base := cfg.PublicURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &ImageStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(base, "/"),
		private: cfg.Private,
		ttl:     cfg.SignedURLTTL,
		log:     slog.Default().With("component", "images"),
	}
}

func (s *ImageStore) Enabled() bool { return s != nil && s.client != nil }

// Private reports whether stored URLs must be presigned before they are served.
func (s *ImageStore) Private() bool { return s.Enabled() && s.private }

// ObjectKey names a new object for a product image, keeping the extension.
func ObjectKey(productID uint, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("products/%d/%s%s", productID, uuid.NewString(), ext)
}

func (s *ImageStore) URLFor(key string) string {
	return s.baseURL + "/" + key
}

// KeyFromURL reverses URLFor. ok is false for URLs outside this bucket.
func (s *ImageStore) KeyFromURL(raw string) (string, bool) {
	key, found := strings.CutPrefix(raw, s.baseURL+"/")
	if !found || key == "" {
		return "", false
	}
	return key, true
}

// Put uploads r and returns its object key and public URL.
func (s *ImageStore) Put(ctx context.Context, productID uint, filename, contentType string, r io.Reader, size int64) (key, publicURL string, err error) {
	if !s.Enabled() {
		return "", "", ErrStorageDisabled
	}
	key = ObjectKey(productID, filename)
	_, err = s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return "", "", fmt.Errorf("upload %s: %w", key, err)
	}
	s.log.InfoContext(ctx, "image uploaded", "key", key, "size", size)
	return key, s.URLFor(key), nil
}

// Remove deletes a stored object. An empty key is a no-op.
func (s *ImageStore) Remove(ctx context.Context, key string) error {
	if !s.Enabled() || key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// SignedURL returns a time limited GET link for a stored image. URLs outside
// the bucket come back unchanged. ttl <= 0 uses the configured lifetime.
func (s *ImageStore) SignedURL(ctx context.Context, imageURL string, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", ErrStorageDisabled
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	key, ok := s.KeyFromURL(imageURL)
	if !ok {
		return imageURL, nil
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}
