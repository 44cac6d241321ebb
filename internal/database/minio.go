package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dkstore_back_end/internal/config"
)

// ConnectMinIO returns nil, nil when object storage is not configured.
// The bucket is created on first start.
func ConnectMinIO(ctx context.Context, cfg config.MinIO) (*minio.Client, error) {
	if !cfg.Enabled() {
		slog.Warn("MINIO_ENDPOINT not set, image uploads disabled")
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio create bucket %s: %w", cfg.Bucket, err)
		}
		slog.Info("minio bucket created", "bucket", cfg.Bucket)
	}

	slog.Info("minio connected", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return client, nil
}
