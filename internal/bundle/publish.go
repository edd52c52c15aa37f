package bundle

import (
	"context"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/sdfexport/internal/config"
	"github.com/Faultbox/sdfexport/internal/logger"
)

// ContentType of uploaded bundles.
const ContentType = "application/gzip"

// Publisher uploads bundles to a bucket.
type Publisher struct {
	client *minio.Client
	bucket string
}

// NewPublisher creates a MinIO client for cfg. No request is made until
// Publish.
func NewPublisher(cfg config.PublishConfig) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, errors.New("publish endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.SSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "MinIO client initialization failed")
	}
	return &Publisher{client: client, bucket: cfg.Bucket}, nil
}

// ObjectKey is where a bundle of one run is stored.
func ObjectKey(runID, file string) string {
	return path.Join("sdfexport", runID, filepath.Base(file))
}

// Publish uploads file under key, creating the bucket if needed.
func (p *Publisher) Publish(ctx context.Context, file, key string) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return errors.Wrap(err, "could not check bucket")
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
			return errors.Wrapf(err, "could not create bucket %s", p.bucket)
		}
		logger.Info("created bucket", zap.String("bucket", p.bucket))
	}

	info, err := p.client.FPutObject(ctx, p.bucket, key, file, minio.PutObjectOptions{ContentType: ContentType})
	if err != nil {
		return errors.Wrap(err, "failed to upload to MinIO")
	}
	logger.Info("bundle published",
		zap.String("bucket", p.bucket),
		zap.String("key", key),
		zap.Int64("size", info.Size))
	return nil
}
