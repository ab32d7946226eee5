package filestorage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	"github.com/yigit/filechat/internal/pkg/apperrors"
)

// S3Config holds the connection settings of an S3-compatible gateway
type S3Config struct {
	Endpoint    string
	Region      string
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	MaxFileSize int64
}

// ObjectStorage uploads attachments to an S3-compatible bucket
type ObjectStorage struct {
	client      objectPutter
	bucket      string
	maxFileSize int64
	logger      zerolog.Logger
}

// NewS3Storage creates an ObjectStorage backed by a minio client.
// Path-style addressing is forced since the Storj gateway requires it.
func NewS3Storage(cfg S3Config, logger zerolog.Logger) (*ObjectStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	logger.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Msg("Object storage client configured")
	return newObjectStorage(client, cfg.Bucket, cfg.MaxFileSize, logger), nil
}

func newObjectStorage(client objectPutter, bucket string, maxFileSize int64, logger zerolog.Logger) *ObjectStorage {
	return &ObjectStorage{
		client:      client,
		bucket:      bucket,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Upload puts data under key. Oversized blobs are rejected before anything is sent.
func (s *ObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	size := int64(len(data))
	if s.maxFileSize > 0 && size > s.maxFileSize {
		s.logger.Warn().Str("key", key).Int64("size", size).Int64("maxSize", s.maxFileSize).Msg("Rejected oversized attachment")
		return apperrors.ErrFileTooLarge
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		// The error response code is enough to diagnose credential or policy failures
		s.logger.Error().Err(err).
			Str("key", key).
			Str("bucket", s.bucket).
			Str("code", minio.ToErrorResponse(err).Code).
			Msg("Failed to upload attachment")
		return apperrors.NewUploadError("failed to upload attachment", err)
	}

	s.logger.Info().Str("key", key).Int64("size", info.Size).Str("etag", info.ETag).Msg("Attachment uploaded")
	return nil
}
