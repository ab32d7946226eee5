package filestorage

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
)

// Uploader pushes attachment bytes to an object store under a key.
// A nil error means the store acknowledged the write.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Resolver derives the public URLs of a stored attachment
type Resolver interface {
	Resolve(fileName, contentType string) (fileURL string, thumbnailURL *string)
}

// objectPutter is the subset of *minio.Client used for uploads
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}
