package storage

import (
	"fmt"
	"io"

	cfg "github.com/questline/questline/internal/config"
)

// Storage defines the interface for verification-photo storage backends.
type Storage interface {
	// Save stores a file at the given path
	Save(path string, file io.Reader) error

	// Delete removes a file at the given path
	Delete(path string) error

	// URL returns a URL for accessing the file
	URL(path string) string
}

// New creates the storage backend selected by configuration.
// "local" keeps photos on disk under the upload directory (the default);
// "s3" targets any S3-compatible bucket (AWS, MinIO, R2, DO Spaces).
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case "", "local":
		return NewLocalStorage(c.UploadDir)
	case "s3":
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
