package cloudwriter

import (
	"context"
	"fmt"
	"strings"

	"github.com/chrisdamba/foodrollup/internal/models"
)

// CloudWriter buffers one object; the upload happens on Close.
type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}

// New returns the writer factory for the configured provider. Every supported provider speaks the S3 API.
func New(ctx context.Context, cfg models.CloudStorageConfig) (CloudWriterFactory, error) {
	switch strings.ToLower(cfg.Provider) {
	case "s3", "r2", "minio":
		return NewS3WriterFactory(ctx, cfg)
	}
	return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.Provider)
}
