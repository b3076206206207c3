package cloudwriter

import (
	"context"
	"testing"

	"github.com/chrisdamba/foodrollup/internal/models"
)

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), models.CloudStorageConfig{Provider: "floppy"}); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}
}

func TestS3WriterFactory(t *testing.T) {
	factory, err := New(context.Background(), models.CloudStorageConfig{
		Provider:        "minio",
		Region:          "us-east-1",
		Endpoint:        "localhost:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := factory.NewWriter("", "reports/a.parquet"); err == nil {
		t.Fatalf("expected error without a bucket")
	}

	w, err := factory.NewWriter("analytics", "/reports/a.parquet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s3w := w.(*S3Writer)
	if s3w.objectPath != "reports/a.parquet" {
		t.Fatalf("expected leading slash trimmed, got %s", s3w.objectPath)
	}
	if n, err := w.Write([]byte("PAR1")); err != nil || n != 4 || s3w.buffer.Len() != 4 {
		t.Fatalf("expected buffered write, got n=%d err=%v", n, err)
	}
}
