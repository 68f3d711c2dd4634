package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage archives uploaded legal documents. The index holds only chunks, so
// this is the system of record for the original files.
type Storage interface {
	// Upload stores a document and returns its storage path
	Upload(ctx context.Context, docID uuid.UUID, filename string, data io.Reader) (string, error)

	// Download retrieves a document by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a document by storage path
	Delete(ctx context.Context, storagePath string) error
}

// Backend selects the storage implementation.
type Backend string

const (
	BackendLocal Backend = "local"
	BackendS3    Backend = "s3"
)

// Config holds settings for constructing a Storage.
type Config struct {
	Backend   Backend
	LocalPath string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// New creates a Storage for the configured backend.
func New(cfg Config) (Storage, error) {
	switch cfg.Backend {
	case BackendLocal:
		return NewLocal(cfg.LocalPath)
	case BackendS3:
		return NewS3(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// NewFromEnv creates a Storage from environment variables. STORAGE_TYPE
// selects the backend and defaults to local disk.
func NewFromEnv() (Storage, error) {
	backend := Backend(os.Getenv("STORAGE_TYPE"))
	if backend == "" {
		backend = BackendLocal
	}

	switch backend {
	case BackendLocal:
		localPath := os.Getenv("STORAGE_LOCAL_PATH")
		if localPath == "" {
			localPath = "./storage/documents"
		}
		return NewLocal(localPath)

	case BackendS3:
		cfg := Config{
			Backend:   BackendS3,
			Bucket:    os.Getenv("AWS_S3_BUCKET"),
			Region:    os.Getenv("AWS_REGION"),
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		}
		if cfg.Region == "" {
			cfg.Region = "us-east-1"
		}
		if cfg.Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}
		return NewS3(cfg)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

var pathSanitizer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// objectPath builds the storage path for a document. The two-character prefix
// spreads documents across directories; the UUID keeps paths unique however
// often the same filename is uploaded.
func objectPath(docID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	base := pathSanitizer.Replace(strings.TrimSuffix(filename, ext))
	id := docID.String()
	return fmt.Sprintf("%s/%s_%s%s", id[:2], id, base, ext)
}
