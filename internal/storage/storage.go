// Package storage holds uploaded files. Profile images are its only
// tenant; keys look like "profiles/<owner>_<unix-ms>.<ext>".
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dukerupert/shelf/internal"
	"github.com/dukerupert/shelf/internal/domain"
)

// Storage writes and removes objects. Put returns the URL clients use to
// fetch the object. Delete of a missing key is not an error.
type Storage interface {
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var (
	ErrR2AccountIDRequired   = errors.New("storage: R2 account ID or endpoint is required")
	ErrR2CredentialsRequired = errors.New("storage: R2 credentials are required")
	ErrR2BucketRequired      = errors.New("storage: R2 bucket name is required")
	ErrR2PublicURLRequired   = errors.New("storage: R2 public URL is required")
	ErrGCSBucketRequired     = errors.New("storage: GCS bucket name is required")
)

// NewStorage picks the backend named by cfg.Provider. Empty means local.
func NewStorage(ctx context.Context, cfg internal.StorageConfig) (Storage, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
	case "r2":
		return NewR2Storage(ctx, R2Config{
			AccountID:   cfg.R2AccountID,
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretKey,
			BucketName:  cfg.R2BucketName,
			PublicURL:   cfg.R2PublicURL,
			Endpoint:    cfg.R2Endpoint,
		})
	case "gcs":
		return NewGCSStorage(ctx, GCSConfig{
			Bucket:          cfg.GCSBucket,
			CredentialsFile: cfg.GCSCredentialsFile,
			PublicURL:       cfg.GCSPublicURL,
		})
	}
	return nil, fmt.Errorf("storage: unknown provider %q", cfg.Provider)
}

// validateKey rejects keys that are empty, absolute, unclean or that climb
// out of the store root.
func validateKey(key string) error {
	bad := key == "" ||
		strings.HasPrefix(key, "/") ||
		strings.Contains(key, `\`) ||
		path.Clean(key) != key ||
		key == ".." || strings.HasPrefix(key, "../")
	if bad {
		return domain.Invalid("storage.key", fmt.Sprintf("invalid storage key: %q", key))
	}
	return nil
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}
