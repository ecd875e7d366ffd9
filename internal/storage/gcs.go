package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSConfig struct {
	Bucket string
	// CredentialsFile is a service account key. Empty uses application
	// default credentials.
	CredentialsFile string
	// PublicURL defaults to https://storage.googleapis.com/<bucket>.
	PublicURL string
}

// GCSStorage stores objects in a Google Cloud Storage bucket.
type GCSStorage struct {
	client    *gcs.Client
	bucket    *gcs.BucketHandle
	publicURL string
}

func NewGCSStorage(ctx context.Context, cfg GCSConfig) (*GCSStorage, error) {
	name := strings.TrimSpace(cfg.Bucket)
	if name == "" {
		return nil, ErrGCSBucketRequired
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = "https://storage.googleapis.com/" + name
	}
	return &GCSStorage{client: client, bucket: client.Bucket(name), publicURL: publicURL}, nil
}

func (s *GCSStorage) Close() error { return s.client.Close() }

// Put streams content to the object. The object only appears once the
// writer is closed without error.
func (s *GCSStorage) Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, content); err != nil {
		cancel()
		_ = w.Close()
		return "", fmt.Errorf("gcs put %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs put %s: %w", key, err)
	}
	return joinURL(s.publicURL, key), nil
}

func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	err := s.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}
