// Package modelstore downloads model weights from an S3-compatible
// bucket into the local cache directory, so services on the same host
// fetch each model at most once.
package modelstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// markerFile is written into a model directory once every object has
// been fetched. A directory without it is treated as a partial download
// and re-fetched from scratch.
const markerFile = ".download_complete"

// Config holds the bucket connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Prefix is the key prefix models live under, e.g. "models".
	Prefix string
}

// Store fetches model weight directories from object storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	logger zerolog.Logger
}

// New constructs a Store. It returns (nil, nil) when no endpoint is
// configured, which callers treat as "no bucket, use the registry".
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = "models"
	}

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
		logger: logger.With().Str("component", "modelstore").Logger(),
	}, nil
}

// Downloaded reports whether dir already holds a complete copy.
func Downloaded(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, markerFile))
	return err == nil
}

// Download fetches every object under <prefix>/<name>/ into destDir and
// writes the completion marker. It fails if the bucket holds no objects
// for the model, leaving destDir unmarked.
func (s *Store) Download(ctx context.Context, name, destDir string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("object store not configured")
	}

	objectPrefix := s.prefix + "/" + strings.Trim(name, "/") + "/"
	s.logger.Info().
		Str("bucket", s.bucket).
		Str("prefix", objectPrefix).
		Str("dest", destDir).
		Msg("downloading model weights")

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	count := 0
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    objectPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return fmt.Errorf("list model objects: %w", object.Err)
		}
		rel := strings.TrimPrefix(object.Key, objectPrefix)
		if rel == "" || strings.HasSuffix(object.Key, "/") {
			continue
		}
		local := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := s.client.FGetObject(ctx, s.bucket, object.Key, local, minio.GetObjectOptions{}); err != nil {
			return fmt.Errorf("fetch %s: %w", object.Key, err)
		}
		count++
	}

	if count == 0 {
		return fmt.Errorf("no objects under %s in bucket %s", objectPrefix, s.bucket)
	}

	if err := os.WriteFile(filepath.Join(destDir, markerFile), nil, 0o644); err != nil {
		return fmt.Errorf("write completion marker: %w", err)
	}

	s.logger.Info().Int("files", count).Str("model", name).Msg("model weights downloaded")
	return nil
}
