package modelstore

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Resolver decides where the runtime should load a model's weights
// from: a complete local cache copy, a fresh bucket download, or the
// model's registry identifier as the last resort.
type Resolver struct {
	store    *Store
	cacheDir string
	logger   zerolog.Logger
}

// NewResolver constructs a Resolver. store may be nil when no bucket is
// configured; resolution then goes cache, then registry.
func NewResolver(store *Store, cacheDir string, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:    store,
		cacheDir: cacheDir,
		logger:   logger.With().Str("component", "modelstore").Logger(),
	}
}

// Resolve returns the path the runtime should load from. cacheName is
// the model's directory name in the bucket and cache; registryID is the
// upstream identifier used when neither cache nor bucket can serve.
func (r *Resolver) Resolve(ctx context.Context, cacheName, registryID string) string {
	dir := filepath.Join(r.cacheDir, cacheName)

	if Downloaded(dir) {
		r.logger.Debug().Str("model", cacheName).Str("path", dir).Msg("using cached model weights")
		return dir
	}

	if r.store != nil {
		if err := r.store.Download(ctx, cacheName, dir); err == nil {
			return dir
		} else {
			r.logger.Warn().Err(err).Str("model", cacheName).Msg("bucket download failed, falling back to registry")
		}
	}

	return registryID
}
