// Package selector implements types.Service over a primary backend and an
// optional fallback. Reads that fail on the primary are retried on the
// fallback and then degrade to empty or default values; writes go to the
// primary only.
package selector

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/pkg/types"
)

var _ types.Service = (*Service)(nil)

// Service routes each operation to the configured backends.
type Service struct {
	primary  types.Backend
	fallback types.Backend
	log      *zap.Logger
}

// New returns a Service backed by primary. fallback may be nil. A nil
// logger discards everything.
func New(primary, fallback types.Backend, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{primary: primary, fallback: fallback, log: log}
}

// Primary returns the backend that receives writes.
func (s *Service) Primary() types.Backend { return s.primary }

// Fallback returns the read fallback, or nil.
func (s *Service) Fallback() types.Backend { return s.fallback }

// shouldFallBack reports whether err is a backend failure worth retrying on
// the fallback. Bad input and cancellation are returned as they are.
func shouldFallBack(err error) bool {
	return !errors.Is(err, types.ErrValidation) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// read runs op on the primary and, when that fails and a fallback exists,
// on the fallback.
func read[T any](s *Service, name string, op func(types.Backend) (T, error)) (T, error) {
	v, err := op(s.primary)
	if err == nil {
		return v, nil
	}
	if s.fallback == nil || !shouldFallBack(err) {
		return v, err
	}

	s.log.Warn("primary backend failed, using fallback",
		zap.String("op", name),
		zap.Error(err),
	)
	v, ferr := op(s.fallback)
	if ferr != nil {
		return v, errors.Join(err, ferr)
	}
	return v, nil
}

// GetNavigationTree returns the public tree. It never fails: when no
// backend can answer the result is an empty tree.
func (s *Service) GetNavigationTree(ctx context.Context) types.NavigationData {
	data, err := read(s, "get navigation", func(b types.Backend) (types.NavigationData, error) {
		return b.NavigationTree(ctx)
	})
	if err != nil {
		s.log.Error("navigation unavailable, serving empty tree", zap.Error(err))
		return types.EmptyNavigation()
	}
	return data
}

// ReplaceNavigationTree writes data to the primary backend.
func (s *Service) ReplaceNavigationTree(ctx context.Context, data types.NavigationData) (types.ReplaceResult, error) {
	if err := s.primary.ReplaceNavigationTree(ctx, data); err != nil {
		return types.ReplaceResult{}, err
	}
	return types.ReplaceResult{Success: true}, nil
}

// GetSiteConfig returns the site configuration. It never fails: when no
// backend can answer the result is DefaultSiteConfig.
func (s *Service) GetSiteConfig(ctx context.Context) types.SiteConfig {
	cfg, err := read(s, "get site config", func(b types.Backend) (types.SiteConfig, error) {
		return b.SiteConfig(ctx)
	})
	if err != nil {
		s.log.Error("site config unavailable, serving defaults", zap.Error(err))
		return types.DefaultSiteConfig()
	}
	return cfg
}

// UpsertSiteConfig writes cfg to the primary backend.
func (s *Service) UpsertSiteConfig(ctx context.Context, cfg types.SiteConfig) (bool, error) {
	if err := s.primary.UpsertSiteConfig(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// AppendResourceMetadata records an asset on the primary backend.
func (s *Service) AppendResourceMetadata(ctx context.Context, path, versionRef string) (types.ResourceMetadataEntry, error) {
	return s.primary.AppendResourceMetadata(ctx, path, versionRef)
}

// ListResourceMetadata returns every entry, newest first, from the primary
// or else the fallback.
func (s *Service) ListResourceMetadata(ctx context.Context) ([]types.ResourceMetadataEntry, error) {
	return read(s, "list resource metadata", func(b types.Backend) ([]types.ResourceMetadataEntry, error) {
		return b.ListResourceMetadata(ctx)
	})
}

// DeleteResourceMetadata removes entries by id on the primary backend.
func (s *Service) DeleteResourceMetadata(ctx context.Context, ids []string) (types.DeleteResult, error) {
	n, err := s.primary.DeleteResourceMetadata(ctx, ids)
	if err != nil {
		return types.DeleteResult{}, err
	}
	return types.DeleteResult{DeletedCount: n}, nil
}
