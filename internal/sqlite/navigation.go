package sqlite

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/internal/tree"
	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// NavigationTree returns the public tree built from enabled rows. No rows
// yields an empty forest, not an error.
func (s *Store) NavigationTree(ctx context.Context) (types.NavigationData, error) {
	return s.buildTree(ctx, false)
}

// ExportNavigationTree returns the tree including disabled rows.
func (s *Store) ExportNavigationTree(ctx context.Context) (types.NavigationData, error) {
	return s.buildTree(ctx, true)
}

func (s *Store) buildTree(ctx context.Context, all bool) (types.NavigationData, error) {
	items, resources, err := s.loadRows(ctx, all)
	if err != nil {
		return types.NavigationData{}, err
	}
	return types.NavigationData{NavigationItems: tree.Build(items, resources)}, nil
}

// ReplaceNavigationTree deletes every resource and navigation item, then
// inserts data in pre-order so no row is written before the row it refers
// to. Input is validated before the first statement.
//
// The statements are not wrapped in a transaction. If the very first
// statement fails nothing has changed and the error is a StoreError; any
// later failure returns a PartialReplaceError and the replace should be run
// again.
func (s *Store) ReplaceNavigationTree(ctx context.Context, data types.NavigationData) error {
	items, resources, err := tree.Flatten(data.NavigationItems)
	if err != nil {
		return err
	}

	total := len(items) + len(resources)
	byOwner := make(map[string][]tree.ResourceRow, len(items))
	for _, r := range resources {
		byOwner[r.NavigationItemID] = append(byOwner[r.NavigationItemID], r)
	}

	if _, err := mutate(ctx, s, "delete resources", deleteAllResources); err != nil {
		return err
	}
	if _, err := mutate(ctx, s, "delete navigation items", deleteAllItems); err != nil {
		return s.partial(targetNavigation, "delete", 0, total, err)
	}

	now := s.timestamp()
	written := 0
	for _, item := range items {
		if err := s.insertItemRow(ctx, item, now); err != nil {
			return s.partial(targetNavigation, "insert", written, total, err)
		}
		written++
		for _, r := range byOwner[item.ID] {
			if err := s.insertResourceRow(ctx, r, now); err != nil {
				return s.partial(targetNavigation, "insert", written, total, err)
			}
			written++
		}
	}

	s.log.Info("navigation tree replaced",
		zap.Int("items", len(items)),
		zap.Int("resources", len(resources)),
	)
	return nil
}

// Replace targets named in PartialReplaceError.
const (
	targetNavigation       = "navigation"
	targetResourceMetadata = "resource metadata"
)

// partial classifies a failure that happened after a replace had already
// deleted rows.
func (s *Store) partial(target, stage string, written, total int, err error) error {
	if errors.Is(err, types.ErrDetached) {
		return err
	}
	s.log.Error("replace left partial state",
		zap.String("target", target),
		zap.String("stage", stage),
		zap.Int("written", written),
		zap.Int("total", total),
		zap.Error(err),
	)
	return &types.PartialReplaceError{Target: target, Stage: stage, Written: written, Total: total, Err: err}
}
