package sqlite

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/pkg/types"
)

const (
	selectResourceMetadata = "SELECT id, path, commit_hash, created_at FROM resource_metadata ORDER BY created_at DESC, rowid DESC"
	insertResourceMetadata = "INSERT INTO resource_metadata (id, path, commit_hash, created_at) VALUES (?, ?, ?, ?)"
	deleteAllMetadata      = "DELETE FROM resource_metadata"
)

func decodeMetadata(r record) types.ResourceMetadataEntry {
	return types.ResourceMetadataEntry{
		ID:         r.str("id"),
		Path:       r.str("path"),
		VersionRef: r.str("commit_hash"),
		CreatedAt:  r.timeAt("created_at"),
	}
}

// AppendResourceMetadata records an uploaded asset under a fresh UUID v7.
func (s *Store) AppendResourceMetadata(ctx context.Context, path, versionRef string) (types.ResourceMetadataEntry, error) {
	if path == "" {
		return types.ResourceMetadataEntry{}, types.ErrMissingPath
	}

	now := s.now().UTC()
	entry := types.ResourceMetadataEntry{
		ID:         s.newID(),
		Path:       path,
		VersionRef: versionRef,
		CreatedAt:  now,
	}
	_, err := mutate(ctx, s, "insert resource metadata", insertResourceMetadata,
		entry.ID, entry.Path, nullable(entry.VersionRef), formatTime(now))
	if err != nil {
		return types.ResourceMetadataEntry{}, err
	}
	return entry, nil
}

// ListResourceMetadata returns every entry, newest first. Entries written in
// the same instant come back in reverse insertion order.
func (s *Store) ListResourceMetadata(ctx context.Context) ([]types.ResourceMetadataEntry, error) {
	return query(ctx, s, "select resource metadata", decodeMetadata, selectResourceMetadata)
}

// DeleteResourceMetadata removes the entries whose ids appear in ids and
// reports how many rows were actually removed. Unknown ids are ignored.
func (s *Store) DeleteResourceMetadata(ctx context.Context, ids []string) (int, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return 0, types.ErrEmptyIDSet
	}

	args := make([]any, len(unique))
	for i, id := range unique {
		args[i] = id
	}
	n, err := mutate(ctx, s, "delete resource metadata",
		"DELETE FROM resource_metadata WHERE id IN ("+placeholders(len(unique))+")", args...)
	if err != nil {
		return 0, err
	}
	s.log.Debug("resource metadata deleted", zap.Int("requested", len(unique)), zap.Int64("deleted", n))
	return int(n), nil
}

// ReplaceResourceMetadata swaps the whole log for entries, keeping their ids
// and timestamps. Entries are given newest first, as List returns them.
//
// The whole log is validated before the first statement. Failure of the
// DELETE leaves the log untouched and is a StoreError; a failed insert after
// it is a PartialReplaceError and the replace should be run again.
func (s *Store) ReplaceResourceMetadata(ctx context.Context, entries []types.ResourceMetadataEntry) error {
	if err := types.ValidateResourceMetadata(entries); err != nil {
		return err
	}

	if _, err := mutate(ctx, s, "delete resource metadata", deleteAllMetadata); err != nil {
		return err
	}
	// Insert oldest first so rowid order agrees with created_at order.
	written := 0
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		created := e.CreatedAt
		if created.IsZero() {
			created = s.now()
		}
		_, err := mutate(ctx, s, "insert resource metadata", insertResourceMetadata,
			e.ID, e.Path, nullable(e.VersionRef), formatTime(created))
		if err != nil {
			return s.partial(targetResourceMetadata, "insert", written, len(entries), err)
		}
		written++
	}
	return nil
}

// dedupe drops empty and repeated ids, keeping first occurrences in order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
