package types

import (
	"fmt"
	"time"
)

// ResourceMetadataEntry records an uploaded asset: where it lives and which
// commit produced it. The JSON names match the resource-metadata document.
type ResourceMetadataEntry struct {
	ID         string    `json:"hash"`
	Path       string    `json:"path"`
	VersionRef string    `json:"commit"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

// ResourceMetadataDocument is the file-store representation of the
// metadata log, newest entry first.
type ResourceMetadataDocument struct {
	Metadata []ResourceMetadataEntry `json:"metadata"`
}

// ValidateResourceMetadata checks a whole metadata log before it replaces
// a stored one: every entry needs an id and a path, and ids must not repeat.
func ValidateResourceMetadata(entries []ResourceMetadataEntry) error {
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("metadata[%d]: %w", i, ErrMissingID)
		}
		if e.Path == "" {
			return fmt.Errorf("metadata[%d]: %w", i, ErrMissingPath)
		}
		if seen[e.ID] {
			return fmt.Errorf("metadata[%d]: entry %q: %w", i, e.ID, ErrDuplicateID)
		}
		seen[e.ID] = true
	}
	return nil
}
