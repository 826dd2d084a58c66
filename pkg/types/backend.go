package types

import "context"

// Backend is the storage capability both the relational store and the file
// commit store implement. Every method reports failures; degrading to
// defaults is the Service's job.
type Backend interface {
	// NavigationTree returns the public tree: enabled categories and
	// resources only.
	NavigationTree(ctx context.Context) (NavigationData, error)

	// ExportNavigationTree returns the full tree including disabled entries.
	ExportNavigationTree(ctx context.Context) (NavigationData, error)

	// ReplaceNavigationTree discards the stored tree and writes data in its
	// place. On the relational store a failure after the first write returns
	// a PartialReplaceError.
	ReplaceNavigationTree(ctx context.Context, data NavigationData) error

	// SiteConfig returns the stored configuration, or DefaultSiteConfig when
	// none has been written.
	SiteConfig(ctx context.Context) (SiteConfig, error)

	// UpsertSiteConfig writes the singleton configuration.
	UpsertSiteConfig(ctx context.Context, cfg SiteConfig) error

	// AppendResourceMetadata records a new asset and returns the entry.
	AppendResourceMetadata(ctx context.Context, path, versionRef string) (ResourceMetadataEntry, error)

	// ListResourceMetadata returns every entry, newest first.
	ListResourceMetadata(ctx context.Context) ([]ResourceMetadataEntry, error)

	// DeleteResourceMetadata removes the entries with the given ids and
	// returns how many existed. An empty id set is ErrEmptyIDSet.
	DeleteResourceMetadata(ctx context.Context, ids []string) (int, error)

	// ReplaceResourceMetadata discards the log and writes entries as given,
	// preserving their ids. Used by migration.
	ReplaceResourceMetadata(ctx context.Context, entries []ResourceMetadataEntry) error
}

// ReplaceResult is the outcome of Service.ReplaceNavigationTree.
type ReplaceResult struct {
	Success bool `json:"success"`
}

// DeleteResult is the outcome of Service.DeleteResourceMetadata.
type DeleteResult struct {
	DeletedCount int `json:"deletedCount"`
}

// Service is the API offered to the HTTP layer. GetNavigationTree and
// GetSiteConfig never fail; they fall back and then degrade to empty values.
type Service interface {
	GetNavigationTree(ctx context.Context) NavigationData
	ReplaceNavigationTree(ctx context.Context, data NavigationData) (ReplaceResult, error)
	GetSiteConfig(ctx context.Context) SiteConfig
	UpsertSiteConfig(ctx context.Context, cfg SiteConfig) (bool, error)
	AppendResourceMetadata(ctx context.Context, path, versionRef string) (ResourceMetadataEntry, error)
	ListResourceMetadata(ctx context.Context) ([]ResourceMetadataEntry, error)
	DeleteResourceMetadata(ctx context.Context, ids []string) (DeleteResult, error)
}
