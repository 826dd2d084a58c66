package sqlite

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Table names.
const (
	tableNavigationItems  = "navigation_items"
	tableResources        = "resources"
	tableSiteConfig       = "site_config"
	tableResourceMetadata = "resource_metadata"
)

// Schema DDL. Statements are idempotent so Attach can run them on every
// start.
const (
	createNavigationItems = `CREATE TABLE IF NOT EXISTS navigation_items (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    icon TEXT,
    description TEXT,
    enabled INTEGER DEFAULT 1,
    parent_id TEXT,
    order_index INTEGER DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (parent_id) REFERENCES navigation_items(id)
);`

	createResources = `CREATE TABLE IF NOT EXISTS resources (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    href TEXT NOT NULL,
    description TEXT,
    icon TEXT,
    enabled INTEGER DEFAULT 1,
    navigation_item_id TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (navigation_item_id) REFERENCES navigation_items(id)
);`

	createSiteConfig = `CREATE TABLE IF NOT EXISTS site_config (
    id INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    title TEXT,
    description TEXT,
    keywords TEXT,
    logo TEXT,
    favicon TEXT,
    theme TEXT DEFAULT 'system',
    link_target TEXT DEFAULT '_blank',
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

	createResourceMetadata = `CREATE TABLE IF NOT EXISTS resource_metadata (
    id TEXT PRIMARY KEY,
    path TEXT NOT NULL,
    commit_hash TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`
)

// Index DDL for the parent, owner, and enabled filters.
const (
	idxNavigationItemsParent  = `CREATE INDEX IF NOT EXISTS idx_navigation_items_parent_id ON navigation_items(parent_id);`
	idxResourcesOwner         = `CREATE INDEX IF NOT EXISTS idx_resources_navigation_item_id ON resources(navigation_item_id);`
	idxNavigationItemsEnabled = `CREATE INDEX IF NOT EXISTS idx_navigation_items_enabled ON navigation_items(enabled);`
	idxResourcesEnabled       = `CREATE INDEX IF NOT EXISTS idx_resources_enabled ON resources(enabled);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createNavigationItems,
	createResources,
	createSiteConfig,
	createResourceMetadata,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxNavigationItemsParent,
	idxResourcesOwner,
	idxNavigationItemsEnabled,
	idxResourcesEnabled,
}

// initSchema creates missing tables, then indexes. Tables are required;
// an index that cannot be created is logged and skipped.
func initSchema(ctx context.Context, h Handle, log *zap.Logger) error {
	for _, ddl := range schemaDDL {
		if _, err := h.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := h.ExecContext(ctx, ddl); err != nil {
			log.Warn("create index failed", zap.String("ddl", ddl), zap.Error(err))
		}
	}
	return nil
}
