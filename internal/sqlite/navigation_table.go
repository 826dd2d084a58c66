package sqlite

import (
	"context"

	"github.com/mesh-intelligence/navsphere/internal/tree"
)

// Navigation item and resource statements. Sibling order is order_index
// then insertion sequence (rowid); resources keep insertion order within
// their owner.
const (
	itemColumns     = "id, title, icon, description, enabled, parent_id, order_index, created_at, updated_at"
	resourceColumns = "id, title, href, description, icon, enabled, navigation_item_id, created_at, updated_at"

	selectEnabledItems = "SELECT " + itemColumns + " FROM navigation_items WHERE enabled = 1 ORDER BY parent_id, order_index, rowid"
	selectAllItems     = "SELECT " + itemColumns + " FROM navigation_items ORDER BY parent_id, order_index, rowid"

	selectEnabledResources = "SELECT " + resourceColumns + " FROM resources WHERE enabled = 1 ORDER BY navigation_item_id, rowid"
	selectAllResources     = "SELECT " + resourceColumns + " FROM resources ORDER BY navigation_item_id, rowid"

	insertItem = "INSERT INTO navigation_items (" + itemColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"

	insertResource = "INSERT INTO resources (" + resourceColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"

	deleteAllResources = "DELETE FROM resources"
	deleteAllItems     = "DELETE FROM navigation_items"
)

func decodeItem(r record) tree.ItemRow {
	return tree.ItemRow{
		ID:          r.str("id"),
		Title:       r.str("title"),
		Icon:        r.str("icon"),
		Description: r.str("description"),
		Enabled:     r.boolean("enabled"),
		ParentID:    r.nullStr("parent_id"),
		OrderIndex:  r.integer("order_index"),
		CreatedAt:   r.timeAt("created_at"),
		UpdatedAt:   r.timeAt("updated_at"),
	}
}

func decodeResource(r record) tree.ResourceRow {
	return tree.ResourceRow{
		ID:               r.str("id"),
		Title:            r.str("title"),
		Href:             r.str("href"),
		Description:      r.str("description"),
		Icon:             r.str("icon"),
		Enabled:          r.boolean("enabled"),
		NavigationItemID: r.str("navigation_item_id"),
		CreatedAt:        r.timeAt("created_at"),
		UpdatedAt:        r.timeAt("updated_at"),
	}
}

// loadRows reads items and resources, enabled only unless all is set.
func (s *Store) loadRows(ctx context.Context, all bool) ([]tree.ItemRow, []tree.ResourceRow, error) {
	itemsQ, resourcesQ := selectEnabledItems, selectEnabledResources
	if all {
		itemsQ, resourcesQ = selectAllItems, selectAllResources
	}

	items, err := query(ctx, s, "select navigation items", decodeItem, itemsQ)
	if err != nil {
		return nil, nil, err
	}
	resources, err := query(ctx, s, "select resources", decodeResource, resourcesQ)
	if err != nil {
		return nil, nil, err
	}
	return items, resources, nil
}

func (s *Store) insertItemRow(ctx context.Context, row tree.ItemRow, now string) error {
	var parent any
	if !row.IsRoot() {
		parent = *row.ParentID
	}
	_, err := mutate(ctx, s, "insert navigation item", insertItem,
		row.ID, row.Title, nullable(row.Icon), nullable(row.Description),
		boolInt(row.Enabled), parent, row.OrderIndex, now, now)
	return err
}

func (s *Store) insertResourceRow(ctx context.Context, row tree.ResourceRow, now string) error {
	_, err := mutate(ctx, s, "insert resource", insertResource,
		row.ID, row.Title, row.Href, nullable(row.Description), nullable(row.Icon),
		boolInt(row.Enabled), row.NavigationItemID, now, now)
	return err
}
