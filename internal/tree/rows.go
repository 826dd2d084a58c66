// Package tree converts between the nested navigation tree and the flat
// rows the relational store keeps. It holds no state.
package tree

import "time"

// ItemRow is a navigation_items row. ParentID is nil for roots.
type ItemRow struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	ParentID    *string   `json:"parent_id,omitempty"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ResourceRow is a resources row.
type ResourceRow struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Href             string    `json:"href"`
	Description      string    `json:"description,omitempty"`
	Icon             string    `json:"icon,omitempty"`
	Enabled          bool      `json:"enabled"`
	NavigationItemID string    `json:"navigation_item_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsRoot reports whether the row has no parent.
func (r ItemRow) IsRoot() bool {
	return r.ParentID == nil || *r.ParentID == ""
}
