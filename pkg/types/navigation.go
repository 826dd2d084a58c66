package types

import (
	"encoding/json"
	"time"
)

// NavigationData is the external shape of the navigation tree: an ordered
// forest of root categories.
type NavigationData struct {
	NavigationItems []NavigationItem `json:"navigationItems"`
}

// NavigationItem is a category node in the navigation tree. Items holds the
// link resources owned by this node; SubCategories holds its children.
type NavigationItem struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Icon          string           `json:"icon,omitempty"`
	Description   string           `json:"description,omitempty"`
	Enabled       bool             `json:"enabled"`
	OrderIndex    int              `json:"order_index,omitempty"`
	CreatedAt     *time.Time       `json:"created_at,omitempty"`
	UpdatedAt     *time.Time       `json:"updated_at,omitempty"`
	Items         []Resource       `json:"items"`
	SubCategories []NavigationItem `json:"subCategories"`
}

// Resource is a link owned by exactly one navigation item.
type Resource struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Href        string `json:"href"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// UnmarshalJSON decodes a navigation item. An absent "enabled" field means
// enabled, matching the column default; absent child lists decode as empty.
func (n *NavigationItem) UnmarshalJSON(data []byte) error {
	type plain NavigationItem
	p := plain{Enabled: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Items == nil {
		p.Items = []Resource{}
	}
	if p.SubCategories == nil {
		p.SubCategories = []NavigationItem{}
	}
	*n = NavigationItem(p)
	return nil
}

// UnmarshalJSON decodes a resource, defaulting "enabled" to true when absent.
func (r *Resource) UnmarshalJSON(data []byte) error {
	type plain Resource
	p := plain{Enabled: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Resource(p)
	return nil
}

// EmptyNavigation returns a tree with no roots. The slice is non-nil so it
// encodes as [] rather than null.
func EmptyNavigation() NavigationData {
	return NavigationData{NavigationItems: []NavigationItem{}}
}
