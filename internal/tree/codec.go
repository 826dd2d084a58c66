package tree

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// Flatten walks roots in pre-order and emits one ItemRow per node and one
// ResourceRow per owned resource. A node's row precedes its resources, which
// precede its subcategories, so inserting the rows in the returned order
// never writes a child before its parent.
//
// Every node and resource must carry an id, and ids must be unique within
// their kind; otherwise Flatten returns a ValidationError and no rows.
func Flatten(roots []types.NavigationItem) ([]ItemRow, []ResourceRow, error) {
	f := flattener{
		itemIDs:     make(map[string]bool),
		resourceIDs: make(map[string]bool),
	}
	if err := f.walk(roots, nil, "navigationItems"); err != nil {
		return nil, nil, err
	}
	return f.items, f.resources, nil
}

type flattener struct {
	items       []ItemRow
	resources   []ResourceRow
	itemIDs     map[string]bool
	resourceIDs map[string]bool
}

func (f *flattener) walk(nodes []types.NavigationItem, parentID *string, path string) error {
	for i := range nodes {
		n := &nodes[i]
		at := fmt.Sprintf("%s[%d]", path, i)
		if n.ID == "" {
			return fmt.Errorf("%s: %w", at, types.ErrMissingID)
		}
		if f.itemIDs[n.ID] {
			return fmt.Errorf("%s: navigation item %q: %w", at, n.ID, types.ErrDuplicateID)
		}
		f.itemIDs[n.ID] = true

		f.items = append(f.items, ItemRow{
			ID:          n.ID,
			Title:       n.Title,
			Icon:        n.Icon,
			Description: n.Description,
			Enabled:     n.Enabled,
			ParentID:    parentID,
			OrderIndex:  n.OrderIndex,
			CreatedAt:   derefTime(n.CreatedAt),
			UpdatedAt:   derefTime(n.UpdatedAt),
		})

		for j, r := range n.Items {
			if r.ID == "" {
				return fmt.Errorf("%s.items[%d]: %w", at, j, types.ErrMissingID)
			}
			if f.resourceIDs[r.ID] {
				return fmt.Errorf("%s.items[%d]: resource %q: %w", at, j, r.ID, types.ErrDuplicateID)
			}
			f.resourceIDs[r.ID] = true

			f.resources = append(f.resources, ResourceRow{
				ID:               r.ID,
				Title:            r.Title,
				Href:             r.Href,
				Description:      r.Description,
				Icon:             r.Icon,
				Enabled:          r.Enabled,
				NavigationItemID: n.ID,
			})
		}

		id := n.ID
		if err := f.walk(n.SubCategories, &id, at+".subCategories"); err != nil {
			return err
		}
	}
	return nil
}

// Build reassembles the forest from flat rows. Resources attach to their
// owning item and items attach to their parent, each in input order.
// A resource whose owner is absent, or an item whose parent is absent, is
// dropped without error; an orphaned item is never promoted to a root.
func Build(items []ItemRow, resources []ResourceRow) []types.NavigationItem {
	nodes := make(map[string]*node, len(items))
	for _, row := range items {
		nodes[row.ID] = &node{row: row}
	}

	for _, r := range resources {
		owner, ok := nodes[r.NavigationItemID]
		if !ok {
			continue
		}
		owner.items = append(owner.items, types.Resource{
			ID:          r.ID,
			Title:       r.Title,
			Href:        r.Href,
			Description: r.Description,
			Icon:        r.Icon,
			Enabled:     r.Enabled,
		})
	}

	var roots []*node
	for _, row := range items {
		n := nodes[row.ID]
		if row.IsRoot() {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*row.ParentID]
		if !ok {
			continue
		}
		parent.children = append(parent.children, n)
	}

	out := make([]types.NavigationItem, 0, len(roots))
	for _, n := range roots {
		out = append(out, n.hydrate(make(map[string]bool)))
	}
	return out
}

// node is the mutable build-time form of a navigation item. Children are
// linked by pointer so a subtree is complete no matter which order parents
// and children arrive in.
type node struct {
	row      ItemRow
	items    []types.Resource
	children []*node
}

// hydrate converts the subtree rooted at n into its public value form.
// seen guards against a parent cycle in corrupt rows; a node reached twice
// on one path is cut off there.
func (n *node) hydrate(seen map[string]bool) types.NavigationItem {
	seen[n.row.ID] = true
	defer delete(seen, n.row.ID)

	item := types.NavigationItem{
		ID:            n.row.ID,
		Title:         n.row.Title,
		Icon:          n.row.Icon,
		Description:   n.row.Description,
		Enabled:       n.row.Enabled,
		OrderIndex:    n.row.OrderIndex,
		CreatedAt:     timePtr(n.row.CreatedAt),
		UpdatedAt:     timePtr(n.row.UpdatedAt),
		Items:         n.items,
		SubCategories: make([]types.NavigationItem, 0, len(n.children)),
	}
	if item.Items == nil {
		item.Items = []types.Resource{}
	}
	for _, c := range n.children {
		if seen[c.row.ID] {
			continue
		}
		item.SubCategories = append(item.SubCategories, c.hydrate(seen))
	}
	return item
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
