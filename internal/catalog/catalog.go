// Package catalog holds the medicine list, its favorites and the user's display order.
//
// A Catalog is plain owned state: it is not safe for concurrent use and none of its
// operations fail. Unknown or duplicate names degrade to no-ops. Callers that share a
// Catalog across goroutines wrap it, see the store package.
package catalog

import (
	"slices"
	"strings"
)

// DefaultMedicines is the list a new catalog starts with.
var DefaultMedicines = []string{"Medicine A", "Medicine B", "Medicine C"}

// Catalog is the medicine state container.
type Catalog struct {
	items     []string
	favorites []string
	// order is empty until the user first adds or reorders; afterwards it is a
	// permutation of items.
	order []string
}

// New creates a catalog seeded with DefaultMedicines.
func New() *Catalog {
	return FromItems(DefaultMedicines)
}

// FromItems creates a catalog seeded with the given names. Empty and repeated
// names are skipped.
func FromItems(names []string) *Catalog {
	c := &Catalog{items: make([]string, 0, len(names))}
	for _, name := range names {
		if name == "" || slices.Contains(c.items, name) {
			continue
		}
		c.items = append(c.items, name)
	}
	return c
}

// Add appends name to the catalog and to the custom order.
// It reports whether the catalog changed.
func (c *Catalog) Add(name string) bool {
	if name == "" || slices.Contains(c.items, name) {
		return false
	}

	if len(c.order) == 0 {
		c.order = slices.Clone(c.items)
	}

	c.items = append(c.items, name)
	c.order = append(c.order, name)

	return true
}

// Delete removes name from the items, the custom order and the favorites.
// It reports whether anything was removed.
func (c *Catalog) Delete(name string) bool {
	before := len(c.items) + len(c.order) + len(c.favorites)

	c.items = slices.DeleteFunc(c.items, func(m string) bool { return m == name })
	c.order = slices.DeleteFunc(c.order, func(m string) bool { return m == name })
	c.favorites = slices.DeleteFunc(c.favorites, func(m string) bool { return m == name })

	return len(c.items)+len(c.order)+len(c.favorites) != before
}

// ToggleFavorite flips the favorite flag of name and returns the new flag.
// The name does not have to be in the catalog.
func (c *Catalog) ToggleFavorite(name string) bool {
	if i := slices.Index(c.favorites, name); i >= 0 {
		c.favorites = slices.Delete(c.favorites, i, i+1)
		return false
	}

	c.favorites = append(c.favorites, name)
	return true
}

// Reorder moves dragged into the slot held by target, shifting the items in
// between. The custom order is replaced by the resulting item order.
// It reports whether the catalog changed.
func (c *Catalog) Reorder(dragged, target string) bool {
	from := slices.Index(c.items, dragged)
	to := slices.Index(c.items, target)
	if from < 0 || to < 0 || from == to {
		return false
	}

	// to is the target's index before removal, applied to the shortened slice.
	c.items = slices.Delete(c.items, from, from+1)
	c.items = slices.Insert(c.items, to, dragged)
	c.order = slices.Clone(c.items)

	return true
}

// IsFavorite reports whether name is marked favorite.
func (c *Catalog) IsFavorite(name string) bool {
	return slices.Contains(c.favorites, name)
}

// Filtered returns the items whose name contains query, ignoring case.
// An empty query matches every item.
func (c *Catalog) Filtered(query string) []string {
	q := strings.ToLower(query)

	out := make([]string, 0, len(c.items))
	for _, name := range c.items {
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, name)
		}
	}
	return out
}

// Ordered returns the display order: favorites first, then the rest. Both
// groups keep their position from the custom order, or from the item order
// while no custom order exists.
func (c *Catalog) Ordered() []string {
	base := c.order
	if len(base) == 0 {
		base = c.items
	}

	fav := make(map[string]struct{}, len(c.favorites))
	for _, name := range c.favorites {
		fav[name] = struct{}{}
	}

	out := make([]string, 0, len(base))
	for _, name := range base {
		if _, ok := fav[name]; ok {
			out = append(out, name)
		}
	}
	for _, name := range base {
		if _, ok := fav[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Items returns a copy of the items in their current order.
func (c *Catalog) Items() []string {
	return cloneList(c.items)
}

// Favorites returns a copy of the favorite names in the order they were marked.
func (c *Catalog) Favorites() []string {
	return cloneList(c.favorites)
}

// Order returns a copy of the custom order. It is empty until the first add or reorder.
func (c *Catalog) Order() []string {
	return cloneList(c.order)
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// cloneList copies s, returning an empty non-nil slice for nil so that
// views encode as [] rather than null.
func cloneList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
