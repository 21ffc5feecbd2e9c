// Package filter implements the query-to-visibility pass at the heart of
// winnow: a fixed set of items, one query string, and a synchronous
// recompute of each item's visible flag on every query change.
package filter

import "strings"

// Normalize lowercases s and trims surrounding whitespace. All query and
// title comparisons go through this, so "  ABC " and "abc" describe the
// same query.
func Normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// Item is one filterable unit. Title drives matching, Source carries the
// underlying catalog entry for rendering, and Visible is derived state
// owned by the Controller.
type Item struct {
	// Title is the display title matched against the query.
	Title string

	// Index is the item's position in the fixed set. New assigns it.
	Index int

	// Visible reports whether the latest query keeps the item shown.
	Visible bool

	// Source is the entry the item was built from. The controller never
	// inspects it; it exists so renderers can get back to the full record.
	Source any
}

// Controller owns the visibility state for a fixed set of items. The set
// is established at construction and never changes; every SetQuery call
// recomputes each item's Visible flag in one bounded linear pass, so the
// shown set is always consistent with the latest query when SetQuery
// returns.
//
// A Controller is not safe for concurrent use. It is meant to live inside
// a single event loop.
type Controller struct {
	items    []Item
	rawQuery string
	query    string
	inert    bool
}

// New builds a Controller over a copy of items. Positions are assigned in
// slice order and every item starts visible, matching the empty query.
func New(items []Item) *Controller {
	copied := make([]Item, len(items))
	copy(copied, items)
	for i := range copied {
		copied[i].Index = i
		copied[i].Visible = true
	}
	return &Controller{items: copied}
}

// NewInert builds a controller that ignores every call. It stands in when
// the catalog has no collection to bind, so callers hold a non-nil
// controller and stay silent instead of branching on absence.
func NewInert() *Controller {
	return &Controller{inert: true}
}

// Inert reports whether the controller was built without a binding.
func (c *Controller) Inert() bool {
	return c.inert
}

// SetQuery normalizes raw and recomputes every item's visibility: an item
// stays shown when the normalized query is empty or its normalized title
// contains the query as a substring. Re-applying a query that normalizes
// to the current one changes nothing.
func (c *Controller) SetQuery(raw string) {
	if c.inert {
		return
	}
	c.rawQuery = raw

	needle := Normalize(raw)
	if needle == c.query {
		return
	}
	c.query = needle

	for i := range c.items {
		c.items[i].Visible = needle == "" || strings.Contains(Normalize(c.items[i].Title), needle)
	}
}

// Query returns the normalized form of the latest query.
func (c *Controller) Query() string {
	return c.query
}

// RawQuery returns the latest query exactly as passed to SetQuery.
func (c *Controller) RawQuery() string {
	return c.rawQuery
}

// Visible returns the currently shown items in their original order.
func (c *Controller) Visible() []Item {
	if len(c.items) == 0 {
		return nil
	}
	result := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		if item.Visible {
			result = append(result, item)
		}
	}
	return result
}

// Len returns the size of the fixed item set.
func (c *Controller) Len() int {
	return len(c.items)
}

// VisibleCount returns how many items the latest query keeps shown.
func (c *Controller) VisibleCount() int {
	count := 0
	for _, item := range c.items {
		if item.Visible {
			count++
		}
	}
	return count
}
