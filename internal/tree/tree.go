// Package tree implements copy-on-write mutations over a page's component tree.
//
// Every operation takes the root list and returns a new root list. Nodes and
// slices passed in are never modified: each ancestor on the path to the
// affected node is shallow-copied and untouched subtrees keep their pointer
// identity. An operation that finds nothing to do returns its input slice
// unchanged, which callers can detect with Same.
package tree

import "go-page-builder/internal/model"

// Same reports whether a and b are the same root list, i.e. no mutation happened
// between them.
func Same(a, b []*model.Component) bool {
	if len(a) != len(b) || cap(a) != cap(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}

// Find returns the node with the given id anywhere in roots, depth first.
func Find(roots []*model.Component, id string) *model.Component {
	for _, c := range roots {
		if c.ID == id {
			return c
		}
		if found := Find(c.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// FindParent returns the parent of the node with the given id. The boolean is
// false when the id is not in the tree; a root-level node yields (nil, true).
func FindParent(roots []*model.Component, id string) (*model.Component, bool) {
	for _, c := range roots {
		if c.ID == id {
			return nil, true
		}
	}
	for _, c := range roots {
		if parent, ok := findParentIn(c, id); ok {
			return parent, true
		}
	}
	return nil, false
}

func findParentIn(node *model.Component, id string) (*model.Component, bool) {
	for _, child := range node.Children {
		if child.ID == id {
			return node, true
		}
	}
	for _, child := range node.Children {
		if parent, ok := findParentIn(child, id); ok {
			return parent, true
		}
	}
	return nil, false
}

// Siblings returns the list identified by parentID: roots itself when parentID
// is empty, otherwise the children of that node. The boolean is false when the
// parent does not exist or has no children list.
func Siblings(roots []*model.Component, parentID string) ([]*model.Component, bool) {
	if parentID == "" {
		return roots, true
	}
	parent := Find(roots, parentID)
	if !parent.HasChildren() {
		return nil, false
	}
	return parent.Children, true
}

// IndexOf returns the position of id within list, or -1.
func IndexOf(list []*model.Component, id string) int {
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether id appears anywhere in roots.
func Contains(roots []*model.Component, id string) bool {
	return Find(roots, id) != nil
}

// Walk visits every node depth first, parents before children. Returning false
// from fn stops the walk.
func Walk(roots []*model.Component, fn func(node *model.Component, parent *model.Component, depth int) bool) {
	walk(roots, nil, 0, fn)
}

func walk(list []*model.Component, parent *model.Component, depth int, fn func(*model.Component, *model.Component, int) bool) bool {
	for _, c := range list {
		if !fn(c, parent, depth) {
			return false
		}
		if !walk(c.Children, c, depth+1, fn) {
			return false
		}
	}
	return true
}

// IDs returns every id in the tree in depth-first order.
func IDs(roots []*model.Component) []string {
	var ids []string
	Walk(roots, func(c *model.Component, _ *model.Component, _ int) bool {
		ids = append(ids, c.ID)
		return true
	})
	return ids
}

// Count returns the number of nodes in the tree.
func Count(roots []*model.Component) int {
	n := 0
	Walk(roots, func(*model.Component, *model.Component, int) bool {
		n++
		return true
	})
	return n
}

// IsDescendant reports whether id is ancestorID itself or lies beneath it.
func IsDescendant(roots []*model.Component, ancestorID, id string) bool {
	ancestor := Find(roots, ancestorID)
	if ancestor == nil {
		return false
	}
	return ancestor.ID == id || Find(ancestor.Children, id) != nil
}
