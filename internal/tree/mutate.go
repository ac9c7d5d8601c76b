package tree

import "go-page-builder/internal/model"

// Append as an index inserts at the end of the target list.
const Append = -1

// edit locates id in list (depth first) and replaces that node with whatever fn
// returns. Ancestors of the match are shallow-copied; everything else is shared.
// fn may decline the edit by returning false.
func edit(list []*model.Component, id string, fn func(*model.Component) ([]*model.Component, bool)) ([]*model.Component, bool) {
	for i, c := range list {
		if c.ID == id {
			repl, ok := fn(c)
			if !ok {
				return list, false
			}
			out := make([]*model.Component, 0, len(list)-1+len(repl))
			out = append(out, list[:i]...)
			out = append(out, repl...)
			out = append(out, list[i+1:]...)
			return out, true
		}
		if c.Children == nil {
			continue
		}
		children, ok := edit(c.Children, id, fn)
		if !ok {
			continue
		}
		out := make([]*model.Component, len(list))
		copy(out, list)
		out[i] = withChildren(c, children)
		return out, true
	}
	return list, false
}

func withChildren(c *model.Component, children []*model.Component) *model.Component {
	cp := *c
	cp.Children = children
	return &cp
}

// splice returns a copy of list with node inserted at index, appending when the
// index is negative or past the end.
func splice(list []*model.Component, node *model.Component, index int) []*model.Component {
	if index < 0 || index > len(list) {
		index = len(list)
	}
	out := make([]*model.Component, 0, len(list)+1)
	out = append(out, list[:index]...)
	out = append(out, node)
	out = append(out, list[index:]...)
	return out
}

// Insert places node at index within the children of parentID, or within roots
// when parentID is empty. It is a no-op when the parent is missing, has no
// children list, or when node would introduce an id already in the tree.
func Insert(roots []*model.Component, node *model.Component, index int, parentID string) []*model.Component {
	if node == nil || collides(roots, node) {
		return roots
	}
	if parentID == "" {
		return splice(roots, node, index)
	}
	out, _ := edit(roots, parentID, func(parent *model.Component) ([]*model.Component, bool) {
		if !parent.HasChildren() {
			return nil, false
		}
		return []*model.Component{withChildren(parent, splice(parent.Children, node, index))}, true
	})
	return out
}

// AddToContainer appends node to the end of the container's children.
func AddToContainer(roots []*model.Component, containerID string, node *model.Component) []*model.Component {
	if containerID == "" {
		return roots
	}
	return Insert(roots, node, Append, containerID)
}

// Update applies patches to the node with the given id.
func Update(roots []*model.Component, id string, patches ...Patch) []*model.Component {
	if len(patches) == 0 {
		return roots
	}
	out, _ := edit(roots, id, func(c *model.Component) ([]*model.Component, bool) {
		cp := *c
		for _, p := range patches {
			if p != nil {
				p.apply(&cp)
			}
		}
		return []*model.Component{&cp}, true
	})
	return out
}

// Delete removes every node with the given id together with its descendants.
func Delete(roots []*model.Component, id string) []*model.Component {
	out, _ := remove(roots, id)
	return out
}

func remove(list []*model.Component, id string) ([]*model.Component, bool) {
	var out []*model.Component
	changed := false
	for i, c := range list {
		if c.ID == id {
			if !changed {
				out = make([]*model.Component, 0, len(list))
				out = append(out, list[:i]...)
				changed = true
			}
			continue
		}
		next := c
		if c.Children != nil {
			if children, ok := remove(c.Children, id); ok {
				next = withChildren(c, children)
				if !changed {
					out = make([]*model.Component, 0, len(list))
					out = append(out, list[:i]...)
					changed = true
				}
			}
		}
		if changed {
			out = append(out, next)
		}
	}
	if !changed {
		return list, false
	}
	return out, true
}

// Move reorders the sibling list identified by parentID (roots when empty),
// taking the element at from and reinserting it at to. Out-of-range indices
// and from == to leave the tree unchanged.
func Move(roots []*model.Component, from, to int, parentID string) []*model.Component {
	if parentID == "" {
		out, _ := reorder(roots, from, to)
		return out
	}
	out, _ := edit(roots, parentID, func(parent *model.Component) ([]*model.Component, bool) {
		if !parent.HasChildren() {
			return nil, false
		}
		children, ok := reorder(parent.Children, from, to)
		if !ok {
			return nil, false
		}
		return []*model.Component{withChildren(parent, children)}, true
	})
	return out
}

func reorder(list []*model.Component, from, to int) ([]*model.Component, bool) {
	n := len(list)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return list, false
	}
	moved := list[from]
	out := make([]*model.Component, 0, n)
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)
	out = append(out[:to], append([]*model.Component{moved}, out[to:]...)...)
	return out, true
}

// Duplicate inserts a deep copy of the node right after it in the same sibling
// list. Every node of the copy gets a fresh id from newID.
func Duplicate(roots []*model.Component, id string, newID func() string) []*model.Component {
	out, _ := edit(roots, id, func(c *model.Component) ([]*model.Component, bool) {
		return []*model.Component{c, cloneWithIDs(c, newID)}, true
	})
	return out
}

func cloneWithIDs(c *model.Component, newID func() string) *model.Component {
	cp := &model.Component{
		ID:     newID(),
		Type:   c.Type,
		Props:  c.Props.Clone(),
		Styles: c.Styles.Clone(),
	}
	if c.Children != nil {
		cp.Children = make([]*model.Component, len(c.Children))
		for i, child := range c.Children {
			cp.Children[i] = cloneWithIDs(child, newID)
		}
	}
	return cp
}

// MoveToContainer detaches the node and appends it to the container in a
// single step. It is a no-op when either id is missing, when the target has no
// children list, when the container is the node itself or one of its
// descendants, or when the node already is the container's last child.
func MoveToContainer(roots []*model.Component, id, containerID string) []*model.Component {
	node := Find(roots, id)
	container := Find(roots, containerID)
	if node == nil || !container.HasChildren() {
		return roots
	}
	if IsDescendant(roots, id, containerID) {
		return roots
	}
	if last := len(container.Children) - 1; last >= 0 && container.Children[last].ID == id {
		return roots
	}
	detached, ok := remove(roots, id)
	if !ok {
		return roots
	}
	out := Insert(detached, node, Append, containerID)
	if Same(out, detached) {
		return roots
	}
	return out
}

func collides(roots []*model.Component, node *model.Component) bool {
	if len(roots) == 0 {
		return false
	}
	existing := make(map[string]struct{})
	Walk(roots, func(c *model.Component, _ *model.Component, _ int) bool {
		existing[c.ID] = struct{}{}
		return true
	})
	clash := false
	Walk([]*model.Component{node}, func(c *model.Component, _ *model.Component, _ int) bool {
		if _, ok := existing[c.ID]; ok {
			clash = true
			return false
		}
		return true
	})
	return clash
}
