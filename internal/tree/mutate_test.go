package tree

import (
	"fmt"
	"math/rand"
	"testing"

	"go-page-builder/internal/generator"
	"go-page-builder/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func leaf(id string, t model.ComponentType) *model.Component {
	return &model.Component{ID: id, Type: t, Props: model.Props{"content": id}, Styles: model.Styles{}}
}

func box(id string, children ...*model.Component) *model.Component {
	if children == nil {
		children = []*model.Component{}
	}
	return &model.Component{ID: id, Type: model.TypeContainer, Props: model.Props{}, Styles: model.Styles{}, Children: children}
}

// sample builds:
//
//	a
//	b (container)
//	  b1
//	  b2 (container)
//	    b21
//	c
func sample() []*model.Component {
	return []*model.Component{
		leaf("a", model.TypeHeading),
		box("b", leaf("b1", model.TypeParagraph), box("b2", leaf("b21", model.TypeButton))),
		leaf("c", model.TypeDivider),
	}
}

func ids(list []*model.Component) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func TestInsertRootOrder(t *testing.T) {
	f := &generator.Factory{NewID: seqIDs("n")}
	button := f.MustCreate(model.TypeButton)
	heading := f.MustCreate(model.TypeHeading)

	var roots []*model.Component
	roots = Insert(roots, button, 0, "")
	roots = Insert(roots, heading, 0, "")

	require.Len(t, roots, 2)
	assert.Equal(t, model.TypeHeading, roots[0].Type)
	assert.Equal(t, model.TypeButton, roots[1].Type)
}

func TestInsertIntoNestedParent(t *testing.T) {
	roots := sample()
	out := Insert(roots, leaf("x", model.TypeParagraph), 0, "b2")

	b2 := Find(out, "b2")
	require.NotNil(t, b2)
	assert.Equal(t, []string{"x", "b21"}, ids(b2.Children))
	assert.Equal(t, []string{"b21"}, ids(Find(roots, "b2").Children), "input must not change")
}

func TestInsertOutOfRangeAppends(t *testing.T) {
	roots := sample()
	out := Insert(roots, leaf("x", model.TypeParagraph), 99, "b")
	assert.Equal(t, []string{"b1", "b2", "x"}, ids(Find(out, "b").Children))

	out = Insert(roots, leaf("y", model.TypeParagraph), Append, "")
	assert.Equal(t, []string{"a", "b", "c", "y"}, ids(out))
}

func TestInsertNoops(t *testing.T) {
	roots := sample()

	assert.True(t, Same(roots, Insert(roots, leaf("x", model.TypeParagraph), 0, "missing")))
	assert.True(t, Same(roots, Insert(roots, leaf("x", model.TypeParagraph), 0, "a")), "leaf parent has no children list")
	assert.True(t, Same(roots, Insert(roots, leaf("b21", model.TypeParagraph), 0, "")), "duplicate id is rejected")
	assert.True(t, Same(roots, Insert(roots, nil, 0, "")))
}

func TestAddToContainer(t *testing.T) {
	roots := sample()
	out := AddToContainer(roots, "b", leaf("x", model.TypeParagraph))
	assert.Equal(t, []string{"b1", "b2", "x"}, ids(Find(out, "b").Children))
	assert.True(t, Same(roots, AddToContainer(roots, "c", leaf("y", model.TypeParagraph))))
}

func TestUpdate(t *testing.T) {
	roots := sample()
	out := Update(roots, "b21", ReplaceProps(model.Props{"content": "Go"}), SetStyle("textColor", "#fff"))

	node := Find(out, "b21")
	assert.Equal(t, "Go", node.Props.String("content"))
	assert.Equal(t, "#fff", node.Styles["textColor"])

	old := Find(roots, "b21")
	assert.Equal(t, "b21", old.Props.String("content"))
	assert.NotContains(t, old.Styles, "textColor")

	assert.True(t, Same(roots, Update(roots, "missing", SetProp("content", "x"))))
	assert.True(t, Same(roots, Update(roots, "a")))
}

func TestUpdatePatchesDoNotAliasInput(t *testing.T) {
	roots := sample()
	out := Update(roots, "a", SetProp("level", 2), RemoveProp("content"))
	node := Find(out, "a")
	assert.Equal(t, 2, node.Props.Int("level", 1))
	assert.NotContains(t, node.Props, "content")
	assert.Equal(t, "a", Find(roots, "a").Props.String("content"))
}

func TestCopyOnWriteLocality(t *testing.T) {
	roots := sample()
	out := Update(roots, "b21", SetProp("content", "changed"))

	assert.False(t, Same(roots, out))
	// Path root -> b -> b2 -> b21 is copied.
	assert.NotSame(t, roots[1], out[1])
	assert.NotSame(t, roots[1].Children[1], out[1].Children[1])
	assert.NotSame(t, roots[1].Children[1].Children[0], out[1].Children[1].Children[0])
	// Siblings keep identity.
	assert.Same(t, roots[0], out[0])
	assert.Same(t, roots[2], out[2])
	assert.Same(t, roots[1].Children[0], out[1].Children[0])
}

func TestDelete(t *testing.T) {
	roots := sample()
	out := Delete(roots, "b")

	assert.Equal(t, []string{"a", "c"}, ids(out))
	for _, id := range []string{"b", "b1", "b2", "b21"} {
		assert.False(t, Contains(out, id), id)
	}
	assert.True(t, Same(roots, Delete(roots, "missing")))
}

func TestDeleteKeepsEmptyChildrenList(t *testing.T) {
	roots := []*model.Component{box("b", leaf("only", model.TypeParagraph))}
	out := Delete(roots, "only")
	require.NotNil(t, out[0].Children)
	assert.Empty(t, out[0].Children)
	assert.True(t, out[0].HasChildren())
}

func TestDeleteRemovesEveryDescendant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	f := &generator.Factory{NewID: seqIDs("r")}
	for round := 0; round < 50; round++ {
		roots := randomTree(rng, f, 3)
		all := IDs(roots)
		if len(all) == 0 {
			continue
		}
		target := all[rng.Intn(len(all))]
		descendants := IDs([]*model.Component{Find(roots, target)})

		out := Delete(roots, target)
		for _, id := range descendants {
			assert.False(t, Contains(out, id), "round %d: %s survived deletion of %s", round, id, target)
		}
		assert.Equal(t, len(all)-len(descendants), Count(out))
	}
}

func TestMove(t *testing.T) {
	roots := sample()

	out := Move(roots, 0, 2, "")
	assert.Equal(t, []string{"b", "c", "a"}, ids(out))

	out = Move(roots, 2, 0, "")
	assert.Equal(t, []string{"c", "a", "b"}, ids(out))

	out = Move(roots, 1, 0, "b")
	assert.Equal(t, []string{"b2", "b1"}, ids(Find(out, "b").Children))
	assert.Equal(t, []string{"b1", "b2"}, ids(Find(roots, "b").Children))
}

func TestMoveRejectsOutOfRange(t *testing.T) {
	roots := sample()
	for _, tc := range []struct{ from, to int }{{-1, 0}, {0, 3}, {3, 0}, {1, 1}} {
		assert.True(t, Same(roots, Move(roots, tc.from, tc.to, "")), "%d -> %d", tc.from, tc.to)
	}
	assert.True(t, Same(roots, Move(roots, 0, 5, "b")))
	assert.True(t, Same(roots, Move(roots, 0, 1, "missing")))
}

func TestMoveIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(8)
		list := make([]*model.Component, n)
		for i := range list {
			list[i] = leaf(fmt.Sprintf("n%d", i), model.TypeParagraph)
		}
		from, to := rng.Intn(n), rng.Intn(n)

		out := Move(list, from, to, "")
		require.Len(t, out, n)
		assert.ElementsMatch(t, ids(list), ids(out))
		assert.Equal(t, list[from].ID, out[to].ID)
	}
}

func TestDuplicate(t *testing.T) {
	roots := sample()
	out := Duplicate(roots, "b", seqIDs("dup"))

	require.Len(t, out, 4)
	assert.Equal(t, "b", out[1].ID)
	clone := out[2]
	assert.Same(t, roots[1], out[1], "the original keeps its identity")

	diff := cmp.Diff(roots[1], clone, cmpopts.IgnoreFields(model.Component{}, "ID"))
	assert.Empty(t, diff, "clone must be structurally equal")

	original := map[string]bool{}
	for _, id := range IDs([]*model.Component{roots[1]}) {
		original[id] = true
	}
	for _, id := range IDs([]*model.Component{clone}) {
		assert.False(t, original[id], "clone reuses id %s", id)
	}
}

func TestDuplicateNested(t *testing.T) {
	roots := sample()
	out := Duplicate(roots, "b21", seqIDs("dup"))
	assert.Equal(t, []string{"b21", "dup1"}, ids(Find(out, "b2").Children))
	assert.True(t, Same(roots, Duplicate(roots, "missing", seqIDs("dup"))))
}

func TestDuplicateClonesDoNotShareMaps(t *testing.T) {
	roots := sample()
	out := Duplicate(roots, "a", seqIDs("dup"))
	out[1].Props["content"] = "mutated"
	assert.Equal(t, "a", out[0].Props.String("content"))
}

func TestIdentityUniquenessUnderInsertAndDuplicate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	f := &generator.Factory{NewID: seqIDs("u")}
	types := []model.ComponentType{model.TypeRow, model.TypeHeading, model.TypeCard, model.TypeButton, model.TypeGrid}

	var roots []*model.Component
	for step := 0; step < 300; step++ {
		existing := IDs(roots)
		switch {
		case len(existing) > 0 && rng.Intn(3) == 0:
			roots = Duplicate(roots, existing[rng.Intn(len(existing))], f.NewID)
		default:
			node := f.MustCreate(types[rng.Intn(len(types))])
			parent := ""
			if len(existing) > 0 && rng.Intn(2) == 0 {
				parent = existing[rng.Intn(len(existing))]
			}
			roots = Insert(roots, node, rng.Intn(4)-1, parent)
		}

		seen := map[string]bool{}
		for _, id := range IDs(roots) {
			require.False(t, seen[id], "step %d: duplicate id %s", step, id)
			seen[id] = true
		}
	}
}

func TestMoveToContainer(t *testing.T) {
	roots := sample()
	out := MoveToContainer(roots, "a", "b2")

	assert.Equal(t, []string{"b", "c"}, ids(out))
	assert.Equal(t, []string{"b21", "a"}, ids(Find(out, "b2").Children))
	assert.Equal(t, Count(roots), Count(out))
}

func TestMoveToContainerNoops(t *testing.T) {
	roots := sample()
	assert.True(t, Same(roots, MoveToContainer(roots, "b", "b2")), "into own descendant")
	assert.True(t, Same(roots, MoveToContainer(roots, "b", "b")), "into itself")
	assert.True(t, Same(roots, MoveToContainer(roots, "a", "c")), "leaf target")
	assert.True(t, Same(roots, MoveToContainer(roots, "missing", "b")))
	assert.True(t, Same(roots, MoveToContainer(roots, "a", "missing")))
	assert.True(t, Same(roots, MoveToContainer(roots, "b2", "b")), "already last child")
}

func TestSiblingsAndParent(t *testing.T) {
	roots := sample()

	list, ok := Siblings(roots, "")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, ids(list))

	list, ok = Siblings(roots, "b2")
	require.True(t, ok)
	assert.Equal(t, []string{"b21"}, ids(list))

	_, ok = Siblings(roots, "a")
	assert.False(t, ok)

	parent, ok := FindParent(roots, "b21")
	require.True(t, ok)
	assert.Equal(t, "b2", parent.ID)

	parent, ok = FindParent(roots, "a")
	assert.True(t, ok)
	assert.Nil(t, parent)

	_, ok = FindParent(roots, "missing")
	assert.False(t, ok)

	assert.Equal(t, 1, IndexOf(roots, "b"))
	assert.Equal(t, -1, IndexOf(roots, "b1"))
}

func randomTree(rng *rand.Rand, f *generator.Factory, depth int) []*model.Component {
	n := rng.Intn(4)
	out := make([]*model.Component, 0, n)
	for i := 0; i < n; i++ {
		if depth > 0 && rng.Intn(2) == 0 {
			c := f.MustCreate(model.TypeContainer)
			c.Children = randomTree(rng, f, depth-1)
			out = append(out, c)
			continue
		}
		out = append(out, f.MustCreate(model.TypeParagraph))
	}
	return out
}
