package xmldoc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendChildCountLaw(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("root")
	require.NoError(t, doc.SetRootElement(root))

	for i := 0; i < 5; i++ {
		before, err := root.ChildCount(doc)
		require.NoError(t, err)

		require.NoError(t, root.AppendChild(doc, doc.CreateElement("child").AsNode()))

		after, err := root.ChildCount(doc)
		require.NoError(t, err)
		require.Equal(t, before+1, after)
	}

	removed, err := root.RemoveChild(doc, 0)
	require.NoError(t, err)

	after, err := root.ChildCount(doc)
	require.NoError(t, err)
	require.Equal(t, 4, after)

	// the removed handle still answers the existence check, with false
	require.False(t, removed.Valid(doc))

	// but any operation through it fails
	_, err = removed.Content(doc)
	require.ErrorIs(t, err, ErrInvalidHandle)
}

func TestInsertChild(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("root")
	require.NoError(t, doc.SetRootElement(root))

	a := doc.CreateElement("a")
	c := doc.CreateElement("c")
	require.NoError(t, root.AppendChild(doc, a.AsNode()))
	require.NoError(t, root.AppendChild(doc, c.AsNode()))

	b := doc.CreateElement("b")
	require.NoError(t, root.InsertChild(doc, 1, b.AsNode()))

	names := childNames(t, doc, root)
	require.Equal(t, []string{"a", "b", "c"}, names)

	// inserting at the end is an append
	d := doc.CreateElement("d")
	require.NoError(t, root.InsertChild(doc, 3, d.AsNode()))
	require.Equal(t, []string{"a", "b", "c", "d"}, childNames(t, doc, root))

	e := doc.CreateElement("e")
	require.ErrorIs(t, root.InsertChild(doc, 99, e.AsNode()), ErrIndexOutOfRange)
	require.ErrorIs(t, root.InsertChild(doc, -1, e.AsNode()), ErrIndexOutOfRange)
}

func childNames(t *testing.T, doc *Document, e Element) []string {
	t.Helper()
	elems, err := e.ChildElements(doc)
	require.NoError(t, err)
	var names []string
	for _, el := range elems {
		name, err := el.FullName(doc)
		require.NoError(t, err)
		names = append(names, name)
	}
	return names
}

func TestAppendChildRejectsAttached(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("root")
	require.NoError(t, doc.SetRootElement(root))

	child := doc.CreateElement("child")
	require.NoError(t, root.AppendChild(doc, child.AsNode()))

	other := doc.CreateElement("other")
	require.NoError(t, root.AppendChild(doc, other.AsNode()))

	err := other.AppendChild(doc, child.AsNode())
	require.ErrorIs(t, err, ErrHasParent, "a node must be detached before it can be attached elsewhere")
}

func TestAppendChildRejectsCycle(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("root")
	require.NoError(t, doc.SetRootElement(root))
	child := doc.CreateElement("child")
	require.NoError(t, root.AppendChild(doc, child.AsNode()))

	require.NoError(t, root.Detach(doc))
	err := child.AppendChild(doc, root.AsNode())
	require.ErrorIs(t, err, ErrInvalidOperation, "an element cannot become a child of its own subtree")
}

func TestCrossDocumentRejection(t *testing.T) {
	docA, err := Parse([]byte(`<a><x/></a>`))
	require.NoError(t, err)
	docB, err := Parse([]byte(`<b/>`))
	require.NoError(t, err)

	rootA, _ := docA.RootElement()
	rootB, _ := docB.RootElement()

	orphan := docB.CreateElement("orphan")
	err = rootA.AppendChild(docA, orphan.AsNode())
	require.ErrorIs(t, err, ErrInvalidHandle)

	// both trees are untouched by the failed call
	count, err := rootA.ChildCount(docA)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.True(t, orphan.Valid(docB))
	_, ok := orphan.AsNode().Parent(docB)
	require.False(t, ok, "the orphan is still detached")

	count, err = rootB.ChildCount(docB)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestRemoveChildInvalidatesSubtree(t *testing.T) {
	doc, err := Parse([]byte(`<a><b><c><d/></c></b><e/></a>`))
	require.NoError(t, err)
	root, _ := doc.RootElement()

	b, ok, err := root.Find(doc, "b")
	require.NoError(t, err)
	require.True(t, ok)
	c, ok, err := b.Find(doc, "c")
	require.NoError(t, err)
	require.True(t, ok)
	d, ok, err := c.Find(doc, "d")
	require.NoError(t, err)
	require.True(t, ok)
	e, ok, err := root.Find(doc, "e")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = root.RemoveChild(doc, 0)
	require.NoError(t, err)

	for _, el := range []Element{b, c, d} {
		require.False(t, el.Valid(doc), "the whole removed subtree is invalidated")
		err := el.SetAttribute(doc, "k", "v")
		require.ErrorIs(t, err, ErrInvalidHandle)
	}
	require.True(t, e.Valid(doc), "siblings outside the subtree are unaffected")
}

func TestPopChild(t *testing.T) {
	doc, err := Parse([]byte(`<a><b/><c/></a>`))
	require.NoError(t, err)
	root, _ := doc.RootElement()

	n, ok, err := root.PopChild(doc)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, n.Valid(doc))
	require.Equal(t, []string{"b"}, childNames(t, doc, root))

	_, ok, err = root.PopChild(doc)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = root.PopChild(doc)
	require.NoError(t, err)
	require.False(t, ok, "popping an empty element reports false, not an error")
}

func TestClearChildren(t *testing.T) {
	doc, err := Parse([]byte(`<a><b/>text<c/></a>`))
	require.NoError(t, err)
	root, _ := doc.RootElement()

	removed, err := root.ClearChildren(doc)
	require.NoError(t, err)
	require.Equal(t, 3, removed)

	count, err := root.ChildCount(doc)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestDetachKeepsAlive(t *testing.T) {
	doc, err := Parse([]byte(`<a><b><c/></b></a>`))
	require.NoError(t, err)
	root, _ := doc.RootElement()
	b, _, err := root.Find(doc, "b")
	require.NoError(t, err)

	require.NoError(t, b.Detach(doc))

	require.True(t, b.Valid(doc), "detached nodes stay alive")
	_, ok := b.AsNode().Parent(doc)
	require.False(t, ok)

	count, err := root.ChildCount(doc)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	// and it can be attached again
	require.NoError(t, root.AppendChild(doc, b.AsNode()))
	count, err = root.ChildCount(doc)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestReparent(t *testing.T) {
	doc, err := Parse([]byte(`<a><b><c/></b><d/></a>`))
	require.NoError(t, err)
	root, _ := doc.RootElement()
	b, _, err := root.Find(doc, "b")
	require.NoError(t, err)
	c, _, err := b.Find(doc, "c")
	require.NoError(t, err)
	d, _, err := root.Find(doc, "d")
	require.NoError(t, err)

	require.NoError(t, c.Reparent(doc, d))

	parent, ok := c.AsNode().Parent(doc)
	require.True(t, ok)
	require.Equal(t, d, parent)

	count, err := b.ChildCount(doc)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	// moving an element under its own descendant must fail without
	// touching either child list
	err = b.Reparent(doc, c)
	require.NoError(t, err, "b and c are no longer related, so this move is fine")

	err = d.Reparent(doc, b)
	require.ErrorIs(t, err, ErrInvalidOperation)
	parent, ok = d.AsNode().Parent(doc)
	require.True(t, ok)
	require.Equal(t, root, parent, "failed reparent leaves the tree unchanged")
}
