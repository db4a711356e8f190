package xmldoc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	doc := NewDocument()
	require.Equal(t, "1.0", doc.Version())
	require.Equal(t, StandaloneImplicitNo, doc.Standalone())
	require.Empty(t, doc.RootNodes())

	_, ok := doc.RootElement()
	require.False(t, ok, "a fresh document has no root element")
}

func TestSetRootElement(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("root")
	require.NoError(t, doc.SetRootElement(root))

	got, ok := doc.RootElement()
	require.True(t, ok)
	require.Equal(t, root, got)

	other := doc.CreateElement("other")
	require.ErrorIs(t, doc.SetRootElement(other), ErrMultipleRoots)
}

func TestDocumentIdentity(t *testing.T) {
	a := NewDocument()
	b := NewDocument()

	ea := a.CreateElement("x")
	require.True(t, ea.Valid(a))
	require.False(t, ea.Valid(b), "a handle answers only to its own document")

	_, err := ea.FullName(b)
	require.ErrorIs(t, err, ErrInvalidHandle)
}

func TestCreateLeafNodes(t *testing.T) {
	doc := NewDocument()
	cases := map[NodeType]Node{
		TextNode:                  doc.CreateText("some text"),
		CommentNode:               doc.CreateComment("a comment"),
		CDATANode:                 doc.CreateCDATA("raw <data>"),
		ProcessingInstructionNode: doc.CreatePI("target data"),
		DocTypeNode:               doc.CreateDocType(`note SYSTEM "note.dtd"`),
	}

	for kind, n := range cases {
		require.Equal(t, kind, n.Kind())
		require.True(t, n.Valid(doc))

		_, ok := n.Parent(doc)
		require.False(t, ok, "created nodes start out detached")
	}

	content, err := cases[CDATANode].Content(doc)
	require.NoError(t, err)
	require.Equal(t, "raw <data>", content)
}

func TestNodeSetContent(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateText("before")
	require.NoError(t, n.SetContent(doc, "after"))

	content, err := n.Content(doc)
	require.NoError(t, err)
	require.Equal(t, "after", content)

	// element content is derived, not stored
	e := doc.CreateElement("e")
	require.ErrorIs(t, e.AsNode().SetContent(doc, "x"), ErrInvalidOperation)
}

func TestElementTextContentRecursive(t *testing.T) {
	doc, err := Parse([]byte(`<a>one<b>two<c>three</c></b><!-- skip -->four</a>`))
	require.NoError(t, err)

	root, _ := doc.RootElement()
	text, err := root.TextContent(doc)
	require.NoError(t, err)
	require.Equal(t, "onetwothreefour", text, "comments do not contribute to text content")
}

func TestStaleHandleKindMismatch(t *testing.T) {
	doc := NewDocument()
	text := doc.CreateText("t")

	// forge a handle with the right index but the wrong kind
	forged := Node{docID: doc.id, kind: CommentNode, id: text.id}
	require.False(t, forged.Valid(doc))
}
