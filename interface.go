// Package xmldoc implements a mutable XML document model. All nodes of
// a document live in arenas owned by the Document; callers navigate and
// mutate the tree through small copyable handles that refer into those
// arenas by index. A handle stays cheap to copy and remains safe to
// hold across unrelated mutations of the same document.
package xmldoc

import (
	"github.com/xmldoc-go/xmldoc/internal/orderedmap"
)

type NodeType int

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	CDATANode
	ProcessingInstructionNode
	DocTypeNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case CDATANode:
		return "CDATA"
	case ProcessingInstructionNode:
		return "ProcessingInstruction"
	case DocTypeNode:
		return "DocType"
	default:
		return "Unknown"
	}
}

type StandaloneType int

const (
	StandaloneInvalidValue StandaloneType = iota - 1
	StandaloneImplicitNo
	StandaloneExplicitYes
	StandaloneExplicitNo
)

// Document owns every node created during one parse or construction
// session. Nodes refer to each other only by index into the document's
// arenas, so the ownership graph has no cycles and handles into one
// part of the tree stay valid while an unrelated part is mutated.
//
// A Document is a unit of exclusive access: concurrent mutation
// requires external synchronization.
type Document struct {
	id     uint64
	elems  []elementSlot
	leaves []leafSlot

	version    string
	encoding   string
	standalone StandaloneType
}

// elementSlot is the arena record behind an Element handle. Slot 0 is
// the hidden container element that parents the document's top-level
// nodes; it never appears in serialized output.
type elementSlot struct {
	name     string // full name, namespace prefix kept verbatim
	attrs    *orderedmap.Map[string, string]
	nsDecls  *orderedmap.Map[string, string]
	parent   int // element arena index, -1 when detached
	children []Node
	alive    bool
}

// leafSlot is the arena record behind every non-element node kind.
type leafSlot struct {
	kind    NodeType
	content string
	parent  int // element arena index, -1 when detached
	alive   bool
}

// Node is a handle to any node of a Document: the document's identity
// token, the node kind, and the index into the kind-appropriate arena.
// The zero Node is invalid.
type Node struct {
	docID uint64
	kind  NodeType
	id    int
}

// Element is a handle to an element node. The zero Element is invalid.
type Element struct {
	docID uint64
	id    int
}

// AsNode converts the element handle to a generic node handle.
func (e Element) AsNode() Node {
	return Node{docID: e.docID, kind: ElementNode, id: e.id}
}

// AsElement returns the element handle behind n. The second return is
// false when n is not an element node.
func (n Node) AsElement() (Element, bool) {
	if n.kind != ElementNode {
		return Element{}, false
	}
	return Element{docID: n.docID, id: n.id}, true
}

// Kind reports the node's type. It does not consult the document, so
// it works even on stale handles.
func (n Node) Kind() NodeType {
	return n.kind
}
