package xmldoc

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/xmldoc-go/xmldoc/internal/orderedmap"
)

// Each document gets a process-unique identity token. Handles carry the
// token of the document that issued them, which is what lets every
// entry point reject a handle from a different document: two documents'
// arenas routinely contain numerically identical indices that refer to
// unrelated nodes.
var docIDSerial uint64

const noParent = -1

// NewDocument creates a blank document with a version of "1.0" and no
// root element.
func NewDocument() *Document {
	doc := &Document{
		id:         atomic.AddUint64(&docIDSerial, 1),
		version:    "1.0",
		standalone: StandaloneImplicitNo,
	}
	// slot 0 is the hidden container element that parents the
	// document's top-level nodes
	doc.elems = append(doc.elems, elementSlot{
		attrs:   orderedmap.New[string, string](),
		nsDecls: orderedmap.New[string, string](),
		parent:  noParent,
		alive:   true,
	})
	return doc
}

func (d *Document) Version() string {
	return d.version
}

func (d *Document) SetVersion(v string) {
	d.version = v
}

// Encoding returns the name of the encoding the document was parsed
// from, or the empty string for a document built from scratch. Output
// is always written as UTF-8 regardless of this value.
func (d *Document) Encoding() string {
	return d.encoding
}

func (d *Document) Standalone() StandaloneType {
	return d.standalone
}

func (d *Document) SetStandalone(v StandaloneType) {
	d.standalone = v
}

func (d *Document) container() Element {
	return Element{docID: d.id, id: 0}
}

// RootNodes returns the document's top-level nodes (prolog comments and
// processing instructions, the doctype, and the root element) in
// document order.
func (d *Document) RootNodes() []Node {
	slot := &d.elems[0]
	nodes := make([]Node, len(slot.children))
	copy(nodes, slot.children)
	return nodes
}

// RootElement returns the document's root element. The second return is
// false when the document has none.
func (d *Document) RootElement() (Element, bool) {
	for _, n := range d.elems[0].children {
		if e, ok := n.AsElement(); ok {
			return e, true
		}
	}
	return Element{}, false
}

// SetRootElement attaches a detached element as the document root.
// Fails when the document already has a root element or the handle is
// not attachable.
func (d *Document) SetRootElement(e Element) error {
	if _, ok := d.RootElement(); ok {
		return ErrMultipleRoots
	}
	return d.container().AppendChild(d, e.AsNode())
}

// CreateElement allocates a detached element with the given full name
// (any namespace prefix is kept as a literal part of the name).
func (d *Document) CreateElement(name string) Element {
	id := len(d.elems)
	d.elems = append(d.elems, elementSlot{
		name:    name,
		attrs:   orderedmap.New[string, string](),
		nsDecls: orderedmap.New[string, string](),
		parent:  noParent,
		alive:   true,
	})
	return Element{docID: d.id, id: id}
}

// CreateText allocates a detached text node.
func (d *Document) CreateText(content string) Node {
	return d.createLeaf(TextNode, content)
}

// CreateComment allocates a detached comment node.
func (d *Document) CreateComment(content string) Node {
	return d.createLeaf(CommentNode, content)
}

// CreateCDATA allocates a detached CDATA section node.
func (d *Document) CreateCDATA(content string) Node {
	return d.createLeaf(CDATANode, content)
}

// CreatePI allocates a detached processing instruction node.
func (d *Document) CreatePI(content string) Node {
	return d.createLeaf(ProcessingInstructionNode, content)
}

// CreateDocType allocates a detached document type declaration node.
func (d *Document) CreateDocType(content string) Node {
	return d.createLeaf(DocTypeNode, content)
}

func (d *Document) createLeaf(kind NodeType, content string) Node {
	id := len(d.leaves)
	d.leaves = append(d.leaves, leafSlot{
		kind:    kind,
		content: content,
		parent:  noParent,
		alive:   true,
	})
	return Node{docID: d.id, kind: kind, id: id}
}

// checkElement resolves an element handle to its arena slot. Every
// public operation goes through this (or checkNode) before touching any
// state, so a failed call can never leave the tree partially altered.
func (d *Document) checkElement(e Element) (*elementSlot, error) {
	if d == nil || e.docID != d.id {
		return nil, errors.Wrap(ErrInvalidHandle, "element belongs to a different document")
	}
	if e.id < 0 || e.id >= len(d.elems) {
		return nil, errors.Wrap(ErrInvalidHandle, "element index out of range")
	}
	slot := &d.elems[e.id]
	if !slot.alive {
		return nil, errors.Wrap(ErrInvalidHandle, "element has been removed")
	}
	return slot, nil
}

func (d *Document) checkNode(n Node) (*elementSlot, *leafSlot, error) {
	if n.kind == ElementNode {
		e, _ := n.AsElement()
		slot, err := d.checkElement(e)
		return slot, nil, err
	}

	if d == nil || n.docID != d.id {
		return nil, nil, errors.Wrap(ErrInvalidHandle, "node belongs to a different document")
	}
	if n.id < 0 || n.id >= len(d.leaves) {
		return nil, nil, errors.Wrap(ErrInvalidHandle, "node index out of range")
	}
	slot := &d.leaves[n.id]
	if slot.kind != n.kind {
		return nil, nil, errors.Wrap(ErrInvalidHandle, "node kind mismatch")
	}
	if !slot.alive {
		return nil, nil, errors.Wrap(ErrInvalidHandle, "node has been removed")
	}
	return nil, slot, nil
}
