package xmldoc

import (
	"github.com/pkg/errors"
)

// Structural mutation of the tree. Every operation here validates all
// handles involved (document identity, bounds, liveness) before it
// touches either side of a parent/child link, so the parent pointer and
// the parent's child list can never disagree, even after a failed call.

// AppendChild attaches a detached node as the element's last child.
func (e Element) AppendChild(doc *Document, n Node) error {
	return e.attachChild(doc, n, -1)
}

// InsertChild attaches a detached node at position i of the element's
// child list. i may equal the current child count, which appends.
func (e Element) InsertChild(doc *Document, i int, n Node) error {
	if i < 0 {
		return errors.Wrap(ErrIndexOutOfRange, "negative child index")
	}
	return e.attachChild(doc, n, i)
}

func (e Element) attachChild(doc *Document, n Node, at int) error {
	slot, err := doc.checkElement(e)
	if err != nil {
		return err
	}
	ceslot, clslot, err := doc.checkNode(n)
	if err != nil {
		return err
	}
	if at > len(slot.children) {
		return errors.Wrap(ErrIndexOutOfRange, "child index past end of child list")
	}

	if clslot != nil {
		if clslot.parent != noParent {
			return ErrHasParent
		}
		clslot.parent = e.id
	} else {
		if n.id == 0 {
			return errors.Wrap(ErrInvalidOperation, "the document container cannot be moved")
		}
		if ceslot.parent != noParent {
			return ErrHasParent
		}
		// a node cannot become a child of its own subtree
		if doc.inSubtree(n.id, e.id) {
			return errors.Wrap(ErrInvalidOperation, "cannot attach an element under its own descendant")
		}
		ceslot.parent = e.id
	}

	if at < 0 || at == len(slot.children) {
		slot.children = append(slot.children, n)
		return nil
	}
	slot.children = append(slot.children, Node{})
	copy(slot.children[at+1:], slot.children[at:])
	slot.children[at] = n
	return nil
}

// RemoveChild removes the child at position i and invalidates every
// handle into the removed subtree. The returned handle identifies the
// removed node; it answers false to Valid and fails all further
// operations.
func (e Element) RemoveChild(doc *Document, i int) (Node, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return Node{}, err
	}
	if i < 0 || i >= len(slot.children) {
		return Node{}, errors.Wrap(ErrIndexOutOfRange, "no child at index")
	}

	n := slot.children[i]
	slot.children = append(slot.children[:i], slot.children[i+1:]...)
	doc.killSubtree(n)
	return n, nil
}

// PopChild removes the element's last child, invalidating its subtree.
// The bool return is false when the element has no children.
func (e Element) PopChild(doc *Document) (Node, bool, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return Node{}, false, err
	}
	if len(slot.children) == 0 {
		return Node{}, false, nil
	}
	n, err := e.RemoveChild(doc, len(slot.children)-1)
	if err != nil {
		return Node{}, false, err
	}
	return n, true, nil
}

// ClearChildren removes every child of the element, invalidating their
// subtrees, and returns how many were removed.
func (e Element) ClearChildren(doc *Document) (int, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return 0, err
	}
	removed := len(slot.children)
	for _, n := range slot.children {
		doc.killSubtree(n)
	}
	slot.children = nil
	return removed, nil
}

// Detach removes the element from its parent's child list without
// invalidating it. The element and its subtree stay alive and can be
// attached elsewhere in the same document.
func (e Element) Detach(doc *Document) error {
	return e.AsNode().Detach(doc)
}

// Detach removes the node from its parent's child list without
// invalidating it.
func (n Node) Detach(doc *Document) error {
	eslot, lslot, err := doc.checkNode(n)
	if err != nil {
		return err
	}

	parent := noParent
	if lslot != nil {
		parent = lslot.parent
	} else {
		if n.id == 0 {
			return errors.Wrap(ErrInvalidOperation, "the document container cannot be moved")
		}
		parent = eslot.parent
	}
	if parent == noParent {
		return nil // already detached
	}

	pslot := &doc.elems[parent]
	for i, c := range pslot.children {
		if c == n {
			pslot.children = append(pslot.children[:i], pslot.children[i+1:]...)
			break
		}
	}
	if lslot != nil {
		lslot.parent = noParent
	} else {
		eslot.parent = noParent
	}
	return nil
}

// Reparent moves the element and its subtree under parent, appending it
// to parent's children. Both ends are validated before either side is
// touched, so a failed call leaves the old and the new parent's child
// lists unchanged.
func (e Element) Reparent(doc *Document, parent Element) error {
	if _, err := doc.checkElement(e); err != nil {
		return err
	}
	if _, err := doc.checkElement(parent); err != nil {
		return err
	}
	if e.id == 0 {
		return errors.Wrap(ErrInvalidOperation, "the document container cannot be moved")
	}
	if e.id == parent.id || doc.inSubtree(e.id, parent.id) {
		return errors.Wrap(ErrInvalidOperation, "cannot attach an element under its own descendant")
	}

	if err := e.Detach(doc); err != nil {
		return err
	}
	return parent.AppendChild(doc, e.AsNode())
}

// inSubtree reports whether the element arena index of is root itself
// or a descendant of root.
func (d *Document) inSubtree(root, of int) bool {
	for cur := of; cur != noParent; cur = d.elems[cur].parent {
		if cur == root {
			return true
		}
	}
	return false
}

// killSubtree tombstones a node and, for elements, everything below it.
// Slots are never reused within the document's lifetime, so a stale
// handle can only ever observe its own tombstone, not unrelated data.
func (d *Document) killSubtree(n Node) {
	if el, ok := n.AsElement(); ok {
		slot := &d.elems[el.id]
		for _, c := range slot.children {
			d.killSubtree(c)
		}
		slot.children = nil
		slot.parent = noParent
		slot.alive = false
		return
	}
	slot := &d.leaves[n.id]
	slot.parent = noParent
	slot.alive = false
}
