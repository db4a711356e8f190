package xmldoc

// Valid reports whether the handle still refers to a live node of doc.
// This is the one operation that never returns an error: a handle to a
// removed node, or a handle from another document, simply answers
// false.
func (n Node) Valid(doc *Document) bool {
	_, _, err := doc.checkNode(n)
	return err == nil
}

// Valid reports whether the element handle still refers to a live
// element of doc.
func (e Element) Valid(doc *Document) bool {
	_, err := doc.checkElement(e)
	return err == nil
}

// Content returns the node's text content. For a leaf node that is its
// stored string; for an element it is the recursive concatenation of
// all text, CDATA and processing instruction content below it.
func (n Node) Content(doc *Document) (string, error) {
	eslot, lslot, err := doc.checkNode(n)
	if err != nil {
		return "", err
	}
	if lslot != nil {
		return lslot.content, nil
	}

	var buf []byte
	doc.appendTextContent(&buf, eslot)
	return string(buf), nil
}

// SetContent replaces a leaf node's content string. It fails on element
// handles; use Element.SetTextContent for those.
func (n Node) SetContent(doc *Document, content string) error {
	_, lslot, err := doc.checkNode(n)
	if err != nil {
		return err
	}
	if lslot == nil {
		return ErrInvalidOperation
	}
	lslot.content = content
	return nil
}

// Parent returns the node's parent element. The second return is false
// for a detached node, for the root element, and for invalid handles.
func (n Node) Parent(doc *Document) (Element, bool) {
	eslot, lslot, err := doc.checkNode(n)
	if err != nil {
		return Element{}, false
	}

	parent := noParent
	if lslot != nil {
		parent = lslot.parent
	} else {
		parent = eslot.parent
	}
	if parent == noParent || parent == 0 {
		// the hidden container is not exposed as a parent
		return Element{}, false
	}
	return Element{docID: doc.id, id: parent}, true
}

func (d *Document) appendTextContent(buf *[]byte, slot *elementSlot) {
	for _, child := range slot.children {
		if e, ok := child.AsElement(); ok {
			d.appendTextContent(buf, &d.elems[e.id])
			continue
		}
		switch child.kind {
		case TextNode, CDATANode, ProcessingInstructionNode:
			*buf = append(*buf, d.leaves[child.id].content...)
		}
	}
}
