package xmldoc

import (
	"iter"
	"strings"
)

// SplitName separates a full name into its namespace prefix and local
// part. The prefix is "" when the name has none. Prefixes are literal
// strings throughout this package; they are never resolved against
// namespace declarations.
func SplitName(full string) (prefix, local string) {
	if i := strings.IndexByte(full, ':'); i >= 0 {
		return full[:i], full[i+1:]
	}
	return "", full
}

// FullName returns the element's name including any namespace prefix.
func (e Element) FullName(doc *Document) (string, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return "", err
	}
	return slot.name, nil
}

// Name returns the element's local name, without its namespace prefix.
func (e Element) Name(doc *Document) (string, error) {
	full, err := e.FullName(doc)
	if err != nil {
		return "", err
	}
	_, local := SplitName(full)
	return local, nil
}

// Prefix returns the element's namespace prefix, or "" when it has
// none.
func (e Element) Prefix(doc *Document) (string, error) {
	full, err := e.FullName(doc)
	if err != nil {
		return "", err
	}
	prefix, _ := SplitName(full)
	return prefix, nil
}

// SetFullName replaces the element's name, prefix and all.
func (e Element) SetFullName(doc *Document, name string) error {
	slot, err := doc.checkElement(e)
	if err != nil {
		return err
	}
	slot.name = name
	return nil
}

// SetName replaces the element's local name, preserving its prefix.
func (e Element) SetName(doc *Document, local string) error {
	slot, err := doc.checkElement(e)
	if err != nil {
		return err
	}
	prefix, _ := SplitName(slot.name)
	if prefix == "" {
		slot.name = local
	} else {
		slot.name = prefix + ":" + local
	}
	return nil
}

// SetPrefix replaces the element's namespace prefix, preserving its
// local name. An empty prefix removes the prefix.
func (e Element) SetPrefix(doc *Document, prefix string) error {
	slot, err := doc.checkElement(e)
	if err != nil {
		return err
	}
	_, local := SplitName(slot.name)
	if prefix == "" {
		slot.name = local
	} else {
		slot.name = prefix + ":" + local
	}
	return nil
}

// Attribute returns the value stored under name. The bool return is
// false when the attribute is absent.
func (e Element) Attribute(doc *Document, name string) (string, bool, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return "", false, err
	}
	v, ok := slot.attrs.Get(name)
	return v, ok, nil
}

// SetAttribute adds or replaces an attribute. Replacing keeps the
// attribute's position in iteration order; adding appends.
func (e Element) SetAttribute(doc *Document, name, value string) error {
	slot, err := doc.checkElement(e)
	if err != nil {
		return err
	}
	slot.attrs.Set(name, value)
	return nil
}

// RemoveAttribute removes an attribute. The bool return is false when
// the attribute was absent.
func (e Element) RemoveAttribute(doc *Document, name string) (bool, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return false, err
	}
	return slot.attrs.Delete(name), nil
}

// Attributes iterates over the element's attributes in insertion
// order. The sequence is restartable. It snapshots the attribute set
// when iteration starts, so mutations made while iterating do not
// affect an iteration already in progress.
func (e Element) Attributes(doc *Document) (iter.Seq2[string, string], error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return nil, err
	}
	return func(yield func(string, string) bool) {
		snapshot := slot.attrs.Clone()
		for k, v := range snapshot.Range() {
			if !yield(k, v) {
				return
			}
		}
	}, nil
}

// AttributeCount returns the number of attributes on the element.
func (e Element) AttributeCount(doc *Document) (int, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return 0, err
	}
	return slot.attrs.Len(), nil
}

// NamespaceDecl returns the namespace URI declared on this element for
// prefix ("" for the default namespace). Declarations are stored as
// literal strings; nothing is resolved or inherited here. Use
// NamespaceForPrefix for scope-aware lookup.
func (e Element) NamespaceDecl(doc *Document, prefix string) (string, bool, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return "", false, err
	}
	v, ok := slot.nsDecls.Get(prefix)
	return v, ok, nil
}

// SetNamespaceDecl declares prefix→uri on this element, as an
// xmlns/xmlns:prefix attribute would.
func (e Element) SetNamespaceDecl(doc *Document, prefix, uri string) error {
	slot, err := doc.checkElement(e)
	if err != nil {
		return err
	}
	slot.nsDecls.Set(prefix, uri)
	return nil
}

// NamespaceDecls iterates over the namespace declarations made
// directly on this element, in insertion order.
func (e Element) NamespaceDecls(doc *Document) (iter.Seq2[string, string], error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return nil, err
	}
	return slot.nsDecls.Range(), nil
}

// NamespaceForPrefix walks from this element to the root looking for
// the nearest declaration of prefix. The "xml" and "xmlns" prefixes
// resolve to their fixed URIs.
func (e Element) NamespaceForPrefix(doc *Document, prefix string) (string, bool, error) {
	switch prefix {
	case "xml":
		return "http://www.w3.org/XML/1998/namespace", true, nil
	case "xmlns":
		return "http://www.w3.org/2000/xmlns/", true, nil
	}

	slot, err := doc.checkElement(e)
	if err != nil {
		return "", false, err
	}
	for {
		if v, ok := slot.nsDecls.Get(prefix); ok {
			return v, true, nil
		}
		if slot.parent == noParent || slot.parent == 0 {
			return "", false, nil
		}
		slot = &doc.elems[slot.parent]
	}
}

// Children iterates over the element's child nodes in document order.
// The sequence is lazy, finite and restartable. Iteration snapshots the
// child list when it starts: nodes appended or removed through other
// handles while an iteration is in progress do not change that
// iteration, but a node removed mid-iteration is skipped rather than
// yielded stale.
func (e Element) Children(doc *Document) (iter.Seq[Node], error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return nil, err
	}
	snapshot := make([]Node, len(slot.children))
	copy(snapshot, slot.children)
	return func(yield func(Node) bool) {
		for _, n := range snapshot {
			if !n.Valid(doc) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}, nil
}

// ChildNodes returns the element's children as a slice.
func (e Element) ChildNodes(doc *Document) ([]Node, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, len(slot.children))
	copy(nodes, slot.children)
	return nodes, nil
}

// ChildCount returns the number of child nodes of any kind.
func (e Element) ChildCount(doc *Document) (int, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return 0, err
	}
	return len(slot.children), nil
}

// ChildElements returns the element children, skipping text and other
// leaf nodes.
func (e Element) ChildElements(doc *Document) ([]Element, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return nil, err
	}
	var out []Element
	for _, n := range slot.children {
		if el, ok := n.AsElement(); ok {
			out = append(out, el)
		}
	}
	return out, nil
}

// Find returns the first direct child element whose local name matches
// name. The namespace prefix is ignored for matching: Find on "title"
// matches both <title> and <dc:title>.
func (e Element) Find(doc *Document, name string) (Element, bool, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return Element{}, false, err
	}
	for _, n := range slot.children {
		el, ok := n.AsElement()
		if !ok {
			continue
		}
		if _, local := SplitName(doc.elems[el.id].name); local == name {
			return el, true, nil
		}
	}
	return Element{}, false, nil
}

// FindAll returns every direct child element whose local name matches
// name, in document order.
func (e Element) FindAll(doc *Document, name string) ([]Element, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return nil, err
	}
	var out []Element
	for _, n := range slot.children {
		el, ok := n.AsElement()
		if !ok {
			continue
		}
		if _, local := SplitName(doc.elems[el.id].name); local == name {
			out = append(out, el)
		}
	}
	return out, nil
}

// FindRecursive returns the first descendant element, in document
// order, whose local name matches name.
func (e Element) FindRecursive(doc *Document, name string) (Element, bool, error) {
	slot, err := doc.checkElement(e)
	if err != nil {
		return Element{}, false, err
	}
	return doc.findRecursive(slot, name)
}

func (d *Document) findRecursive(slot *elementSlot, name string) (Element, bool, error) {
	for _, n := range slot.children {
		el, ok := n.AsElement()
		if !ok {
			continue
		}
		if _, local := SplitName(d.elems[el.id].name); local == name {
			return el, true, nil
		}
		if found, ok, err := d.findRecursive(&d.elems[el.id], name); err != nil || ok {
			return found, ok, err
		}
	}
	return Element{}, false, nil
}

// TextContent concatenates all text, CDATA and processing instruction
// content below the element, in document order.
func (e Element) TextContent(doc *Document) (string, error) {
	return e.AsNode().Content(doc)
}

// SetTextContent removes all of the element's children and replaces
// them with a single text node carrying text.
func (e Element) SetTextContent(doc *Document, text string) error {
	if _, err := doc.checkElement(e); err != nil {
		return err
	}
	if _, err := e.ClearChildren(doc); err != nil {
		return err
	}
	return e.AppendChild(doc, doc.CreateText(text))
}
