package xmldoc

// ElementBuilder accumulates an element description so that a subtree
// can be declared in one expression instead of a sequence of mutation
// calls. Nothing is allocated in the document until a terminal method
// (Finish, AppendTo, InsertTo) runs.
type ElementBuilder struct {
	doc      *Document
	name     string
	attrs    []builderAttr
	nsDecls  []builderAttr
	children []builderChild
}

type builderAttr struct {
	key   string
	value string
}

type builderChild struct {
	kind    NodeType
	content string
	elem    *ElementBuilder
}

// Build starts a builder for an element named name. The name may carry
// a prefix, as in "dc:title".
func (d *Document) Build(name string) *ElementBuilder {
	return &ElementBuilder{doc: d, name: name}
}

// Attribute records an attribute. Later values for the same key win,
// matching SetAttribute's upsert behavior.
func (b *ElementBuilder) Attribute(key, value string) *ElementBuilder {
	b.attrs = append(b.attrs, builderAttr{key: key, value: value})
	return b
}

// NamespaceDecl records a namespace declaration. An empty prefix
// declares the default namespace.
func (b *ElementBuilder) NamespaceDecl(prefix, uri string) *ElementBuilder {
	b.nsDecls = append(b.nsDecls, builderAttr{key: prefix, value: uri})
	return b
}

// Text appends a text child.
func (b *ElementBuilder) Text(content string) *ElementBuilder {
	b.children = append(b.children, builderChild{kind: TextNode, content: content})
	return b
}

// Comment appends a comment child.
func (b *ElementBuilder) Comment(content string) *ElementBuilder {
	b.children = append(b.children, builderChild{kind: CommentNode, content: content})
	return b
}

// CDATA appends a CDATA section child.
func (b *ElementBuilder) CDATA(content string) *ElementBuilder {
	b.children = append(b.children, builderChild{kind: CDATANode, content: content})
	return b
}

// Child appends a nested element child built by its own builder. The
// nested builder must come from the same document.
func (b *ElementBuilder) Child(child *ElementBuilder) *ElementBuilder {
	b.children = append(b.children, builderChild{kind: ElementNode, elem: child})
	return b
}

// Element is shorthand for Child(b.doc.Build(name)); it declares an
// empty nested element.
func (b *ElementBuilder) Element(name string) *ElementBuilder {
	return b.Child(b.doc.Build(name))
}

// Finish materializes the element and its subtree in the document and
// returns its handle. The element is created detached.
func (b *ElementBuilder) Finish() (Element, error) {
	if b.elemDoc() != b.doc {
		return Element{}, ErrInvalidHandle
	}
	return b.materialize()
}

func (b *ElementBuilder) materialize() (Element, error) {
	e := b.doc.CreateElement(b.name)
	for _, a := range b.attrs {
		if err := e.SetAttribute(b.doc, a.key, a.value); err != nil {
			return Element{}, err
		}
	}
	for _, ns := range b.nsDecls {
		if err := e.SetNamespaceDecl(b.doc, ns.key, ns.value); err != nil {
			return Element{}, err
		}
	}
	for _, c := range b.children {
		var n Node
		switch c.kind {
		case ElementNode:
			ce, err := c.elem.materialize()
			if err != nil {
				return Element{}, err
			}
			n = ce.AsNode()
		case TextNode:
			n = b.doc.CreateText(c.content)
		case CommentNode:
			n = b.doc.CreateComment(c.content)
		case CDATANode:
			n = b.doc.CreateCDATA(c.content)
		}
		if err := e.AppendChild(b.doc, n); err != nil {
			return Element{}, err
		}
	}
	return e, nil
}

// elemDoc walks nested builders and reports the document they were
// started on, so a builder from another document cannot be spliced in.
func (b *ElementBuilder) elemDoc() *Document {
	for _, c := range b.children {
		if c.elem != nil {
			if d := c.elem.elemDoc(); d != b.doc {
				return d
			}
		}
	}
	return b.doc
}

// AppendTo materializes the subtree and appends it to parent.
func (b *ElementBuilder) AppendTo(parent Element) (Element, error) {
	e, err := b.Finish()
	if err != nil {
		return Element{}, err
	}
	if err := parent.AppendChild(b.doc, e.AsNode()); err != nil {
		return Element{}, err
	}
	return e, nil
}

// InsertTo materializes the subtree and inserts it at position i of
// parent's child list.
func (b *ElementBuilder) InsertTo(parent Element, i int) (Element, error) {
	e, err := b.Finish()
	if err != nil {
		return Element{}, err
	}
	if err := parent.InsertChild(b.doc, i, e.AsNode()); err != nil {
		return Element{}, err
	}
	return e, nil
}
