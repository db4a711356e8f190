package xmldoc

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xmldoc-go/xmldoc/internal/pool"
)

// Dumper serializes a Document or a single node back to XML text. The
// output is always UTF-8 regardless of the encoding the document was
// parsed from.
type Dumper struct{}

type dumpConfig struct {
	declaration bool
	indent      string
}

func newDumpConfig(options []WriteOption) dumpConfig {
	cfg := dumpConfig{declaration: true}
	for _, o := range options {
		switch o.Ident().(type) {
		case identDeclaration:
			cfg.declaration = o.Value().(bool)
		case identIndent:
			cfg.indent = o.Value().(string)
		}
	}
	return cfg
}

// Write serializes the document to out.
func (d *Document) Write(out io.Writer, options ...WriteOption) error {
	var dumper Dumper
	return dumper.DumpDoc(out, d, options...)
}

// XMLString serializes the document and returns it as a string.
func (d *Document) XMLString(options ...WriteOption) (string, error) {
	var sb strings.Builder
	if err := d.Write(&sb, options...); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (d *Dumper) DumpDoc(out io.Writer, doc *Document, options ...WriteOption) error {
	cfg := newDumpConfig(options)

	if cfg.declaration {
		if err := d.dumpDeclaration(out, doc); err != nil {
			return err
		}
	}

	roots := doc.RootNodes()
	for i, n := range roots {
		if err := d.dumpNode(out, doc, n, cfg, 0); err != nil {
			return err
		}
		if i != len(roots)-1 {
			if err := writeString(out, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// DumpNode serializes a single node and its subtree, without the XML
// declaration.
func (d *Dumper) DumpNode(out io.Writer, doc *Document, n Node, options ...WriteOption) error {
	cfg := newDumpConfig(options)
	if _, _, err := doc.checkNode(n); err != nil {
		return err
	}
	return d.dumpNode(out, doc, n, cfg, 0)
}

func (d *Dumper) dumpDeclaration(out io.Writer, doc *Document) error {
	version := doc.Version()
	if version == "" {
		version = "1.0"
	}
	if err := writeString(out, `<?xml version="`+version+`" encoding="UTF-8"`); err != nil {
		return err
	}

	switch doc.Standalone() {
	case StandaloneExplicitYes:
		if err := writeString(out, ` standalone="yes"`); err != nil {
			return err
		}
	case StandaloneExplicitNo:
		if err := writeString(out, ` standalone="no"`); err != nil {
			return err
		}
	}
	return writeString(out, "?>\n")
}

func (d *Dumper) dumpNode(out io.Writer, doc *Document, n Node, cfg dumpConfig, depth int) error {
	switch n.Kind() {
	case ElementNode:
		el, _ := n.AsElement()
		return d.dumpElement(out, doc, el, cfg, depth)
	case TextNode:
		content, err := n.Content(doc)
		if err != nil {
			return err
		}
		return escapeText(out, content)
	case CDATANode:
		content, err := n.Content(doc)
		if err != nil {
			return err
		}
		if err := writeString(out, "<![CDATA["); err != nil {
			return err
		}
		if err := writeString(out, content); err != nil {
			return err
		}
		return writeString(out, "]]>")
	case CommentNode:
		content, err := n.Content(doc)
		if err != nil {
			return err
		}
		if err := writeString(out, "<!--"); err != nil {
			return err
		}
		if err := writeString(out, content); err != nil {
			return err
		}
		return writeString(out, "-->")
	case ProcessingInstructionNode:
		content, err := n.Content(doc)
		if err != nil {
			return err
		}
		if err := writeString(out, "<?"); err != nil {
			return err
		}
		if err := writeString(out, content); err != nil {
			return err
		}
		return writeString(out, "?>")
	case DocTypeNode:
		content, err := n.Content(doc)
		if err != nil {
			return err
		}
		if err := writeString(out, "<!DOCTYPE "); err != nil {
			return err
		}
		if err := writeString(out, content); err != nil {
			return err
		}
		return writeString(out, ">")
	}
	return errors.Wrapf(ErrInvalidHandle, "unknown node type %d", n.Kind())
}

func (d *Dumper) dumpElement(out io.Writer, doc *Document, e Element, cfg dumpConfig, depth int) error {
	slot, err := doc.checkElement(e)
	if err != nil {
		return err
	}

	name := slot.name
	if err := writeString(out, "<"+name); err != nil {
		return err
	}

	for prefix, uri := range slot.nsDecls.Range() {
		attr := "xmlns"
		if prefix != "" {
			attr += ":" + prefix
		}
		if err := writeString(out, " "+attr+`="`); err != nil {
			return err
		}
		if err := escapeAttribute(out, uri); err != nil {
			return err
		}
		if err := writeString(out, `"`); err != nil {
			return err
		}
	}

	for key, value := range slot.attrs.Range() {
		if err := writeString(out, " "+key+`="`); err != nil {
			return err
		}
		if err := escapeAttribute(out, value); err != nil {
			return err
		}
		if err := writeString(out, `"`); err != nil {
			return err
		}
	}

	if len(slot.children) == 0 {
		return writeString(out, " />")
	}

	if err := writeString(out, ">"); err != nil {
		return err
	}

	// indented output puts each child element on its own line, but only
	// when no text or CDATA is mixed in, so character content survives
	// round trips untouched
	indented := cfg.indent != "" && !hasTextChild(slot)

	for _, c := range slot.children {
		if indented {
			if err := writeString(out, "\n"+strings.Repeat(cfg.indent, depth+1)); err != nil {
				return err
			}
		}
		if err := d.dumpNode(out, doc, c, cfg, depth+1); err != nil {
			return err
		}
	}
	if indented {
		if err := writeString(out, "\n"+strings.Repeat(cfg.indent, depth)); err != nil {
			return err
		}
	}

	return writeString(out, "</"+name+">")
}

func hasTextChild(slot *elementSlot) bool {
	for _, c := range slot.children {
		if c.Kind() == TextNode || c.Kind() == CDATANode {
			return true
		}
	}
	return false
}

func writeString(out io.Writer, s string) error {
	_, err := io.WriteString(out, s)
	return errors.Wrap(err, "failed to write output")
}

// escapeText escapes the characters that cannot appear literally in
// character data.
func escapeText(out io.Writer, s string) error {
	buf := pool.ByteSlice().GetCapacity(len(s))
	// deferred as a closure so the pool gets the slice as grown by the
	// appends below, not the one handed out above
	defer func() { pool.ByteSlice().Put(buf) }()

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			buf = append(buf, "&amp;"...)
		case '<':
			buf = append(buf, "&lt;"...)
		case '>':
			buf = append(buf, "&gt;"...)
		default:
			buf = append(buf, c)
		}
	}

	_, err := out.Write(buf)
	return errors.Wrap(err, "failed to write output")
}

// escapeAttribute escapes an attribute value for emission inside double
// quotes. Tab, newline and carriage return become character references
// so that the parser's whitespace normalization cannot alter them on
// the way back in.
func escapeAttribute(out io.Writer, s string) error {
	buf := pool.ByteSlice().GetCapacity(len(s))
	defer func() { pool.ByteSlice().Put(buf) }()

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			buf = append(buf, "&amp;"...)
		case '<':
			buf = append(buf, "&lt;"...)
		case '>':
			buf = append(buf, "&gt;"...)
		case '"':
			buf = append(buf, "&quot;"...)
		case '\t', '\n', '\r':
			buf = append(buf, "&#x"...)
			buf = strconv.AppendUint(buf, uint64(c), 16)
			buf = append(buf, ';')
		default:
			buf = append(buf, c)
		}
	}

	_, err := out.Write(buf)
	return errors.Wrap(err, "failed to write output")
}
