package xmldoc

import (
	"io"

	"github.com/lestrrat-go/pdebug/v3"
	"github.com/pkg/errors"
)

// Parser turns serialized XML into a Document. The zero value is not
// usable; construct one with NewParser. A Parser holds only its
// configuration, so a single Parser may be reused for any number of
// inputs, but not concurrently.
type Parser struct {
	options []ParseOption
}

// Parse is a convenience shortcut for NewParser(options...).Parse(b).
func Parse(b []byte, options ...ParseOption) (*Document, error) {
	return NewParser(options...).Parse(b)
}

// ParseString parses XML held in a string.
func ParseString(s string, options ...ParseOption) (*Document, error) {
	return Parse([]byte(s), options...)
}

// ParseReader drains r and parses the result. The entire input has to
// be in memory before parsing starts, because encoding detection needs
// to look at the head of the document before anything else is decided.
func ParseReader(r io.Reader, options ...ParseOption) (*Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read input")
	}
	return Parse(b, options...)
}

func NewParser(options ...ParseOption) *Parser {
	return &Parser{options: options}
}

func (p *Parser) Parse(b []byte) (*Document, error) {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	pctx := &parserCtx{}
	if err := pctx.init(p, b); err != nil {
		return nil, err
	}
	defer pctx.release() //nolint:errcheck

	if err := pctx.parseDocument(); err != nil {
		return nil, err
	}

	return pctx.doc, nil
}

func (p *Parser) ParseReader(r io.Reader) (*Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read input")
	}
	return p.Parse(b)
}
