package xmldoc

import "github.com/lestrrat-go/option"

type Option = option.Interface

type identEncoding struct{}
type identStrict struct{}
type identEmptyTextNodes struct{}
type identDeclaration struct{}
type identIndent struct{}

// ParseOption is an option accepted by Parse and ParseReader.
type ParseOption interface {
	Option
	parseOption()
}

type parseOption struct{ Option }

func (*parseOption) parseOption() {}

// WriteOption is an option accepted by the serializer entry points.
type WriteOption interface {
	Option
	writeOption()
}

type writeOption struct{ Option }

func (*writeOption) writeOption() {}

// WithEncoding overrides encoding detection and decodes the input with
// the named encoding, ignoring both the BOM and the XML declaration.
func WithEncoding(v string) ParseOption {
	return &parseOption{option.New(identEncoding{}, v)}
}

// WithStrict controls strict parsing. By default the parser tolerates
// a small set of common problems, such as attributes without quotes,
// missing space between attributes and "--" inside comments. With
// strict parsing enabled those constructs abort the parse instead.
func WithStrict(v bool) ParseOption {
	return &parseOption{option.New(identStrict{}, v)}
}

// WithEmptyTextNodes keeps whitespace-only text between elements as
// text nodes instead of discarding it.
func WithEmptyTextNodes(v bool) ParseOption {
	return &parseOption{option.New(identEmptyTextNodes{}, v)}
}

// WithDeclaration controls whether the serializer emits the leading
// XML declaration. It defaults to true.
func WithDeclaration(v bool) WriteOption {
	return &writeOption{option.New(identDeclaration{}, v)}
}

// WithIndent pretty-prints the output, indenting nested elements by v.
// An empty string (the default) writes the document verbatim.
func WithIndent(v string) WriteOption {
	return &writeOption{option.New(identIndent{}, v)}
}
