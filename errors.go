package xmldoc

import (
	"errors"
	"fmt"
)

var (
	// handle errors
	ErrInvalidHandle    = errors.New("invalid handle")
	ErrInvalidOperation = errors.New("operation cannot be performed")
	ErrHasParent        = errors.New("node already has a parent")
	ErrIndexOutOfRange  = errors.New("child index out of range")

	// encoding errors
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrInvalidEncoding     = errors.New("input is not valid for its encoding")

	// structure errors
	ErrMissingRoot   = errors.New("document has no root element")
	ErrMultipleRoots = errors.New("document has more than one root element")

	// syntax errors
	ErrAmpersandRequired            = errors.New("'&' was required here")
	ErrDocTypeNotFinished           = errors.New("doctype not finished")
	ErrDocumentEnd                  = errors.New("extra content at document end")
	ErrEmptyDocument                = errors.New("start tag expected, '<' not found")
	ErrEqualSignRequired            = errors.New("'=' was required here")
	ErrGtRequired                   = errors.New("'>' was required here")
	ErrHyphenInComment              = errors.New("'--' not allowed in comment")
	ErrInvalidChar                  = errors.New("invalid char")
	ErrInvalidCDSect                = errors.New("invalid CDATA section")
	ErrInvalidComment               = errors.New("invalid comment section")
	ErrInvalidEncodingName          = errors.New("invalid encoding name")
	ErrInvalidProcessingInstruction = errors.New("invalid processing instruction")
	ErrInvalidVersionNum            = errors.New("invalid version")
	ErrInvalidXMLDecl               = errors.New("invalid XML declaration")
	ErrLtSlashRequired              = errors.New("'</' is required")
	ErrMisplacedCDATAEnd            = errors.New("misplaced CDATA end ']]>'")
	ErrNameRequired                 = errors.New("name is required")
	ErrNameTooLong                  = errors.New("name is too long")
	ErrPrematureEOF                 = errors.New("end of document reached")
	ErrSemicolonRequired            = errors.New("';' is required")
	ErrSpaceRequired                = errors.New("space required")
	ErrStartTagRequired             = errors.New("start tag expected, '<' not found")
	ErrStringNotClosed              = errors.New("string not closed")
	ErrStringNotStarted             = errors.New("string not started")
)

// ErrParseError decorates a token-level error with the position in the
// source text where the parser gave up.
type ErrParseError struct {
	Column     int
	Err        error
	Location   int
	Line       string
	LineNumber int
}

func (e ErrParseError) Error() string {
	return fmt.Sprintf(
		"%s at line %d, column %d\n -> '%s' <-- around here",
		e.Err,
		e.LineNumber,
		e.Column,
		e.Line,
	)
}

func (e ErrParseError) Unwrap() error {
	return e.Err
}

// ErrTagMismatch is returned when a closing tag does not match the
// element that is currently open.
type ErrTagMismatch struct {
	Expected string
	Found    string
}

func (e ErrTagMismatch) Error() string {
	return "closing tag does not match ('" + e.Expected + "' != '" + e.Found + "')"
}

// ErrUnclosedTag is returned when the input ends while elements are
// still open.
type ErrUnclosedTag struct {
	Name string
}

func (e ErrUnclosedTag) Error() string {
	return "unexpected end of input: tag '" + e.Name + "' is not closed"
}

// ErrUnknownEntity is returned for a named entity reference that is not
// one of the five predefined entities. Passing the raw reference
// through would produce text that a conformant reader never sees, so
// the parser refuses instead.
type ErrUnknownEntity struct {
	Name string
}

func (e ErrUnknownEntity) Error() string {
	return "unknown entity reference '&" + e.Name + ";'"
}
