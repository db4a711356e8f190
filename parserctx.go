package xmldoc

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lestrrat-go/pdebug/v3"
	"github.com/lestrrat-go/strcursor"
	"github.com/pkg/errors"
	"github.com/xmldoc-go/xmldoc/encoding"
	"github.com/xmldoc-go/xmldoc/internal/stack"
)

type parseState int

const (
	psInit parseState = iota
	psPrologue
	psContent
	psCDATA
	psPI
	psDTD
	psEpilogue
	psEOF
)

const maxNameLength = 50000

type openElem struct {
	name string
	elem Element
}

type parserCtx struct {
	cursor        *strcursor.RuneCursor
	buf           []byte
	byteOff       int
	doc           *Document
	instate       parseState
	encoding      string
	version       string
	standalone    StandaloneType
	strict        bool
	keepEmptyText bool
	encodingFixed bool
	nodes         stack.Stack[openElem]
}

func (ctx *parserCtx) error(err error) error {
	if _, ok := err.(ErrParseError); ok {
		return err
	}

	return ErrParseError{
		Column:     ctx.cursor.Column(),
		Err:        err,
		Line:       ctx.cursor.Line(),
		LineNumber: ctx.cursor.LineNumber(),
		Location:   ctx.byteOff,
	}
}

var (
	patUCS4BE       = []byte{0x00, 0x00, 0x00, 0x3C}
	patUCS4LE       = []byte{0x3C, 0x00, 0x00, 0x00}
	patUCS42143     = []byte{0x00, 0x00, 0x3C, 0x00}
	patUCS43412     = []byte{0x00, 0x3C, 0x00, 0x00}
	patEBCDIC       = []byte{0x4C, 0x6F, 0xA7, 0x94}
	patUTF16LE4B    = []byte{0x3C, 0x00, 0x3F, 0x00}
	patUTF16BE4B    = []byte{0x00, 0x3C, 0x00, 0x3F}
	patUTF8         = []byte{0xEF, 0xBB, 0xBF}
	patUTF16LE2B    = []byte{0xFF, 0xFE}
	patUTF16BE2B    = []byte{0xFE, 0xFF}
	patMaybeXMLDecl = []byte{0x3C, 0x3F, 0x78, 0x6D}
)

// detectEncoding sniffs the byte order mark, or failing that the byte
// pattern of "<?xm", and returns the name of the detected encoding
// along with the input minus any BOM. An empty name means the input
// gave no hint and should be treated as UTF-8.
func detectEncoding(b []byte) (string, []byte, error) {
	if len(b) >= 4 {
		head := b[:4]
		switch {
		case bytes.Equal(head, patUCS4BE),
			bytes.Equal(head, patUCS4LE),
			bytes.Equal(head, patUCS42143),
			bytes.Equal(head, patUCS43412):
			return "", nil, errors.Wrap(ErrUnsupportedEncoding, "UCS-4 input")
		case bytes.Equal(head, patEBCDIC):
			return "", nil, errors.Wrap(ErrUnsupportedEncoding, "EBCDIC input")
		case bytes.Equal(head, patMaybeXMLDecl):
			// "<?xm" in an ASCII compatible encoding, no BOM.
			// The XML declaration may still name one.
			return "", b, nil
		case bytes.Equal(head, patUTF16LE4B):
			return "utf-16le", b, nil
		case bytes.Equal(head, patUTF16BE4B):
			return "utf-16be", b, nil
		}
	}

	if len(b) >= 3 && bytes.Equal(b[:3], patUTF8) {
		return "utf-8", b[3:], nil
	}

	if len(b) >= 2 {
		head := b[:2]
		if bytes.Equal(head, patUTF16BE2B) {
			return "utf-16be", b[2:], nil
		}
		if bytes.Equal(head, patUTF16LE2B) {
			return "utf-16le", b[2:], nil
		}
	}
	return "", b, nil
}

func (ctx *parserCtx) init(p *Parser, b []byte) error {
	ctx.instate = psInit
	ctx.standalone = StandaloneImplicitNo
	ctx.nodes = nil

	var override string
	for _, o := range p.options {
		switch o.Ident().(type) {
		case identEncoding:
			override = o.Value().(string)
		case identStrict:
			ctx.strict = o.Value().(bool)
		case identEmptyTextNodes:
			ctx.keepEmptyText = o.Value().(bool)
		}
	}

	switch {
	case override != "":
		decoded, err := encoding.Decode(override, b)
		if err != nil {
			return errors.Wrap(ErrUnsupportedEncoding, err.Error())
		}
		// a BOM may survive transcoding; it is not document content
		decoded = bytes.TrimPrefix(decoded, patUTF8)
		b = decoded
		ctx.encoding = override
		ctx.encodingFixed = true
	default:
		enc, rest, err := detectEncoding(b)
		if err != nil {
			return err
		}
		b = rest
		ctx.encoding = enc
		if strings.HasPrefix(enc, "utf-16") {
			decoded, err := encoding.Decode(enc, b)
			if err != nil {
				return errors.Wrap(ErrInvalidEncoding, err.Error())
			}
			b = decoded
			ctx.encodingFixed = true
		}
	}

	ctx.resetCursor(b)
	return nil
}

func (ctx *parserCtx) release() error {
	ctx.cursor = nil
	ctx.buf = nil
	ctx.nodes = nil
	return nil
}

// resetCursor points the cursor at b. The backing bytes and the count
// of bytes consumed so far are kept alongside the cursor because
// strcursor only hands out runes; switchEncoding needs the raw
// unconsumed tail, and parse errors report a byte offset.
func (ctx *parserCtx) resetCursor(b []byte) {
	ctx.buf = b
	ctx.byteOff = 0
	ctx.cursor = strcursor.NewRuneCursor(bytes.NewReader(b))
}

func (ctx *parserCtx) curHasChars(n int) bool {
	return ctx.cursor.PeekN(n) != utf8.RuneError
}

func (ctx *parserCtx) curDone() bool {
	return ctx.cursor.Done()
}

// curAdvance consumes up to n runes. The cursor pops only what its
// read-ahead buffer holds, so each rune is peeked first, which both
// fills the buffer and yields the width to keep byteOff in sync.
func (ctx *parserCtx) curAdvance(n int) {
	defer ctx.markEOF()
	for i := 0; i < n; i++ {
		r := ctx.cursor.Peek()
		if r == utf8.RuneError {
			return
		}
		ctx.byteOff += utf8.RuneLen(r)
		ctx.cursor.Advance(1)
	}
}

func (ctx *parserCtx) curPeek(n int) rune {
	return ctx.cursor.PeekN(n)
}

func (ctx *parserCtx) markEOF() {
	if ctx.cursor.Done() {
		ctx.instate = psEOF
	}
}

func (ctx *parserCtx) curConsume(n int) string {
	defer ctx.markEOF()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		r := ctx.cursor.Peek()
		if r == utf8.RuneError {
			break
		}
		sb.WriteRune(r)
		ctx.byteOff += utf8.RuneLen(r)
		ctx.cursor.Advance(1)
	}
	return sb.String()
}

func (ctx *parserCtx) curConsumePrefix(s string) bool {
	defer ctx.markEOF()
	if !ctx.cursor.ConsumeString(s) {
		return false
	}
	ctx.byteOff += len(s)
	return true
}

func (ctx *parserCtx) curHasPrefix(s string) bool {
	return ctx.cursor.HasPrefixString(s)
}

func isBlankCh(c rune) bool {
	return c == 0x20 || (0x9 <= c && c <= 0xa) || c == 0xd
}

func isChar(r rune) bool {
	if r == utf8.RuneError {
		return false
	}

	c := uint32(r)
	if c < 0x100 {
		return (0x9 <= c && c <= 0xa) || c == 0xd || 0x20 <= c
	}
	return (0x100 <= c && c <= 0xd7ff) || (0xe000 <= c && c <= 0xfffd) || (0x10000 <= c && c <= 0x10ffff)
}

// switchEncoding re-decodes the unread portion of the input using the
// encoding named by the XML declaration. It is a no-op when a BOM or an
// explicit option already fixed the encoding, and when the declaration
// names UTF-8 itself.
func (ctx *parserCtx) switchEncoding() error {
	if ctx.encodingFixed || ctx.encoding == "" {
		return nil
	}

	enc := encoding.Load(ctx.encoding)
	if enc == nil {
		return ctx.error(errors.Wrap(ErrUnsupportedEncoding, ctx.encoding))
	}

	b, err := enc.NewDecoder().Bytes(ctx.buf[ctx.byteOff:])
	if err != nil {
		return ctx.error(errors.Wrap(ErrInvalidEncoding, err.Error()))
	}

	ctx.resetCursor(b)
	ctx.encodingFixed = true
	return nil
}

func (ctx *parserCtx) parseDocument() error {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	ctx.doc = NewDocument()

	if !ctx.curHasChars(1) {
		return ctx.error(ErrEmptyDocument)
	}

	// XML prolog
	if ctx.curHasPrefix("<?xml") && isBlankCh(ctx.curPeek(6)) {
		if err := ctx.parseXMLDecl(); err != nil {
			return err
		}
	}

	// now that the declaration has been read, honor the encoding it named
	if err := ctx.switchEncoding(); err != nil {
		return err
	}

	ctx.doc.version = ctx.version
	if ctx.doc.version == "" {
		ctx.doc.version = "1.0"
	}
	ctx.doc.encoding = ctx.encoding
	if ctx.doc.encoding == "" {
		ctx.doc.encoding = "utf-8"
	}
	ctx.doc.standalone = ctx.standalone

	container := ctx.doc.container()

	ctx.instate = psPrologue
	if err := ctx.parseMisc(container); err != nil {
		return err
	}

	if ctx.curHasPrefix("<!DOCTYPE") {
		if err := ctx.parseDocTypeDecl(container); err != nil {
			return err
		}
		if err := ctx.parseMisc(container); err != nil {
			return err
		}
	}

	if ctx.curDone() {
		return ctx.error(ErrMissingRoot)
	}
	if ctx.curPeek(1) != '<' {
		return ctx.error(ErrStartTagRequired)
	}

	ctx.instate = psContent
	if err := ctx.parseElement(container); err != nil {
		return err
	}

	ctx.instate = psEpilogue
	if err := ctx.parseMisc(container); err != nil {
		return err
	}
	if !ctx.curDone() {
		if ctx.curPeek(1) == '<' {
			return ctx.error(ErrMultipleRoots)
		}
		return ctx.error(ErrDocumentEnd)
	}
	ctx.instate = psEOF

	return nil
}

// parseMisc handles the space between markup outside the root element.
// Processing instructions and comments become children of parent, which
// is always the document container.
func (ctx *parserCtx) parseMisc(parent Element) error {
	for !ctx.curDone() && ctx.instate != psEOF {
		if ctx.curHasPrefix("<?") {
			if err := ctx.parsePI(parent); err != nil {
				return err
			}
		} else if ctx.curHasPrefix("<!--") {
			if err := ctx.parseComment(parent); err != nil {
				return err
			}
		} else if isBlankCh(ctx.curPeek(1)) {
			ctx.skipBlanks()
		} else {
			break
		}
	}

	return nil
}

func (ctx *parserCtx) skipBlanks() {
	i := 1
	for ; ctx.curHasChars(i); i++ {
		if !isBlankCh(ctx.curPeek(i)) {
			break
		}
	}
	i--
	if i > 0 {
		ctx.curAdvance(i)
	}
}

// should only be here if current buffer is at '<?xml'
func (ctx *parserCtx) parseXMLDecl() error {
	if !ctx.curConsumePrefix("<?xml") {
		return ctx.error(ErrInvalidXMLDecl)
	}

	if !isBlankCh(ctx.curPeek(1)) {
		return ctx.error(ErrSpaceRequired)
	}

	ctx.skipBlanks()

	v, err := ctx.parseVersionInfo()
	if err != nil {
		return ctx.error(err)
	}
	ctx.version = v

	if !isBlankCh(ctx.curPeek(1)) {
		// no more attributes, expect the end of the declaration
		if ctx.curPeek(1) == '?' && ctx.curPeek(2) == '>' {
			ctx.curAdvance(2)
			return nil
		}
		return ctx.error(ErrSpaceRequired)
	}

	// we *may* have an encoding decl
	v, err = ctx.parseEncodingDecl()
	if err == nil {
		ctx.encoding = v
		if ctx.curPeek(1) == '?' && ctx.curPeek(2) == '>' {
			ctx.curAdvance(2)
			return nil
		}
	} else if _, ok := err.(errAttrNotFound); !ok {
		return ctx.error(err)
	}

	sd, err := ctx.parseStandaloneDecl()
	if err != nil {
		if _, ok := err.(errAttrNotFound); !ok {
			return ctx.error(err)
		}
	} else {
		ctx.standalone = sd
	}

	ctx.skipBlanks()
	if ctx.curPeek(1) == '?' && ctx.curPeek(2) == '>' {
		ctx.curAdvance(2)
		return nil
	}
	return ctx.error(ErrInvalidXMLDecl)
}

type errAttrNotFound struct {
	token string
}

func (e errAttrNotFound) Error() string {
	return "attribute token '" + e.token + "' not found"
}

type qtextHandler func(qch rune) (string, error)

func (ctx *parserCtx) parseNamedAttribute(name string, cb qtextHandler) (string, error) {
	ctx.skipBlanks()
	if !ctx.curConsumePrefix(name) {
		return "", errAttrNotFound{token: name}
	}

	ctx.skipBlanks()
	if ctx.curPeek(1) != '=' {
		return "", ErrEqualSignRequired
	}

	ctx.curAdvance(1)
	ctx.skipBlanks()
	return ctx.parseQuotedText(cb)
}

// parse the XML version info (version="1.0")
func (ctx *parserCtx) parseVersionInfo() (string, error) {
	return ctx.parseNamedAttribute("version", ctx.parseVersionNum)
}

/*
 * parse the XML version value.
 *
 * [26] VersionNum ::= '1.' [0-9]+
 *
 * In practice allow [0-9].[0-9]+ at that level
 */
func (ctx *parserCtx) parseVersionNum(_ rune) (string, error) {
	if v := ctx.curPeek(1); v > '9' || v < '0' {
		return "", ErrInvalidVersionNum
	}

	if v := ctx.curPeek(2); v != '.' {
		return "", ErrInvalidVersionNum
	}

	if v := ctx.curPeek(3); v > '9' || v < '0' {
		return "", ErrInvalidVersionNum
	}

	for i := 4; ctx.curHasChars(i); i++ {
		if v := ctx.curPeek(i); v > '9' || v < '0' {
			i--
			return ctx.curConsume(i), nil
		}
	}
	return "", ErrInvalidVersionNum
}

func (ctx *parserCtx) parseQuotedText(cb qtextHandler) (string, error) {
	q := ctx.curPeek(1)
	switch q {
	case '"', '\'':
		ctx.curAdvance(1)
	default:
		return "", ErrStringNotStarted
	}
	v, err := cb(q)
	if err != nil {
		return "", err
	}

	if ctx.curPeek(1) != q {
		return "", ErrStringNotClosed
	}
	ctx.curAdvance(1)

	return v, nil
}

func (ctx *parserCtx) parseEncodingDecl() (string, error) {
	return ctx.parseNamedAttribute("encoding", ctx.parseEncodingName)
}

func (ctx *parserCtx) parseEncodingName(_ rune) (string, error) {
	c := ctx.curPeek(1)

	// first char needs to be alphabetical
	if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') {
		return "", ErrInvalidEncodingName
	}

	i := 2
	for ; ctx.curHasChars(i); i++ {
		c = ctx.curPeek(i)
		if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') && c != '.' && c != '_' && c != '-' {
			i--
			break
		}
	}

	return ctx.curConsume(i), nil
}

const (
	yes = "yes"
	no  = "no"
)

func (ctx *parserCtx) parseStandaloneDecl() (StandaloneType, error) {
	v, err := ctx.parseNamedAttribute("standalone", ctx.parseStandaloneDeclValue)
	if err != nil {
		return StandaloneInvalidValue, err
	}
	if v == yes {
		return StandaloneExplicitYes, nil
	}
	return StandaloneExplicitNo, nil
}

func (ctx *parserCtx) parseStandaloneDeclValue(_ rune) (string, error) {
	if ctx.curConsumePrefix(yes) {
		return yes, nil
	}

	if ctx.curConsumePrefix(no) {
		return no, nil
	}

	return "", errors.New("invalid standalone declaration")
}

// parseDocTypeDecl reads the document type declaration, including any
// internal subset, and stores it verbatim as a DocTypeNode. The
// declarations inside the subset are not interpreted.
func (ctx *parserCtx) parseDocTypeDecl(parent Element) error {
	if !ctx.curConsumePrefix("<!DOCTYPE") {
		return ctx.error(ErrDocTypeNotFinished)
	}

	if !isBlankCh(ctx.curPeek(1)) {
		return ctx.error(ErrSpaceRequired)
	}
	ctx.skipBlanks()

	ctx.instate = psDTD
	defer func() { ctx.instate = psPrologue }()

	depth := 0
	var quote rune
	i := 1
	for ; ctx.curHasChars(i); i++ {
		c := ctx.curPeek(i)
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '[':
			depth++
		case ']':
			depth--
		case '>':
			if depth <= 0 {
				content := ctx.curConsume(i - 1)
				ctx.curAdvance(1)
				n := ctx.doc.CreateDocType(strings.TrimRight(content, " \t\r\n"))
				if err := parent.AppendChild(ctx.doc, n); err != nil {
					return ctx.error(err)
				}
				return nil
			}
		}
	}

	return ctx.error(ErrDocTypeNotFinished)
}

func (ctx *parserCtx) parsePI(parent Element) error {
	if !ctx.curConsumePrefix("<?") {
		return ctx.error(ErrInvalidProcessingInstruction)
	}
	oldstate := ctx.instate
	ctx.instate = psPI
	defer func() { ctx.instate = oldstate }()

	target, err := ctx.parsePITarget()
	if err != nil {
		return ctx.error(err)
	}

	if ctx.curConsumePrefix("?>") {
		n := ctx.doc.CreatePI(target)
		if err := parent.AppendChild(ctx.doc, n); err != nil {
			return ctx.error(err)
		}
		return nil
	}

	if !isBlankCh(ctx.curPeek(1)) {
		return ctx.error(ErrSpaceRequired)
	}

	ctx.skipBlanks()
	i := 1
	for ; ctx.curHasChars(i); i++ {
		if ctx.curPeek(i) == '?' && ctx.curPeek(i+1) == '>' {
			i--
			break
		}

		if !isChar(ctx.curPeek(i)) {
			i--
			break
		}
	}

	data := ctx.curConsume(i)

	if !ctx.curConsumePrefix("?>") {
		return ctx.error(ErrInvalidProcessingInstruction)
	}

	content := target
	if data != "" {
		content = target + " " + data
	}
	n := ctx.doc.CreatePI(content)
	if err := parent.AppendChild(ctx.doc, n); err != nil {
		return ctx.error(err)
	}
	return nil
}

func (ctx *parserCtx) parsePITarget() (string, error) {
	name, err := ctx.parseName()
	if err != nil {
		return "", err
	}

	if strings.EqualFold(name, "xml") {
		return "", errors.New("XML declaration allowed only at the start of the document")
	}

	if strings.IndexByte(name, ':') > -1 {
		return "", errors.New("colons are forbidden from PI names '" + name + "'")
	}

	return name, nil
}

func (ctx *parserCtx) parseComment(parent Element) error {
	if !ctx.curConsumePrefix("<!--") {
		return ctx.error(ErrInvalidComment)
	}

	i := 1
	q := ctx.curPeek(i)
	if !isChar(q) {
		return ctx.error(ErrInvalidChar)
	}
	i++

	r := ctx.curPeek(i)
	if !isChar(r) {
		return ctx.error(ErrInvalidChar)
	}
	i++

	cur := ctx.curPeek(i)
	for isChar(cur) && (q != '-' || r != '-' || cur != '>') {
		if q == '-' && r == '-' && ctx.strict {
			return ctx.error(ErrHyphenInComment)
		}
		i++

		q = r
		r = cur
		cur = ctx.curPeek(i)
	}
	if cur != '>' {
		return ctx.error(ErrInvalidComment)
	}

	// -3 for -->
	str := ctx.curConsume(i - 3)
	// and consume the last 3
	ctx.curAdvance(3)

	str = strings.ReplaceAll(str, "\r\n", "\n")
	n := ctx.doc.CreateComment(str)
	if err := parent.AppendChild(ctx.doc, n); err != nil {
		return ctx.error(err)
	}
	return nil
}

func (ctx *parserCtx) parseCDSect(parent Element) error {
	if !ctx.curConsumePrefix("<![CDATA[") {
		return ctx.error(ErrInvalidCDSect)
	}

	ctx.instate = psCDATA
	defer func() { ctx.instate = psContent }()

	str, err := ctx.parseCharDataInternal(true)
	if err != nil {
		return err
	}

	if !ctx.curConsumePrefix("]]>") {
		return ctx.error(ErrInvalidCDSect)
	}

	n := ctx.doc.CreateCDATA(str)
	if err := parent.AppendChild(ctx.doc, n); err != nil {
		return ctx.error(err)
	}
	return nil
}

func (ctx *parserCtx) parseElement(parent Element) error {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	e, empty, err := ctx.parseStartTag(parent)
	if err != nil {
		return err
	}

	if empty {
		return nil
	}

	if err := ctx.parseContent(e); err != nil {
		return err
	}

	return ctx.parseEndTag()
}

// parseStartTag parses up to and including the closing '>' (or '/>' for
// an empty element), creates the element and attaches it to parent. For
// a non-empty element, the element is also pushed onto the open tag
// stack for parseEndTag to match against.
func (ctx *parserCtx) parseStartTag(parent Element) (Element, bool, error) {
	if ctx.curPeek(1) != '<' {
		return Element{}, false, ctx.error(ErrStartTagRequired)
	}
	ctx.curAdvance(1)

	name, err := ctx.parseName()
	if err != nil {
		return Element{}, false, ctx.error(err)
	}

	e := ctx.doc.CreateElement(name)
	if err := parent.AppendChild(ctx.doc, e.AsNode()); err != nil {
		return Element{}, false, ctx.error(err)
	}

	empty := false
	for ctx.instate != psEOF {
		ctx.skipBlanks()
		if ctx.curPeek(1) == '>' {
			ctx.curAdvance(1)
			break
		}

		if ctx.curPeek(1) == '/' && ctx.curPeek(2) == '>' {
			ctx.curAdvance(2)
			empty = true
			break
		}

		key, value, err := ctx.parseAttribute()
		if err != nil {
			return Element{}, false, err
		}

		if err := ctx.storeAttribute(e, key, value); err != nil {
			return Element{}, false, ctx.error(err)
		}

		if ctx.strict && ctx.instate != psEOF {
			if c := ctx.curPeek(1); c != '>' && c != '/' && !isBlankCh(c) {
				return Element{}, false, ctx.error(ErrSpaceRequired)
			}
		}
	}
	if ctx.instate == psEOF && !empty {
		return Element{}, false, ctx.error(ErrUnclosedTag{Name: name})
	}

	if !empty {
		ctx.nodes.Push(openElem{name: name, elem: e})
	}
	return e, empty, nil
}

// storeAttribute routes xmlns and xmlns:prefix attributes to the
// element's namespace declarations; everything else is an ordinary
// attribute. Repeated attributes keep their first position, last value.
func (ctx *parserCtx) storeAttribute(e Element, key, value string) error {
	switch {
	case key == "xmlns":
		return e.SetNamespaceDecl(ctx.doc, "", value)
	case strings.HasPrefix(key, "xmlns:"):
		return e.SetNamespaceDecl(ctx.doc, key[len("xmlns:"):], value)
	default:
		return e.SetAttribute(ctx.doc, key, value)
	}
}

func (ctx *parserCtx) parseEndTag() error {
	if !ctx.curConsumePrefix("</") {
		open, ok := ctx.nodes.Peek()
		if ok {
			return ctx.error(ErrUnclosedTag{Name: open.name})
		}
		return ctx.error(ErrLtSlashRequired)
	}

	name, err := ctx.parseName()
	if err != nil {
		return ctx.error(err)
	}
	ctx.skipBlanks()
	if ctx.curPeek(1) != '>' {
		return ctx.error(ErrGtRequired)
	}
	ctx.curAdvance(1)

	open, ok := ctx.nodes.Pop()
	if !ok {
		return ctx.error(ErrLtSlashRequired)
	}
	if open.name != name {
		return ctx.error(ErrTagMismatch{Expected: open.name, Found: name})
	}

	return nil
}

func (ctx *parserCtx) parseAttribute() (string, string, error) {
	name, err := ctx.parseName()
	if err != nil {
		return "", "", ctx.error(err)
	}

	ctx.skipBlanks()

	if ctx.curPeek(1) != '=' {
		if !ctx.strict {
			// a bare attribute such as <input checked>
			return name, "", nil
		}
		return "", "", ctx.error(ErrEqualSignRequired)
	}
	ctx.curAdvance(1)
	ctx.skipBlanks()

	v, err := ctx.parseAttributeValue()
	if err != nil {
		return "", "", err
	}

	return name, v, nil
}

func (ctx *parserCtx) parseAttributeValue() (string, error) {
	q := ctx.curPeek(1)
	switch q {
	case '"', '\'':
		ctx.curAdvance(1)
	default:
		if ctx.strict {
			return "", ctx.error(ErrStringNotStarted)
		}
		return ctx.parseUnquotedAttributeValue()
	}

	v, err := ctx.parseAttributeValueInternal(q)
	if err != nil {
		return "", err
	}

	if ctx.curPeek(1) != q {
		return "", ctx.error(ErrStringNotClosed)
	}
	ctx.curAdvance(1)

	return v, nil
}

func (ctx *parserCtx) parseAttributeValueInternal(qch rune) (string, error) {
	var v []byte
	for {
		i := 1
		for ; ctx.curHasChars(i); i++ {
			c := ctx.curPeek(i)
			if c == qch || c == '&' || c == '<' {
				i--
				break
			}
		}
		if i > 0 {
			v = append(v, normalizeAttributeValue(ctx.curConsume(i))...)
		}

		if ctx.curPeek(1) != '&' {
			break
		}

		// character and entity references go in after whitespace
		// normalization so that a literal "&#x9;" survives as a tab
		if ctx.curPeek(2) == '#' {
			r, err := ctx.parseCharRef()
			if err != nil {
				return "", ctx.error(err)
			}
			v = utf8.AppendRune(v, r)
		} else {
			s, err := ctx.parseEntityRef()
			if err != nil {
				return "", err
			}
			v = append(v, s...)
		}
	}

	return string(v), nil
}

// parseUnquotedAttributeValue recovers from a missing quote by reading
// up to the next blank or tag delimiter.
func (ctx *parserCtx) parseUnquotedAttributeValue() (string, error) {
	i := 1
	for ; ctx.curHasChars(i); i++ {
		c := ctx.curPeek(i)
		if isBlankCh(c) || c == '>' || c == '<' || (c == '/' && ctx.curPeek(i+1) == '>') {
			i--
			break
		}
	}
	if i == 0 {
		return "", ctx.error(ErrStringNotStarted)
	}
	return normalizeAttributeValue(ctx.curConsume(i)), nil
}

func (ctx *parserCtx) parseContent(parent Element) error {
	var text []byte
	fromRef := false

	flush := func() error {
		if len(text) == 0 {
			return nil
		}
		s := string(text)
		text = text[:0]
		if !ctx.keepEmptyText && !fromRef && isAllBlank(s) {
			return nil
		}
		fromRef = false
		n := ctx.doc.CreateText(s)
		if err := parent.AppendChild(ctx.doc, n); err != nil {
			return ctx.error(err)
		}
		return nil
	}

	for !ctx.curDone() {
		if ctx.curHasPrefix("</") {
			break
		}

		if ctx.curHasPrefix("<?") {
			if err := flush(); err != nil {
				return err
			}
			if err := ctx.parsePI(parent); err != nil {
				return err
			}
			continue
		}

		if ctx.curHasPrefix("<![CDATA[") {
			if err := flush(); err != nil {
				return err
			}
			if err := ctx.parseCDSect(parent); err != nil {
				return err
			}
			continue
		}

		if ctx.curHasPrefix("<!--") {
			if err := flush(); err != nil {
				return err
			}
			if err := ctx.parseComment(parent); err != nil {
				return err
			}
			continue
		}

		if ctx.curHasPrefix("<") {
			if err := flush(); err != nil {
				return err
			}
			if err := ctx.parseElement(parent); err != nil {
				return err
			}
			continue
		}

		if ctx.curHasPrefix("&") {
			s, err := ctx.parseReference()
			if err != nil {
				return err
			}
			text = append(text, s...)
			fromRef = true
			continue
		}

		s, err := ctx.parseCharDataInternal(false)
		if err != nil {
			return err
		}
		text = append(text, s...)
	}

	if err := flush(); err != nil {
		return err
	}

	if ctx.curDone() {
		if open, ok := ctx.nodes.Peek(); ok {
			return ctx.error(ErrUnclosedTag{Name: open.name})
		}
	}
	return nil
}

func isAllBlank(s string) bool {
	for _, r := range s {
		if !isBlankCh(r) {
			return false
		}
	}
	return true
}

/* parse a CharData section.
 * if we are within a CDATA section ']]>' marks an end of section.
 *
 * [14] CharData ::= [^<&]* - ([^<&]* ']]>' [^<&]*)
 */
func (ctx *parserCtx) parseCharDataInternal(cdata bool) (string, error) {
	i := 1
	for ; ctx.curHasChars(i); i++ {
		c := ctx.curPeek(i)
		if !cdata {
			if c == '<' || c == '&' || !isChar(c) {
				break
			}
		}

		if c == ']' && ctx.curPeek(i+1) == ']' && ctx.curPeek(i+2) == '>' {
			if cdata {
				break
			}

			return "", ctx.error(ErrMisplacedCDATAEnd)
		}
	}

	if i <= 1 {
		if cdata {
			return "", nil
		}
		return "", ctx.error(ErrInvalidChar)
	}

	str := ctx.curConsume(i - 1)
	str = strings.Replace(str, "\r\n", "\n", -1)
	str = strings.Replace(str, "\r", "\n", -1)
	return str, nil
}

func (ctx *parserCtx) parseName() (string, error) {
	if ctx.instate == psEOF {
		return "", ErrPrematureEOF
	}

	if c := ctx.curPeek(1); !isNameStartChar(c) {
		return "", ErrNameRequired
	}

	i := 2
	for ; ctx.curHasChars(i); i++ {
		if !isNameChar(ctx.curPeek(i)) {
			i--
			break
		}
	}
	if i > maxNameLength {
		return "", ErrNameTooLong
	}
	if !ctx.curHasChars(i) {
		i--
	}

	return ctx.curConsume(i), nil
}

func isNameStartChar(r rune) bool {
	return r == '_' || r == ':' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return r == '.' || r == '-' || r == '_' || r == ':' ||
		unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.In(r, unicode.Extender)
}

// parseReference resolves a character or entity reference in content.
func (ctx *parserCtx) parseReference() (string, error) {
	if ctx.curPeek(1) != '&' {
		return "", ctx.error(ErrAmpersandRequired)
	}

	// "&#..." CharRef
	if ctx.curPeek(2) == '#' {
		r, err := ctx.parseCharRef()
		if err != nil {
			return "", ctx.error(err)
		}
		return string(r), nil
	}

	return ctx.parseEntityRef()
}

/*
 * parse a numeric character reference
 *
 * [66] CharRef ::= '&#' [0-9]+ ';' |
 *                  '&#x' [0-9a-fA-F]+ ';'
 *
 * [ WFC: Legal Character ]
 * Characters referred to using character references must match the
 * production for Char.
 */
func (ctx *parserCtx) parseCharRef() (rune, error) {
	var val int32
	if ctx.curConsumePrefix("&#x") {
		for ctx.curHasChars(1) && ctx.curPeek(1) != ';' {
			c := ctx.curPeek(1)
			if c >= '0' && c <= '9' {
				val = val*16 + (c - '0')
			} else if c >= 'a' && c <= 'f' {
				val = val*16 + (c - 'a') + 10
			} else if c >= 'A' && c <= 'F' {
				val = val*16 + (c - 'A') + 10
			} else {
				return utf8.RuneError, errors.New("invalid hex character reference")
			}
			if val > unicode.MaxRune {
				return utf8.RuneError, ErrInvalidChar
			}
			ctx.curAdvance(1)
		}
	} else if ctx.curConsumePrefix("&#") {
		for ctx.curHasChars(1) && ctx.curPeek(1) != ';' {
			c := ctx.curPeek(1)
			if c >= '0' && c <= '9' {
				val = val*10 + (c - '0')
			} else {
				return utf8.RuneError, errors.New("invalid decimal character reference")
			}
			if val > unicode.MaxRune {
				return utf8.RuneError, ErrInvalidChar
			}
			ctx.curAdvance(1)
		}
	} else {
		return utf8.RuneError, ErrAmpersandRequired
	}

	if ctx.curPeek(1) != ';' {
		return utf8.RuneError, ErrSemicolonRequired
	}
	ctx.curAdvance(1)

	if isChar(val) {
		return rune(val), nil
	}

	return utf8.RuneError, ErrInvalidChar
}

// parseEntityRef resolves a named entity reference. Only the five
// predefined entities are recognized; anything else fails the parse
// because no DTD-declared entities are tracked.
func (ctx *parserCtx) parseEntityRef() (string, error) {
	if ctx.curPeek(1) != '&' {
		return "", ctx.error(ErrAmpersandRequired)
	}
	ctx.curAdvance(1)

	name, err := ctx.parseName()
	if err != nil {
		return "", ctx.error(ErrNameRequired)
	}

	if ctx.curPeek(1) != ';' {
		return "", ctx.error(ErrSemicolonRequired)
	}
	ctx.curAdvance(1)

	if v, ok := resolvePredefinedEntity(name); ok {
		return v, nil
	}
	return "", ctx.error(ErrUnknownEntity{Name: name})
}
