// Package encoding wraps around the various encoding stuff in
// golang.org/x/text/encoding. Part of the reason this exists is that
// the package names such as "unicode" clash with the stdlib, and
// it's rather easier if we just hide it from the rest of xmldoc
package encoding

import (
	"strings"

	"github.com/pkg/errors"
	enc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

var ErrUnsupported = errors.New("unsupported encoding")

// Load maps an encoding name, as it would appear in an XML declaration,
// to its codec. Names are matched case-insensitively and with the
// common punctuation variants ("UTF-8", "utf8"). It returns nil for
// names it does not know.
func Load(name string) enc.Encoding {
	switch normalize(name) {
	case "utf8", "usascii", "ascii":
		// US-ASCII is a strict subset of UTF-8, so the UTF-8 codec
		// handles it as-is
		return unicode.UTF8
	case "utf16", "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "iso88591", "latin1":
		return charmap.ISO8859_1
	case "iso88592":
		return charmap.ISO8859_2
	case "iso88593":
		return charmap.ISO8859_3
	case "iso88594":
		return charmap.ISO8859_4
	case "iso88595":
		return charmap.ISO8859_5
	case "iso88596":
		return charmap.ISO8859_6
	case "iso88597":
		return charmap.ISO8859_7
	case "iso88598":
		return charmap.ISO8859_8
	case "iso885910":
		return charmap.ISO8859_10
	case "iso885913":
		return charmap.ISO8859_13
	case "iso885914":
		return charmap.ISO8859_14
	case "iso885915":
		return charmap.ISO8859_15
	case "iso885916":
		return charmap.ISO8859_16
	case "windows1250":
		return charmap.Windows1250
	case "windows1251":
		return charmap.Windows1251
	case "windows1252", "cp1252":
		return charmap.Windows1252
	case "windows1253":
		return charmap.Windows1253
	case "windows1254":
		return charmap.Windows1254
	case "windows1255":
		return charmap.Windows1255
	case "windows1256":
		return charmap.Windows1256
	case "windows1257":
		return charmap.Windows1257
	case "windows1258":
		return charmap.Windows1258
	case "windows874":
		return charmap.Windows874
	case "koi8r":
		return charmap.KOI8R
	case "koi8u":
		return charmap.KOI8U
	case "macintosh":
		return charmap.Macintosh
	case "cp437":
		return charmap.CodePage437
	case "cp866":
		return charmap.CodePage866
	case "shiftjis", "cp932":
		return japanese.ShiftJIS
	case "eucjp":
		return japanese.EUCJP
	case "iso2022jp":
		return japanese.ISO2022JP
	case "euckr":
		return korean.EUCKR
	case "big5":
		return traditionalchinese.Big5
	}
	return nil
}

// Decode transcodes data from the named encoding to UTF-8. An unknown
// encoding name or a byte sequence that is invalid for the named
// encoding is reported as an error.
func Decode(name string, data []byte) ([]byte, error) {
	e := Load(name)
	if e == nil {
		return nil, errors.Wrap(ErrUnsupported, name)
	}

	out, err := e.NewDecoder().Bytes(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode input as %s", name)
	}
	return out, nil
}

func normalize(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case '-', '_', ' ':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
