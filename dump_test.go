package xmldoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpDocument(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("root")
	require.NoError(t, doc.SetRootElement(root))
	require.NoError(t, root.SetAttribute(doc, "a", "1"))
	require.NoError(t, root.AppendChild(doc, doc.CreateText("hello")))

	s, err := doc.XMLString()
	require.NoError(t, err)
	require.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<root a=\"1\">hello</root>", s)
}

func TestDumpWithoutDeclaration(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.SetRootElement(doc.CreateElement("root")))

	s, err := doc.XMLString(WithDeclaration(false))
	require.NoError(t, err)
	require.Equal(t, "<root />", s)
}

func TestDumpStandalone(t *testing.T) {
	doc := NewDocument()
	doc.SetStandalone(StandaloneExplicitYes)
	require.NoError(t, doc.SetRootElement(doc.CreateElement("r")))

	s, err := doc.XMLString()
	require.NoError(t, err)
	require.Contains(t, s, `standalone="yes"`)
}

func TestDumpEscaping(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("m")
	require.NoError(t, doc.SetRootElement(root))
	require.NoError(t, root.SetAttribute(doc, "q", `a "quoted" <value> & more`))
	require.NoError(t, root.SetAttribute(doc, "ws", "tab\there"))
	require.NoError(t, root.AppendChild(doc, doc.CreateText("1 < 2 & 3 > 2")))

	s, err := doc.XMLString(WithDeclaration(false))
	require.NoError(t, err)
	require.Equal(t,
		`<m q="a &quot;quoted&quot; &lt;value&gt; &amp; more" ws="tab&#x9;here">1 &lt; 2 &amp; 3 &gt; 2</m>`,
		s)
}

func TestDumpEscapingGrowth(t *testing.T) {
	// every input byte expands fivefold, so the scratch buffer has to
	// grow well past its initial capacity, repeatedly
	raw := strings.Repeat("&", 4096)
	doc := NewDocument()
	root := doc.CreateElement("m")
	require.NoError(t, doc.SetRootElement(root))
	require.NoError(t, root.SetAttribute(doc, "v", raw))
	require.NoError(t, root.AppendChild(doc, doc.CreateText(raw)))

	escaped := strings.Repeat("&amp;", 4096)
	s, err := doc.XMLString(WithDeclaration(false))
	require.NoError(t, err)
	require.Equal(t, `<m v="`+escaped+`">`+escaped+`</m>`, s)
}

func TestDumpNodeKinds(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("r")
	require.NoError(t, doc.SetRootElement(root))
	require.NoError(t, root.AppendChild(doc, doc.CreateComment(" note ")))
	require.NoError(t, root.AppendChild(doc, doc.CreateCDATA("<raw & stuff>")))
	require.NoError(t, root.AppendChild(doc, doc.CreatePI("target data")))

	s, err := doc.XMLString(WithDeclaration(false))
	require.NoError(t, err)
	require.Equal(t, `<r><!-- note --><![CDATA[<raw & stuff>]]><?target data?></r>`, s)
}

func TestDumpIndent(t *testing.T) {
	doc, err := Parse([]byte(`<a><b><c/></b><d>text</d></a>`))
	require.NoError(t, err)

	s, err := doc.XMLString(WithDeclaration(false), WithIndent("  "))
	require.NoError(t, err)
	expected := strings.Join([]string{
		"<a>",
		"  <b>",
		"    <c />",
		"  </b>",
		"  <d>text</d>",
		"</a>",
	}, "\n")
	require.Equal(t, expected, s)
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<root />",
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<a><b c=\"1\">text</b><!-- note --><?pi data?></a>",
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<m>a &amp; b</m>",
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<n xmlns:dc=\"http://purl.org/dc/elements/1.1/\"><dc:t>x</dc:t></n>",
	}
	for _, input := range inputs {
		doc, err := Parse([]byte(input))
		require.NoError(t, err, "Parse should succeed for '%s'", input)
		s, err := doc.XMLString()
		require.NoError(t, err)
		require.Equal(t, input, s, "parse then serialize should reproduce the input")

		// and the output parses back to the same output
		doc2, err := Parse([]byte(s))
		require.NoError(t, err)
		s2, err := doc2.XMLString()
		require.NoError(t, err)
		require.Equal(t, s, s2)
	}
}

func TestDumpNode(t *testing.T) {
	doc, err := Parse([]byte(`<a><b>text</b></a>`))
	require.NoError(t, err)
	root, _ := doc.RootElement()
	b, _, err := root.Find(doc, "b")
	require.NoError(t, err)

	var sb strings.Builder
	var d Dumper
	require.NoError(t, d.DumpNode(&sb, doc, b.AsNode()))
	require.Equal(t, "<b>text</b>", sb.String())

	// a stale handle is rejected before anything is written
	_, err = root.RemoveChild(doc, 0)
	require.NoError(t, err)
	sb.Reset()
	err = d.DumpNode(&sb, doc, b.AsNode())
	require.ErrorIs(t, err, ErrInvalidHandle)
	require.Empty(t, sb.String())
}

// The full life of a document: parse, inspect, mutate, build new nodes,
// serialize.
func TestEndToEnd(t *testing.T) {
	const input = `<?xml version="1.0" encoding="UTF-8"?>
<library xmlns:dc="http://purl.org/dc/elements/1.1/">
  <book available="true">
    <dc:title xml:lang="en">Moby-Dick</dc:title>
  </book>
</library>`

	doc, err := Parse([]byte(input))
	require.NoError(t, err)

	library, ok := doc.RootElement()
	require.True(t, ok)

	book, ok, err := library.Find(doc, "book")
	require.NoError(t, err)
	require.True(t, ok)

	title, ok, err := book.Find(doc, "title")
	require.NoError(t, err)
	require.True(t, ok)

	full, err := title.FullName(doc)
	require.NoError(t, err)
	require.Equal(t, "dc:title", full)

	lang, ok, err := title.Attribute(doc, "xml:lang")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "en", lang)

	require.NoError(t, title.SetTextContent(doc, "xml-doc"))

	var sb strings.Builder
	var d Dumper
	require.NoError(t, d.DumpNode(&sb, doc, title.AsNode()))
	require.Equal(t, `<dc:title xml:lang="en">xml-doc</dc:title>`, sb.String())

	uri, ok, err := title.NamespaceForPrefix(doc, "dc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "http://purl.org/dc/elements/1.1/", uri)
}
