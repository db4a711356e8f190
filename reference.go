package xmldoc

// The five entities every XML processor knows without a DTD.
var predefinedEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"apos": "'",
	"quot": `"`,
}

// resolvePredefinedEntity returns the replacement text for one of the
// built-in entities. Any other name reports false; this parser does not
// read DTD entity declarations, so unknown names are an error at the
// call sites.
func resolvePredefinedEntity(name string) (string, bool) {
	v, ok := predefinedEntities[name]
	return v, ok
}

// normalizeAttributeValue maps tab, carriage return and newline to a
// space. Character references that produced those characters have
// already been replaced by the time this runs and are deliberately not
// normalized again, which is why the tokenizer inserts them after the
// sweep instead of before.
func normalizeAttributeValue(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c == 0x9 || c == 0xA || c == 0xD {
			b[i] = 0x20
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
