package encode

type EncodeOption func(*EncState)

// Indent sets the number of spaces per nesting level, 2 by default.
func Indent(n int) EncodeOption {
	return func(es *EncState) { es.indent = n }
}

func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) {
		if c == nil {
			es.Color = nil
			return
		}
		es.Color = c.Color
	}
}

// EncodeBrackets renders mappings and sequences in flow style.
func EncodeBrackets(v bool) EncodeOption {
	return func(es *EncState) { es.brackets = v }
}

// RefPrefix sets the prefix of anchors Encode generates for shared values,
// "ref" by default.
func RefPrefix(p string) EncodeOption {
	return func(es *EncState) { es.refPrefix = p }
}
