package load

import (
	"fmt"

	"github.com/signadot/objyaml/ir"
	"github.com/signadot/objyaml/symbol"
)

// Select returns the part of a loaded graph at path, such as
// "$.model.layers[0]". Fields of constructed objects are looked up as
// attributes.
func Select(v any, path string) (any, error) {
	p, err := ir.ParsePath(path)
	if err != nil {
		return nil, err
	}
	cur := v
	for ; p != nil; p = p.Next {
		switch {
		case p.Index != nil:
			s, ok := cur.([]any)
			if !ok {
				return nil, fmt.Errorf("%s: cannot index %T", path, cur)
			}
			if *p.Index < 0 || *p.Index >= len(s) {
				return nil, fmt.Errorf("%s: index %d out of range (len %d)", path, *p.Index, len(s))
			}
			cur = s[*p.Index]
		case p.Field != nil:
			if px, ok := cur.(*Proxy); ok {
				cur = map[string]any(px.Args)
			}
			next, err := symbol.Attr(cur, *p.Field)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			cur = next
		}
	}
	return cur, nil
}
