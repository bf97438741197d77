package libdiff

import (
	"strconv"

	"github.com/signadot/objyaml/ir"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// DiffArrayByIndex diffs sequences by first diffing the sequences of
// element summaries, then recursing with df into elements whose summaries
// match. The result maps from-indexes to changes; insertions are keyed by
// their to-index prefixed with "+". A deletion directly followed by an
// insertion becomes a replacement.
func DiffArrayByIndex(from, to *ir.Node, df DiffFunc) *ir.Node {
	m := map[string]rune{}
	fromRunes := mapValues(m, from)
	toRunes := mapValues(m, to)
	diffs := diffpatch.New().DiffMainRunes(fromRunes, toRunes, false)

	var (
		kvs     []ir.KeyVal
		deleted []int
	)
	fi, ti := 0, 0
	for i := range diffs {
		diff := &diffs[i]
		n := len([]rune(diff.Text))
		switch diff.Type {
		case diffpatch.DiffDelete:
			for range n {
				deleted = append(deleted, len(kvs))
				kvs = append(kvs, indexed(strconv.Itoa(fi), MakeDiff(from.Values[fi], nil)))
				fi++
			}
		case diffpatch.DiffEqual:
			deleted = deleted[:0]
			for range n {
				if d := df(from.Values[fi], to.Values[ti]); d != nil {
					kvs = append(kvs, indexed(strconv.Itoa(fi), d))
				}
				fi++
				ti++
			}
		case diffpatch.DiffInsert:
			for range n {
				if len(deleted) != 0 {
					k := deleted[0]
					deleted = deleted[1:]
					del := kvs[k].Val.Values[0]
					kvs[k].Val = MakeDiff(del, to.Values[ti])
				} else {
					kvs = append(kvs, indexed("+"+strconv.Itoa(ti), MakeDiff(nil, to.Values[ti])))
				}
				ti++
			}
		}
	}
	if len(kvs) == 0 {
		return nil
	}
	return ir.FromKeyVals(kvs)
}

func indexed(k string, v *ir.Node) ir.KeyVal {
	return ir.KeyVal{Key: ir.FromString(k), Val: v}
}

func mapValues(m map[string]rune, node *ir.Node) []rune {
	rs := make([]rune, len(node.Values))
	for i, v := range node.Values {
		sum := summaryStr(v)
		r, ok := m[sum]
		if !ok {
			r = rune(len(m) + 1)
			if r >= 0xD800 {
				r += 0x800
			}
			m[sum] = r
		}
		rs[i] = r
	}
	return rs
}
