package libdiff

import "github.com/signadot/objyaml/ir"

// MakeDiff records the replacement of from by to. A nil from is an
// insertion, a nil to a deletion.
func MakeDiff(from, to *ir.Node) *ir.Node {
	switch {
	case from == nil:
		return ir.FromKeyVals([]ir.KeyVal{
			{Key: ir.FromString("to"), Val: to.Clone()},
		}).WithTag(InsertTag)
	case to == nil:
		return ir.FromKeyVals([]ir.KeyVal{
			{Key: ir.FromString("from"), Val: from.Clone()},
		}).WithTag(DeleteTag)
	default:
		return ir.FromKeyVals([]ir.KeyVal{
			{Key: ir.FromString("from"), Val: from.Clone()},
			{Key: ir.FromString("to"), Val: to.Clone()},
		}).WithTag(ReplaceTag)
	}
}
