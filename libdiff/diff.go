package libdiff

import (
	"strconv"
	"strings"

	"github.com/signadot/objyaml/ir"
)

// DiffFunc compares two nodes, giving nil when they are equal.
type DiffFunc func(from, to *ir.Node) *ir.Node

// Diff returns a tree describing how to differs from from, or nil if they
// are the same. Mappings and object directives are compared key by key,
// sequences element by element and multi-line strings line by line.
// Anchor names are not compared.
func Diff(from, to *ir.Node) *ir.Node {
	switch {
	case from == nil && to == nil:
		return nil
	case from == nil || to == nil:
		return MakeDiff(from, to)
	}
	if from.Type != to.Type || from.Tag != to.Tag {
		return MakeDiff(from, to)
	}
	switch from.Type {
	case ir.DirectiveType:
		if from.Kind != to.Kind || from.Target != to.Target {
			return MakeDiff(from, to)
		}
		res := diffFields(from, to)
		if res != nil {
			res.Tag = from.DirectiveTag()
		}
		return res
	case ir.ObjectType:
		return diffFields(from, to)
	case ir.ArrayType:
		return DiffArrayByIndex(from, to, Diff)
	case ir.StringType:
		if from.String == to.String {
			return nil
		}
		return DiffString(from, to)
	}
	if summaryStr(from) == summaryStr(to) {
		return nil
	}
	return MakeDiff(from, to)
}

func diffFields(from, to *ir.Node) *ir.Node {
	fromKeys := fieldKeys(from)
	toKeys := fieldKeys(to)
	toIndex := make(map[string]int, len(toKeys))
	for i, k := range toKeys {
		toIndex[k] = i
	}
	var kvs []ir.KeyVal
	for i, k := range fromKeys {
		var d *ir.Node
		if j, ok := toIndex[k]; ok {
			d = Diff(from.Values[i], to.Values[j])
			delete(toIndex, k)
		} else {
			d = MakeDiff(from.Values[i], nil)
		}
		if d != nil {
			kvs = append(kvs, ir.KeyVal{Key: from.Fields[i].Clone(), Val: d})
		}
	}
	for j, k := range toKeys {
		if _, ok := toIndex[k]; !ok {
			continue
		}
		kvs = append(kvs, ir.KeyVal{Key: to.Fields[j].Clone(), Val: MakeDiff(nil, to.Values[j])})
	}
	if len(kvs) == 0 {
		return nil
	}
	return ir.FromKeyVals(kvs)
}

// fieldKeys names the fields of a mapping, numbering repeated merge keys.
func fieldKeys(n *ir.Node) []string {
	res := make([]string, len(n.Fields))
	merges := 0
	for i, f := range n.Fields {
		if f.IsMergeKey() {
			res[i] = ir.MergeKey + "#" + strconv.Itoa(merges)
			merges++
			continue
		}
		res[i] = f.String
	}
	return res
}

func summaryStr(node *ir.Node) string {
	switch node.Type {
	case ir.ObjectType, ir.ArrayType, ir.NullType:
		return node.Type.String() + node.Tag
	case ir.DirectiveType:
		return node.Type.String() + "-" + node.DirectiveTag() + "-" + node.Target
	case ir.BoolType:
		return node.Type.String() + "-" + strconv.FormatBool(node.Bool)
	case ir.StringType:
		if strings.Contains(node.String, "\n") {
			return node.Type.String() + "/m"
		}
		return node.Type.String() + "-" + node.String
	case ir.NumberType:
		if node.Int64 != nil {
			return node.Type.String() + "-i-" + strconv.FormatInt(*node.Int64, 10)
		}
		if node.Float64 != nil {
			return node.Type.String() + "-f-" + strconv.FormatFloat(*node.Float64, 'g', -1, 64)
		}
		return node.Type.String() + "-" + node.Number
	case ir.AliasType:
		return node.Type.String() + "-" + node.Alias
	}
	return node.Type.String()
}
