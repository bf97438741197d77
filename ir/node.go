package ir

import (
	"fmt"
)

// Pos is a 1-based line and column in the source document.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

func (p Pos) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

type Node struct {
	Type        Type
	Parent      *Node
	ParentIndex int
	ParentField string
	Fields      []*Node
	Values      []*Node

	Tag    string
	Anchor string
	Alias  string
	Pos    Pos

	// Kind and Target are set on directive nodes.
	Kind   DirectiveKind
	Target string

	String  string
	Bool    bool
	Number  string
	Float64 *float64
	Int64   *int64
}

// Clone returns a deep copy of y. The copy keeps y's parent links but its
// descendants point into the copy.
func (y *Node) Clone() *Node {
	res := &Node{}
	return y.CloneTo(res)
}

func (y *Node) CloneTo(dst *Node) *Node {
	dst.Parent = y.Parent
	dst.ParentIndex = y.ParentIndex
	dst.ParentField = y.ParentField
	dst.Type = y.Type
	dst.Tag = y.Tag
	dst.Anchor = y.Anchor
	dst.Alias = y.Alias
	dst.Pos = y.Pos
	dst.Kind = y.Kind
	dst.Target = y.Target
	dst.Values = make([]*Node, len(y.Values))
	dst.Fields = make([]*Node, len(y.Fields))
	for i, yv := range y.Values {
		dstI := &Node{}
		yv.CloneTo(dstI)
		dstI.Parent = dst
		dstI.ParentIndex = i
		dst.Values[i] = dstI
	}
	for i, yf := range y.Fields {
		dstI := &Node{}
		yf.CloneTo(dstI)
		dstI.Parent = dst
		dstI.ParentIndex = i
		dst.Fields[i] = dstI
	}
	dst.String = y.String
	dst.Number = y.Number
	if y.Float64 != nil {
		f := *y.Float64
		dst.Float64 = &f
	}
	if y.Int64 != nil {
		i := *y.Int64
		dst.Int64 = &i
	}
	dst.Bool = y.Bool
	return dst
}

func (y *Node) WithTag(tag string) *Node {
	y.Tag = tag
	return y
}

func (y *Node) WithAnchor(name string) *Node {
	y.Anchor = name
	return y
}

func (y *Node) WithPos(p Pos) *Node {
	y.Pos = p
	return y
}

func (y *Node) Root() *Node {
	x := y
	for x.Parent != nil {
		x = x.Parent
	}
	return x
}

// IsMergeKey reports whether y is the key of a "<<" merge entry.
func (y *Node) IsMergeKey() bool {
	return y.Type == NullType && y.String == MergeKey
}

const MergeKey = "<<"

func Null() *Node {
	return &Node{Type: NullType}
}

func FromString(v string) *Node {
	return &Node{Type: StringType, String: v}
}

func FromInt(v int64) *Node {
	return &Node{
		Type:  NumberType,
		Int64: &v,
	}
}

func FromFloat(f float64) *Node {
	return &Node{
		Type:    NumberType,
		Float64: &f,
	}
}

func FromBool(v bool) *Node {
	return &Node{
		Type: BoolType,
		Bool: v,
	}
}

func NewAlias(name string) *Node {
	return &Node{Type: AliasType, Alias: name}
}

func NewMergeKey() *Node {
	return &Node{Type: NullType, String: MergeKey}
}

type KeyVal struct {
	Key *Node
	Val *Node
}

func FromKeyVals(kvs []KeyVal) *Node {
	res := &Node{}
	return FromKeyValsAt(res, kvs)
}

func FromKeyValsAt(res *Node, kvs []KeyVal) *Node {
	res.Type = ObjectType
	res.Fields = make([]*Node, len(kvs))
	res.Values = make([]*Node, len(kvs))
	for i := range kvs {
		kv := &kvs[i]
		if kv.Key == nil {
			kv.Key = NewMergeKey()
		}
		kv.Key.ParentField = kv.Key.String
		kv.Val.ParentField = kv.Key.ParentField
		kv.Val.Parent = res
		kv.Val.ParentIndex = i
		kv.Key.Parent = res
		kv.Key.ParentIndex = i
		res.Fields[i] = kv.Key
		res.Values[i] = kv.Val
	}
	return res
}

func FromSlice(ySlice []*Node) *Node {
	res := &Node{
		Type: ArrayType,
	}
	res.Values = make([]*Node, len(ySlice))
	for i, y := range ySlice {
		y.Parent = res
		y.ParentIndex = i
		y.ParentField = ""
		res.Values[i] = y
	}
	return res
}

// Get returns the value of the field named f of a mapping or directive
// node, or nil.
func (y *Node) Get(f string) *Node {
	if y.Type != ObjectType && y.Type != DirectiveType {
		return nil
	}
	for i, field := range y.Fields {
		if field.Type == StringType && field.String == f {
			return y.Values[i]
		}
	}
	return nil
}

func (y *Node) Describe() string {
	switch y.Type {
	case AliasType:
		return "*" + y.Alias
	case DirectiveType:
		if y.Kind == ObjectDirective {
			return y.DirectiveTag()
		}
		return fmt.Sprintf("%s %q", y.DirectiveTag(), y.Target)
	default:
		return y.Type.String()
	}
}
