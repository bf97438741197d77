package parse

import (
	"encoding/base64"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/signadot/objyaml/anchor"
	"github.com/signadot/objyaml/debug"
	"github.com/signadot/objyaml/ir"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// Parse parses a single document. Empty input gives a null node.
func Parse(d []byte, opts ...ParseOption) (*ir.Node, error) {
	docs, err := ParseAll(d, opts...)
	if err != nil {
		return nil, err
	}
	switch len(docs) {
	case 0:
		return ir.Null(), nil
	case 1:
		return docs[0], nil
	default:
		return nil, fmt.Errorf("%w, got %d", ErrMultipleDocuments, len(docs))
	}
}

// ParseAll parses every document of a stream. Each document has its own
// anchor namespace.
func ParseAll(d []byte, opts ...ParseOption) ([]*ir.Node, error) {
	pOpts := &parseOpts{}
	for _, f := range opts {
		f(pOpts)
	}
	if len(d) > 0 && d[len(d)-1] != '\n' {
		// a tag ending the input is otherwise dropped by the scanner.
		d = append(d[:len(d):len(d)], '\n')
	}
	file, err := parser.ParseBytes(d, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s%w", ErrParse, pOpts.prefix(), err)
	}
	res := make([]*ir.Node, 0, len(file.Docs))
	for i, doc := range file.Docs {
		c := &converter{opts: pOpts, anchors: anchor.New()}
		var body ast.Node
		if doc != nil {
			body = doc.Body
		}
		node, err := c.node(body)
		if err != nil {
			return nil, err
		}
		if o := c.orphans; o != nil {
			return nil, c.errorf(o.tag, ErrDirective, "%s has no value and the entries after it are not indented under any collection", tagText(o.tag))
		}
		if debug.Parse() {
			debug.Logf("parsed document %d: %s with anchors %v\n", i, node.Describe(), c.anchors.Names())
		}
		res = append(res, node)
	}
	return res, nil
}

func (o *parseOpts) prefix() string {
	if o.filename == "" {
		return ""
	}
	return o.filename + ": "
}

type converter struct {
	opts    *parseOpts
	anchors *anchor.Table
	orphans *orphans
}

func posOf(n ast.Node) ir.Pos {
	if n == nil {
		return ir.Pos{}
	}
	tk := n.GetToken()
	if tk == nil || tk.Position == nil {
		return ir.Pos{}
	}
	return ir.Pos{Line: tk.Position.Line, Column: tk.Position.Column}
}

func (c *converter) errorf(n ast.Node, err error, msg string, args ...any) error {
	where := c.opts.prefix()
	if p := posOf(n); !p.IsZero() {
		where = fmt.Sprintf("%s%s: ", where, p)
	}
	return fmt.Errorf("%s%w: %s", where, err, fmt.Sprintf(msg, args...))
}

// wrap reports an anchor table error as a parse error, keeping both in the
// chain.
func (c *converter) wrap(n ast.Node, err error) error {
	where := c.opts.prefix()
	if p := posOf(n); !p.IsZero() {
		where = fmt.Sprintf("%s%s: ", where, p)
	}
	return fmt.Errorf("%s%w: %w", where, ErrParse, err)
}

func (c *converter) node(n ast.Node) (*ir.Node, error) {
	if n == nil {
		return ir.Null(), nil
	}
	res, err := c.convert(n)
	if err != nil {
		return nil, err
	}
	if res.Pos.IsZero() {
		res.Pos = posOf(n)
	}
	return res, nil
}

func (c *converter) convert(n ast.Node) (*ir.Node, error) {
	switch x := n.(type) {
	case *ast.AnchorNode:
		return c.anchored(x)
	case *ast.AliasNode:
		name := tokenText(x.Value)
		if _, err := c.anchors.Lookup(name); err != nil {
			return nil, c.wrap(x, err)
		}
		return ir.NewAlias(name), nil
	case *ast.TagNode:
		return c.tagged(x)
	case *ast.MappingNode:
		return c.mapping(x.Values, x.IsFlowStyle)
	case *ast.MappingValueNode:
		return c.mapping([]*ast.MappingValueNode{x}, x.IsFlowStyle)
	case *ast.SequenceNode:
		return c.sequence(x)
	case *ast.NullNode:
		return ir.Null(), nil
	case *ast.BoolNode:
		return ir.FromBool(x.Value), nil
	case *ast.IntegerNode:
		return integer(x)
	case *ast.FloatNode:
		res := ir.FromFloat(x.Value)
		res.Number = tokenText(x)
		return res, nil
	case *ast.InfinityNode:
		return ir.FromFloat(x.Value), nil
	case *ast.NanNode:
		return ir.FromFloat(math.NaN()), nil
	case *ast.StringNode:
		if plain(x) {
			if res, ok, err := c.coreNumber(x); ok {
				return res, err
			}
		}
		return ir.FromString(x.Value), nil
	case *ast.LiteralNode:
		if x.Value == nil {
			return ir.FromString(""), nil
		}
		return ir.FromString(x.Value.Value), nil
	case *ast.MappingKeyNode:
		return c.node(x.Value)
	default:
		return nil, c.errorf(n, ErrParse, "unsupported node %s", n.Type())
	}
}

func integer(x *ast.IntegerNode) (*ir.Node, error) {
	raw := tokenText(x)
	switch v := x.Value.(type) {
	case int64:
		res := ir.FromInt(v)
		res.Number = raw
		return res, nil
	case uint64:
		if v <= math.MaxInt64 {
			res := ir.FromInt(int64(v))
			res.Number = raw
			return res, nil
		}
		return &ir.Node{Type: ir.NumberType, Number: strconv.FormatUint(v, 10)}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected integer value %T", ErrParse, x.Value)
	}
}

func (c *converter) anchored(x *ast.AnchorNode) (*ir.Node, error) {
	name := tokenText(x.Name)
	if err := c.anchors.Begin(name); err != nil {
		return nil, c.wrap(x, err)
	}
	res, err := c.node(x.Value)
	if err != nil {
		return nil, err
	}
	if res.Type == ir.AliasType {
		return nil, c.errorf(x, ErrParse, "anchor &%s on alias *%s", name, res.Alias)
	}
	if err := c.anchors.Register(name, nil); err != nil {
		return nil, c.wrap(x, err)
	}
	res.Anchor = name
	res.Pos = posOf(x)
	return res, nil
}

func (c *converter) mapping(mvs []*ast.MappingValueNode, flow bool) (*ir.Node, error) {
	mvs = append([]*ast.MappingValueNode(nil), mvs...)
	col := 0
	if !flow && len(mvs) > 0 {
		col = posOf(mvs[0].Key).Column
	}
	kvs := make([]ir.KeyVal, 0, len(mvs))
	seen := make(map[string]bool, len(mvs))
	for i := 0; i < len(mvs); i++ {
		mv := mvs[i]
		var kn ast.Node = mv.Key
		key, err := c.key(kn)
		if err != nil {
			return nil, err
		}
		if !key.IsMergeKey() {
			if seen[key.String] {
				return nil, c.errorf(kn, ErrDuplicateKey, "%q", key.String)
			}
			seen[key.String] = true
		}
		if err := c.detach(mv.Value, col, true); err != nil {
			return nil, err
		}
		val, err := c.node(mv.Value)
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, ir.KeyVal{Key: key, Val: val})
		if o := c.adopt(col); o != nil {
			if o.mvs == nil {
				return nil, c.errorf(o.tag, ErrDirective, "%s has no value and is followed by a sequence at the indentation of its key", tagText(o.tag))
			}
			mvs = append(mvs, o.mvs...)
		}
	}
	return ir.FromKeyVals(kvs), nil
}

func (c *converter) sequence(x *ast.SequenceNode) (*ir.Node, error) {
	vs := append([]ast.Node(nil), x.Values...)
	col := 0
	if !x.IsFlowStyle {
		col = posOf(x).Column
	}
	vals := make([]*ir.Node, 0, len(vs))
	for i := 0; i < len(vs); i++ {
		if err := c.detach(vs[i], col, false); err != nil {
			return nil, err
		}
		cv, err := c.node(vs[i])
		if err != nil {
			return nil, err
		}
		vals = append(vals, cv)
		if o := c.adopt(col); o != nil {
			if o.seq == nil {
				return nil, c.errorf(o.tag, ErrDirective, "%s has no value and is followed by a mapping at the indentation of its sequence", tagText(o.tag))
			}
			vs = append(vs, o.seq...)
		}
	}
	return ir.FromSlice(vals), nil
}

func (c *converter) key(n ast.Node) (*ir.Node, error) {
	switch x := n.(type) {
	case *ast.MergeKeyNode:
		return ir.NewMergeKey().WithPos(posOf(n)), nil
	case *ast.MappingKeyNode:
		return c.key(x.Value)
	case *ast.TagNode, *ast.AnchorNode, *ast.AliasNode:
		return nil, c.errorf(n, ErrKeyTag, "%s", n.Type())
	case *ast.MappingNode, *ast.MappingValueNode, *ast.SequenceNode:
		return nil, c.errorf(n, ErrParse, "unsupported key type %s", n.Type())
	case *ast.NullNode:
		return ir.FromString("null").WithPos(posOf(n)), nil
	case nil:
		return nil, fmt.Errorf("%w: missing key", ErrParse)
	default:
		return ir.FromString(scalarText(n)).WithPos(posOf(n)), nil
	}
}

func tokenText(n ast.Node) string {
	if n == nil {
		return ""
	}
	tk := n.GetToken()
	if tk == nil {
		return ""
	}
	return tk.Value
}

func scalarText(n ast.Node) string {
	switch x := n.(type) {
	case *ast.StringNode:
		return x.Value
	case *ast.LiteralNode:
		if x.Value == nil {
			return ""
		}
		return x.Value.Value
	default:
		return tokenText(n)
	}
}

var targetRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

func (c *converter) tagged(x *ast.TagNode) (*ir.Node, error) {
	tag := x.Start.Value
	if debug.Parse() {
		debug.Logf("tag %s at %s\n", tag, posOf(x))
	}
	if kind, target, ok := ir.DirectiveOf(tag); ok {
		return c.directive(x, kind, target)
	}
	if strings.HasPrefix(tag, "!!") {
		return c.standard(x, tag)
	}
	return nil, c.errorf(x, ErrUnknownTag, "%s", tag)
}

func (c *converter) directive(x *ast.TagNode, kind ir.DirectiveKind, target string) (*ir.Node, error) {
	var (
		child *ir.Node
		err   error
	)
	switch v := x.Value.(type) {
	case *ast.StringNode:
		// plain scalars after a custom tag are always strings.
		if kind == ir.ObjectDirective && plain(v) && isNull(v.Value) {
			child = ir.Null()
		} else {
			child = ir.FromString(v.Value)
		}
	default:
		child, err = c.node(x.Value)
	}
	if err != nil {
		return nil, err
	}
	if child.Type == ir.AliasType {
		return nil, c.errorf(x, ErrDirective, "%s cannot apply to alias *%s", x.Start.Value, child.Alias)
	}
	var res *ir.Node
	switch kind {
	case ir.ObjectDirective:
		if !targetRE.MatchString(target) {
			return nil, c.errorf(x, ErrDirective, "invalid object path %q", target)
		}
		switch child.Type {
		case ir.NullType:
			res = ir.NewDirective(kind, target, nil)
		case ir.ObjectType:
			kvs := make([]ir.KeyVal, len(child.Fields))
			for i := range child.Fields {
				kvs[i] = ir.KeyVal{Key: child.Fields[i], Val: child.Values[i]}
			}
			res = ir.NewDirective(kind, target, kvs)
		default:
			return nil, c.errorf(x, ErrDirective, "%s arguments must be a mapping, got %s", x.Start.Value, child.Type)
		}
	case ir.ImportDirective, ir.PickleDirective:
		if child.Type != ir.StringType {
			return nil, c.errorf(x, ErrDirective, "%s expects a string, got %s", x.Start.Value, child.Type)
		}
		target = strings.TrimSpace(child.String)
		if target == "" {
			return nil, c.errorf(x, ErrDirective, "%s expects a non-empty string", x.Start.Value)
		}
		if kind == ir.ImportDirective && !targetRE.MatchString(target) {
			return nil, c.errorf(x, ErrDirective, "invalid import path %q", target)
		}
		res = ir.NewDirective(kind, target, nil)
	}
	res.Anchor = child.Anchor
	res.Pos = posOf(x)
	return res, nil
}

func (c *converter) standard(x *ast.TagNode, tag string) (*ir.Node, error) {
	if tag == "!!str" {
		switch v := x.Value.(type) {
		case *ast.MappingNode, *ast.MappingValueNode, *ast.SequenceNode, *ast.TagNode, *ast.AliasNode:
			return nil, c.errorf(x, ErrParse, "!!str applied to %s", x.Value.Type())
		case nil:
			return ir.FromString(""), nil
		case *ast.AnchorNode:
			return c.anchoredString(v)
		}
		return ir.FromString(scalarText(x.Value)), nil
	}
	child, err := c.node(x.Value)
	if err != nil {
		return nil, err
	}
	mismatch := func() error {
		return c.errorf(x, ErrParse, "cannot apply %s to %s", tag, child.Type)
	}
	switch tag {
	case "!!null":
		if child.Type != ir.NullType && !(child.Type == ir.StringType && child.String == "") {
			return nil, mismatch()
		}
		return ir.Null().WithAnchor(child.Anchor), nil
	case "!!bool":
		if child.Type == ir.StringType {
			b, err := strconv.ParseBool(child.String)
			if err != nil {
				return nil, mismatch()
			}
			return ir.FromBool(b).WithAnchor(child.Anchor), nil
		}
		if child.Type != ir.BoolType {
			return nil, mismatch()
		}
	case "!!int":
		if child.Type == ir.StringType {
			i, err := strconv.ParseInt(child.String, 0, 64)
			if err != nil {
				return nil, mismatch()
			}
			return ir.FromInt(i).WithAnchor(child.Anchor), nil
		}
		if child.Type != ir.NumberType || child.Int64 == nil {
			return nil, mismatch()
		}
	case "!!float":
		switch {
		case child.Type == ir.StringType:
			f, err := strconv.ParseFloat(child.String, 64)
			if err != nil {
				return nil, mismatch()
			}
			return ir.FromFloat(f).WithAnchor(child.Anchor), nil
		case child.Type == ir.NumberType && child.Int64 != nil:
			return ir.FromFloat(float64(*child.Int64)).WithAnchor(child.Anchor), nil
		case child.Type != ir.NumberType:
			return nil, mismatch()
		}
	case "!!map":
		if child.Type != ir.ObjectType {
			return nil, mismatch()
		}
	case "!!seq":
		if child.Type != ir.ArrayType {
			return nil, mismatch()
		}
	case "!!binary":
		if child.Type != ir.StringType {
			return nil, mismatch()
		}
		clean := strings.Join(strings.Fields(child.String), "")
		if _, err := base64.StdEncoding.DecodeString(clean); err != nil {
			return nil, c.errorf(x, ErrParse, "invalid !!binary: %v", err)
		}
		child.String = clean
		return child.WithTag(tag), nil
	default:
		return nil, c.errorf(x, ErrUnknownTag, "%s", tag)
	}
	return child, nil
}

func (c *converter) anchoredString(x *ast.AnchorNode) (*ir.Node, error) {
	switch x.Value.(type) {
	case *ast.MappingNode, *ast.MappingValueNode, *ast.SequenceNode, *ast.TagNode, *ast.AliasNode:
		return nil, c.errorf(x, ErrParse, "!!str applied to %s", x.Value.Type())
	}
	name := tokenText(x.Name)
	if err := c.anchors.Begin(name); err != nil {
		return nil, c.wrap(x, err)
	}
	if err := c.anchors.Register(name, nil); err != nil {
		return nil, c.wrap(x, err)
	}
	return ir.FromString(scalarText(x.Value)).WithAnchor(name).WithPos(posOf(x)), nil
}

func tagText(x *ast.TagNode) string {
	return x.Start.Value
}

func plain(x *ast.StringNode) bool {
	return x.Token != nil && x.Token.Type == token.StringType
}

func isNull(s string) bool {
	switch s {
	case "null", "Null", "NULL", "~":
		return true
	}
	return false
}

var (
	coreIntRE   = regexp.MustCompile(`^[-+]?[0-9]+$`)
	coreFloatRE = regexp.MustCompile(`^[-+]?(\.[0-9]+|[0-9]+(\.[0-9]*)?)([eE][-+]?[0-9]+)?$`)
)

// coreNumber reads plain scalars which are numbers in the YAML 1.2 core
// schema but which the YAML parser leaves as strings: exponents without a
// dot, such as 1e-3, and integers outside the int64 range. Integers above
// MaxInt64 which fit in a uint64 are kept by their decimal text; other
// out of range integers are errors.
func (c *converter) coreNumber(x *ast.StringNode) (*ir.Node, bool, error) {
	s := x.Value
	switch {
	case coreIntRE.MatchString(s):
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			res := ir.FromInt(i)
			res.Number = s
			return res, true, nil
		}
		if u, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64); err == nil {
			return &ir.Node{Type: ir.NumberType, Number: strconv.FormatUint(u, 10)}, true, nil
		}
		return nil, true, c.errorf(x, ErrIntRange, "%s", s)
	case coreFloatRE.MatchString(s):
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, true, c.errorf(x, ErrParse, "float %s: %v", s, err)
		}
		res := ir.FromFloat(f)
		res.Number = s
		return res, true, nil
	}
	return nil, false, nil
}

// orphans are block entries which the YAML parser made the value of a tag
// written without one, although they are indented as entries of an
// enclosing collection at column col.
type orphans struct {
	col int
	tag *ast.TagNode
	mvs []*ast.MappingValueNode
	seq []ast.Node
}

// detach checks n, the value of an entry of the block collection at column
// col. When n is a tag whose block collection value starts at or left of
// col, the value is taken off the tag and kept as orphans until the
// collection at its column adopts them. In a mapping, a sequence at the key
// column is a valid value.
func (c *converter) detach(n ast.Node, col int, inMapping bool) error {
	if col == 0 {
		return nil
	}
	var (
		tag  *ast.TagNode
		wrap ast.Node
	)
	for done := false; !done; {
		switch x := n.(type) {
		case *ast.TagNode:
			tag, wrap, n = x, x, x.Value
		case *ast.AnchorNode:
			wrap, n = x, x.Value
		default:
			done = true
		}
	}
	if tag == nil {
		return nil
	}
	o := &orphans{tag: tag}
	switch x := n.(type) {
	case *ast.MappingNode:
		if x.IsFlowStyle || len(x.Values) == 0 {
			return nil
		}
		o.col, o.mvs = posOf(x.Values[0].Key).Column, x.Values
	case *ast.MappingValueNode:
		if x.IsFlowStyle {
			return nil
		}
		o.col, o.mvs = posOf(x.Key).Column, []*ast.MappingValueNode{x}
	case *ast.SequenceNode:
		if x.IsFlowStyle {
			return nil
		}
		o.col, o.seq = posOf(x).Column, x.Values
		if inMapping && o.col == col {
			return nil
		}
	default:
		return nil
	}
	if o.col == 0 || o.col > col {
		return nil
	}
	if c.orphans != nil {
		return c.errorf(tag, ErrDirective, "%s has no value", tagText(tag))
	}
	switch w := wrap.(type) {
	case *ast.TagNode:
		w.Value = nil
	case *ast.AnchorNode:
		w.Value = nil
	}
	if debug.Parse() {
		debug.Logf("%s at %s has no value, entries at column %d go back to their collection\n", tagText(tag), posOf(tag), o.col)
	}
	c.orphans = o
	return nil
}

// adopt returns the orphans of the block collection at column col.
func (c *converter) adopt(col int) *orphans {
	o := c.orphans
	if o == nil || col == 0 || o.col != col {
		return nil
	}
	c.orphans = nil
	return o
}
