package encode

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/signadot/objyaml/ir"
)

var ErrEncoding = errors.New("encoding error")

type EncState struct {
	col           int
	depth, indent int
	brackets      bool
	refPrefix     string

	Color func(ir.Type, ColorAttr, string) string
}

func newEncState(opts []EncodeOption) *EncState {
	es := &EncState{
		indent:    2,
		refPrefix: "ref",
	}
	for _, opt := range opts {
		opt(es)
	}
	if es.indent < 1 {
		es.indent = 1
	}
	return es
}

// EncodeTree writes node as a single YAML document followed by a newline.
func EncodeTree(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := newEncState(opts)
	return encodeTree(node, w, es)
}

// Encode writes a loaded object graph, see FromValue.
func Encode(v any, w io.Writer, opts ...EncodeOption) error {
	es := newEncState(opts)
	node, err := fromValue(v, es.refPrefix)
	if err != nil {
		return err
	}
	return encodeTree(node, w, es)
}

func encodeTree(node *ir.Node, w io.Writer, es *EncState) error {
	e := &encoder{w: w, es: es}
	if e.isBlock(node) {
		e.write(e.props(node))
		e.block(node, 0, false)
	} else {
		e.inline(node, 1)
	}
	e.write("\n")
	return e.err
}

type encoder struct {
	w   io.Writer
	es  *EncState
	err error
}

func (e *encoder) write(s string) {
	if e.err != nil || s == "" {
		return
	}
	_, e.err = io.WriteString(e.w, s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		e.es.col = len(s) - i - 1
		return
	}
	e.es.col += len(s)
}

func (e *encoder) colored(t ir.Type, a ColorAttr, s string) {
	if e.es.Color == nil {
		e.write(s)
		return
	}
	e.write(e.es.Color(t, a, s))
}

func (e *encoder) nl(depth int) {
	if e.es.col == 0 {
		return
	}
	e.es.depth = depth
	e.write("\n" + strings.Repeat(" ", depth*e.es.indent))
}

func (e *encoder) isBlock(n *ir.Node) bool {
	if e.es.brackets {
		return false
	}
	switch n.Type {
	case ir.ObjectType:
		return len(n.Fields) > 0
	case ir.DirectiveType:
		return n.Kind == ir.ObjectDirective && len(n.Fields) > 0
	case ir.ArrayType:
		return len(n.Values) > 0
	}
	return false
}

// props renders the anchor and tag of n, if any.
func (e *encoder) props(n *ir.Node) string {
	var parts []string
	if n.Anchor != "" {
		parts = append(parts, e.color(n.Type, AnchorColor, "&"+n.Anchor))
	}
	tag := n.Tag
	if n.Type == ir.DirectiveType {
		tag = n.DirectiveTag()
	}
	if tag != "" {
		parts = append(parts, e.color(n.Type, TagColor, tag))
	}
	return strings.Join(parts, " ")
}

func (e *encoder) color(t ir.Type, a ColorAttr, s string) string {
	if e.es.Color == nil {
		return s
	}
	return e.es.Color(t, a, s)
}

// block writes the entries of a block mapping or sequence, each on its own
// line at depth. With inlineFirst the first entry continues the current
// line.
func (e *encoder) block(n *ir.Node, depth int, inlineFirst bool) {
	switch n.Type {
	case ir.ObjectType, ir.DirectiveType:
		for i, f := range n.Fields {
			if i > 0 || !inlineFirst {
				e.nl(depth)
			}
			e.key(f, n.Type)
			e.value(n.Values[i], depth+1)
		}
	case ir.ArrayType:
		for i, v := range n.Values {
			if i > 0 || !inlineFirst {
				e.nl(depth)
			}
			e.colored(ir.ArrayType, SepColor, "-")
			if e.es.indent == 2 && v.Type == ir.ObjectType && e.isBlock(v) && e.props(v) == "" {
				e.write(" ")
				e.block(v, depth+1, true)
				continue
			}
			e.value(v, depth+1)
		}
	}
}

// value writes n after a "key:" or "-" marker.
func (e *encoder) value(n *ir.Node, depth int) {
	if e.isBlock(n) {
		if p := e.props(n); p != "" {
			e.write(" " + p)
		}
		e.block(n, depth, false)
		return
	}
	e.write(" ")
	e.inline(n, depth)
}

func (e *encoder) key(f *ir.Node, parent ir.Type) {
	switch {
	case f.IsMergeKey():
		e.colored(ir.ObjectType, MergeColor, ir.MergeKey)
	case f.Type == ir.StringType:
		e.colored(parent, FieldColor, plainOrQuoted(f.String))
	default:
		e.colored(parent, FieldColor, scalarText(f))
	}
	e.colored(ir.ObjectType, SepColor, ":")
}

// inline writes n in flow style. depth is the indentation of block
// literals.
func (e *encoder) inline(n *ir.Node, depth int) {
	if p := e.props(n); p != "" {
		e.write(p)
		if n.Type == ir.DirectiveType && n.Kind == ir.ObjectDirective && len(n.Fields) == 0 {
			e.write(" {}")
			return
		}
		e.write(" ")
	}
	switch n.Type {
	case ir.ObjectType, ir.DirectiveType:
		if n.Type == ir.DirectiveType && n.Kind != ir.ObjectDirective {
			e.colored(ir.DirectiveType, ValueColor, singleQuote(n.Target))
			return
		}
		e.colored(n.Type, SepColor, "{")
		for i, f := range n.Fields {
			if i > 0 {
				e.colored(n.Type, SepColor, ",")
				e.write(" ")
			}
			e.key(f, n.Type)
			e.write(" ")
			e.inline(n.Values[i], depth+1)
		}
		e.colored(n.Type, SepColor, "}")
	case ir.ArrayType:
		e.colored(ir.ArrayType, SepColor, "[")
		for i, v := range n.Values {
			if i > 0 {
				e.colored(ir.ArrayType, SepColor, ",")
				e.write(" ")
			}
			e.inline(v, depth+1)
		}
		e.colored(ir.ArrayType, SepColor, "]")
	case ir.StringType:
		if !e.es.brackets && canLiteral(n.String) {
			e.literal(n.String, max(depth, 1))
			return
		}
		e.colored(ir.StringType, ValueColor, plainOrQuoted(n.String))
	case ir.AliasType:
		e.colored(ir.AliasType, ValueColor, "*"+n.Alias)
	default:
		e.colored(n.Type, ValueColor, scalarText(n))
	}
}

func canLiteral(s string) bool {
	if !strings.Contains(s, "\n") || strings.HasSuffix(s, "\n\n") {
		return false
	}
	if strings.HasPrefix(s, " ") || strings.HasPrefix(s, "\t") || strings.HasPrefix(s, "\n") {
		return false
	}
	for _, r := range s {
		if r == '\r' || (r < ' ' && r != '\n' && r != '\t') {
			return false
		}
	}
	for _, ln := range strings.Split(s, "\n") {
		if strings.HasSuffix(ln, " ") {
			return false
		}
	}
	return true
}

func (e *encoder) literal(s string, depth int) {
	ind := "|"
	if !strings.HasSuffix(s, "\n") {
		ind = "|-"
	}
	e.colored(ir.StringType, SepColor, ind)
	pad := strings.Repeat(" ", depth*e.es.indent)
	for _, ln := range strings.Split(strings.TrimSuffix(s, "\n"), "\n") {
		if ln == "" {
			e.write("\n")
			continue
		}
		e.write("\n" + pad)
		e.colored(ir.StringType, LiteralColor, ln)
	}
}

func scalarText(n *ir.Node) string {
	switch n.Type {
	case ir.NullType:
		return "null"
	case ir.BoolType:
		return strconv.FormatBool(n.Bool)
	case ir.NumberType:
		switch {
		case n.Int64 != nil:
			return strconv.FormatInt(*n.Int64, 10)
		case n.Float64 != nil:
			return formatFloat(*n.Float64)
		}
		return n.Number
	case ir.StringType:
		return n.String
	}
	return n.Describe()
}

// formatFloat renders f so that it reads back as a float.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
