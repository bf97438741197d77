package encode

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"github.com/signadot/objyaml/construct"
	"github.com/signadot/objyaml/ir"
	"github.com/signadot/objyaml/load"
	"github.com/signadot/objyaml/parse"
	"github.com/signadot/objyaml/symbol"
)

func renderTree(t *testing.T, doc string, opts ...EncodeOption) string {
	t.Helper()
	node, err := parse.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("# doc\n%s\n# error %v", doc, err)
	}
	buf := bytes.NewBuffer(nil)
	if err := EncodeTree(node, buf, opts...); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestEncodeTree(t *testing.T) {
	doc := `
model: &m !obj:pkg.models.MLP {nvis: 10, act: !import 'math.tanh', layers: [{dim: 5}, {dim: 7}]}
again: *m
w: !pkl: 'params.pkl'
empty: !obj:pkg.models.Empty {}
`
	want := `model: &m !obj:pkg.models.MLP
  nvis: 10
  act: !import 'math.tanh'
  layers:
    - dim: 5
    - dim: 7
again: *m
w: !pkl: 'params.pkl'
empty: !obj:pkg.models.Empty {}
`
	if diff := cmp.Diff(want, renderTree(t, doc)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEncodeTreeRoundTrip(t *testing.T) {
	docs := []string{
		"a: 1\nb: [1, 2.5, -3]\nc: {d: null, e: true}\n",
		"- x\n- 'true'\n- '12'\n- ''\n- 'a: b'\n- [nested, [deep]]\n",
		"text: |\n  line one\n  line two\nshort: |-\n  a\n  b\n",
		"base: &b {lr: 0.1}\nsgd:\n  <<: *b\n  momentum: 0.9\n",
		"bin: !!binary aGVsbG8=\nbig: 18446744073709551615\nf: 0.5\n",
		"plain\n",
		"top: &top\n  - !obj:m.F {a: &x 1, b: *x}\n",
	}
	for _, doc := range docs {
		once := renderTree(t, doc)
		twice := renderTree(t, once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("# doc\n%s\n(-once +twice):\n%s", doc, diff)
		}
	}
}

func TestEncodeBrackets(t *testing.T) {
	got := renderTree(t, "a: [1, 2]\nb: {}\nc: {d: x}\n", EncodeBrackets(true))
	if diff := cmp.Diff("{a: [1, 2], b: {}, c: {d: x}}\n", got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEncodeReservedScalars(t *testing.T) {
	doc := "- n\n- yes\n- Off\n- 'true'\n- 'NULL'\n- '~'\n- '1e-3'\n- '.inf'\n"
	want := "- n\n- yes\n- Off\n- \"true\"\n- \"NULL\"\n- \"~\"\n- \"1e-3\"\n- \".inf\"\n"
	if diff := cmp.Diff(want, renderTree(t, doc)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

type layer struct {
	Dim    int
	Irange float64 `objyaml:"irange"`
	Skip   string  `json:"-"`
	hidden int
}

func TestEncodeValue(t *testing.T) {
	shared := &layer{Dim: 5, Irange: 0.05, hidden: 1}
	v := map[string]any{
		"a":   shared,
		"b":   []any{shared, "x\ny"},
		"bin": []byte("hi"),
		"f":   2.0,
		"n":   nil,
		"d":   90 * time.Second,
		"u":   uint64(math.MaxUint64),
		"q":   []string{"true", "1.5", "a: b", "", "plain"},
	}
	want := `a: &ref1 !<encode.layer>
  dim: 5
  irange: 0.05
b:
  - *ref1
  - |-
    x
    y
bin: !!binary aGk=
d: "1m30s"
f: 2.0
n: null
q:
  - "true"
  - "1.5"
  - "a: b"
  - ""
  - plain
u: 18446744073709551615
`
	buf := bytes.NewBuffer(nil)
	if err := Encode(v, buf); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEncodeCycle(t *testing.T) {
	m := map[string]any{}
	m["self"] = m
	buf := bytes.NewBuffer(nil)
	if err := Encode(m, buf, RefPrefix("n")); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("&n1\nself: *n1\n", buf.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEncodeProxies(t *testing.T) {
	ns := symbol.NewNamespace()
	ns.MustRegister(symbol.NewModule("m").Define("F", construct.Func(func(a construct.Args) (any, error) {
		return map[string]any(a), nil
	})))
	v, err := load.LoadString("a: &x !obj:m.F {k: 1}\nb: *x\n",
		load.WithNamespace(ns), load.Instantiate(false))
	if err != nil {
		t.Fatal(err)
	}
	v.(map[string]any)["f"] = math.Sqrt
	buf := bytes.NewBuffer(nil)
	if err := Encode(v, buf); err != nil {
		t.Fatal(err)
	}
	want := "a: &ref1 !obj:m.F\n  k: 1\nb: *ref1\nf: !import 'math.Sqrt'\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFromValueModule(t *testing.T) {
	node, err := FromValue(symbol.NewModule("a.b"))
	if err != nil {
		t.Fatal(err)
	}
	if node.Type != ir.DirectiveType || node.Kind != ir.ImportDirective || node.Target != "a.b" {
		t.Errorf("got %s", MustString(node))
	}
	if _, err := FromValue(make(chan int)); err == nil {
		t.Errorf("expected an error encoding a channel")
	}
}

func TestEncodeColors(t *testing.T) {
	save := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = save }()

	plain := renderTree(t, "a: !import 'x.y'\n")
	colored := renderTree(t, "a: !import 'x.y'\n", EncodeColors(NewColors()))
	if !strings.Contains(colored, "\x1b[") {
		t.Errorf("no escapes in %q", colored)
	}
	if colored == plain {
		t.Errorf("colours had no effect")
	}
	if got := renderTree(t, "a: 1\n", EncodeColors(nil)); got != "a: 1\n" {
		t.Errorf("got %q", got)
	}
}
