package libdiff

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/objyaml/encode"
	"github.com/signadot/objyaml/ir"
	"github.com/signadot/objyaml/parse"
)

func mustParse(t *testing.T, doc string) *ir.Node {
	t.Helper()
	n, err := parse.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("# doc\n%s\n# error %v", doc, err)
	}
	return n
}

func TestDiff(t *testing.T) {
	tests := []struct {
		from, to string
		want     string
	}{
		{"a: 1", "a: 1", ""},
		{"a: &x 1", "a: &y 1", ""},
		{"a: 1\nb: 2", "a: 1\nb: 3", "b: !replace\n  from: 2\n  to: 3"},
		{"a: 1", "a: 1\nc: x", "c: !insert\n  to: x"},
		{"a: 1\nb: 2", "a: 1", "b: !delete\n  from: 2"},
		{"[1, 2, 3]", "[1, 5, 3]", "\"1\": !replace\n  from: 2\n  to: 5"},
		{"[1, 2]", "[1, 2, 4]", "\"+2\": !insert\n  to: 4"},
		{"m: !obj:a.B {n: 1}", "m: !obj:a.B {n: 2}", "m: !obj:a.B\n  n: !replace\n    from: 1\n    to: 2"},
		{"m: !obj:a.B {n: 1}", "m: !obj:a.C {n: 1}", "m: !replace\n  from: !obj:a.B\n    n: 1\n  to: !obj:a.C\n    n: 1"},
		{"s: !import 'a.b'", "s: !import 'a.c'", "s: !replace\n  from: !import 'a.b'\n  to: !import 'a.c'"},
	}
	for _, tt := range tests {
		from := mustParse(t, tt.from)
		to := mustParse(t, tt.to)
		d := Diff(from, to)
		got := ""
		if d != nil {
			got = encode.MustString(d)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("# from\n%s\n# to\n%s\n(-want +got):\n%s", tt.from, tt.to, diff)
		}
	}
}

func TestLines(t *testing.T) {
	if got := Lines("a\nb\n", "a\nb\n"); got != nil {
		t.Errorf("equal inputs gave %v", got)
	}
	got := Lines("a\nb\nc\nd\ne\n", "a\nx\nc\nd\ne\n")
	want := []Line{
		{Equal, "a"},
		{Delete, "b"},
		{Insert, "x"},
		{Equal, "c"},
		{Equal, "d"},
		{Equal, "e"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(" a\n-b\n+x\n c\n...\n", Format(got, 1)); diff != "" {
		t.Errorf("format (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("...\n-b\n+x\n...\n", Format(got, 0)); diff != "" {
		t.Errorf("format (-want +got):\n%s", diff)
	}
}

func TestDiffString(t *testing.T) {
	from := mustParse(t, "t: |\n  one\n  two\n  three\n")
	to := mustParse(t, "t: |\n  one\n  2\n  three\n")
	d := Diff(from, to)
	if d == nil {
		t.Fatal("no diff")
	}
	s := d.Get("t")
	if s == nil || s.Tag != StringDiffTag {
		t.Fatalf("got %s", encode.MustString(d))
	}
	if diff := cmp.Diff(" one\n-two\n+2\n three\n", s.String); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
