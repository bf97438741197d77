package ir

import (
	"testing"
)

func TestNodePath(t *testing.T) {
	inner := FromInt(3)
	args := FromKeyVals([]KeyVal{{Key: FromString("dim"), Val: inner}})
	layers := FromSlice([]*Node{FromString("a"), args})
	odd := FromBool(true)
	dir := NewDirective(ObjectDirective, "pkg.Model", []KeyVal{
		{Key: FromString("layers"), Val: layers},
		{Key: FromString("a.b"), Val: odd},
	})
	root := FromKeyVals([]KeyVal{{Key: FromString("model"), Val: dir}})

	tests := []struct {
		node *Node
		want string
	}{
		{root, "$"},
		{dir, "$.model"},
		{layers, "$.model.layers"},
		{inner, "$.model.layers[1].dim"},
		{odd, "$.model.'a.b'"},
	}
	for _, tt := range tests {
		if got := tt.node.Path(); got != tt.want {
			t.Errorf("got %q want %q", got, tt.want)
		}
	}

	got, err := root.GetPath("$.model.layers[1].dim")
	if err != nil {
		t.Fatal(err)
	}
	if got != inner {
		t.Errorf("GetPath returned %s", got.Path())
	}
	got, err = root.GetPath("$.model.'a.b'")
	if err != nil {
		t.Fatal(err)
	}
	if got != odd {
		t.Errorf("quoted GetPath returned %v", got)
	}
	if _, err := root.GetPath("$.model.layers[7]"); err == nil {
		t.Errorf("expected out of bounds error")
	}
}

func TestParsePathString(t *testing.T) {
	for _, in := range []string{"$", "$.a", "$.a[0].b", "$.'x.y'[3]"} {
		p, err := ParsePath(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		got := "$"
		if p != nil {
			got = p.String()
		}
		if got != in {
			t.Errorf("got %q want %q", got, in)
		}
	}
	for _, in := range []string{"", "a", "$[x]", "$.'open"} {
		if _, err := ParsePath(in); err == nil {
			t.Errorf("%q: expected error", in)
		}
	}
}

func TestDirectiveOf(t *testing.T) {
	tests := []struct {
		tag    string
		kind   DirectiveKind
		target string
		ok     bool
	}{
		{"!obj:a.b.C", ObjectDirective, "a.b.C", true},
		{"!import", ImportDirective, "", true},
		{"!pkl:", PickleDirective, "", true},
		{"!pkl", 0, "", false},
		{"!import:a.b", 0, "", false},
		{"!!str", 0, "", false},
	}
	for _, tt := range tests {
		kind, target, ok := DirectiveOf(tt.tag)
		if kind != tt.kind || target != tt.target || ok != tt.ok {
			t.Errorf("%s: got (%s, %q, %t)", tt.tag, kind, target, ok)
		}
	}
}
