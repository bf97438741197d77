package eval

import (
	"errors"
	"testing"

	"github.com/signadot/objyaml/ir"
)

type envTest struct {
	in, out string
}

func TestEnv(t *testing.T) {
	tests := []envTest{
		{in: "abc", out: "abc"},
		{in: "$[", out: "$["},
		{in: "$[x]", out: "X"},
		{in: " $[x]", out: " X"},
		{in: "$[x", out: "$[x"},
		{in: "some $[stuff] $[here]", out: "some STUFF HERE"},
		{in: "some $[stuff] $[here] trailing", out: "some STUFF HERE trailing"},
		{in: "some $[ stuff ] $[here] trailing", out: "some STUFF HERE trailing"},
		{in: "$abc", out: "$abc"},
		{in: " $abc", out: " $abc"},
		{in: "pkg.module.Class", out: "pkg.module.Class"},
		{in: "n=$[n * 2]", out: "n=20"},
		{in: "$[rate]", out: "0.5"},
		{in: `$["a\]b"]`, out: "a]b"},
		{in: "$[flag]!", out: "false!"},
	}
	env := Env{
		"x":     "X",
		"stuff": "STUFF",
		"here":  "HERE",
		"n":     10,
		"rate":  0.5,
		"flag":  false,
	}
	for i := range tests {
		tc := &tests[i]
		got, err := ExpandString(tc.in, env)
		if err != nil {
			t.Error(err)
			continue
		}
		if got == tc.out {
			continue
		}
		t.Errorf("%q: got %q want %q", tc.in, got, tc.out)
	}
	if _, err := ExpandString("$[nope(]", env); err == nil {
		t.Errorf("expected compile error")
	}
}

func TestEval(t *testing.T) {
	env := Env{"n": 10}
	v, ok, err := Eval("$[n * 2]", env, nil)
	if err != nil || !ok {
		t.Fatalf("%v %v", ok, err)
	}
	if v != 20 {
		t.Errorf("got %#v", v)
	}
	if _, ok, _ := Eval("x $[n]", env, nil); ok {
		t.Errorf("partial string evaluated whole")
	}
	if _, ok, _ := Eval("$[n] $[n]", env, nil); ok {
		t.Errorf("two expressions evaluated as one")
	}

	root := ir.FromKeyVals([]ir.KeyVal{
		{Key: ir.FromString("a"), Val: ir.FromString("$[whereami()]")},
		{Key: ir.FromString("b"), Val: ir.FromInt(3)},
	})
	v, _, err = Eval(root.Values[0].String, nil, &Options{Node: root.Values[0]})
	if err != nil {
		t.Fatal(err)
	}
	if v != "$.a" {
		t.Errorf("whereami gave %v", v)
	}
	v, _, err = Eval(`$[getpath("$.b")]`, nil, &Options{Node: root.Values[0]})
	if err != nil {
		t.Fatal(err)
	}
	if v != 3 {
		t.Errorf("getpath gave %v", v)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("OBJYAML_TEST_DIR", "/data")
	lookup := Lookup(Env{"RUN": 7, "OBJYAML_TEST_DIR": "/override"})
	tests := []envTest{
		{in: "weights.pkl", out: "weights.pkl"},
		{in: "${OBJYAML_TEST_DIR}/w.pkl", out: "/override/w.pkl"},
		{in: "run${RUN}/${MISSING:-x}.pkl", out: "run7/x.pkl"},
		{in: "$${RUN}", out: "${RUN}"},
		{in: "a$b", out: "a$b"},
	}
	for _, tc := range tests {
		got, err := ExpandVars(tc.in, lookup)
		if err != nil {
			t.Errorf("%q: %v", tc.in, err)
			continue
		}
		if got != tc.out {
			t.Errorf("%q: got %q want %q", tc.in, got, tc.out)
		}
	}
	got, err := ExpandVars("${OBJYAML_TEST_DIR}", Lookup(nil))
	if err != nil || got != "/data" {
		t.Errorf("process environment: %q %v", got, err)
	}
	if _, err := ExpandVars("${OBJYAML_TEST_UNSET}", Lookup(nil)); !errors.Is(err, ErrUndefinedVar) {
		t.Errorf("expected undefined, got %v", err)
	}
	for _, bad := range []string{"${", "${1X}", "${}"} {
		if _, err := ExpandVars(bad, Lookup(nil)); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}
