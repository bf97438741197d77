package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/scott-cotton/cli"

	"github.com/signadot/objyaml/blob"
)

func TestEnvFunc(t *testing.T) {
	env := map[string]any{}
	for _, a := range []string{"nvis=784", "run.name=baseline", "run.seeds=[1, 2]", "debug=true"} {
		if err := envFunc(env, a); err != nil {
			t.Fatalf("%s: %v", a, err)
		}
	}
	want := map[string]any{
		"nvis":  784,
		"debug": true,
		"run": map[string]any{
			"name":  "baseline",
			"seeds": []any{1, 2},
		},
	}
	if diff := cmp.Diff(want, blob.Normalize(env)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if err := envFunc(env, "novalue"); !errors.Is(err, cli.ErrUsage) {
		t.Errorf("expected usage error, got %v", err)
	}
	if err := envFunc(env, "nvis.x=1"); err == nil {
		t.Errorf("expected an error setting a field of a scalar")
	}
}

func TestWriteLineDiff(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	if err := writeLineDiff(buf, "a.yaml", "b.yaml", " x\n-y\n+z\n", false); err != nil {
		t.Fatal(err)
	}
	want := "--- a.yaml\n+++ b.yaml\n x\n-y\n+z\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvEnv, "{nvis: 784, run: {name: baseline}}")
	def, err := loadEnv()
	if err != nil {
		t.Fatal(err)
	}
	env := map[string]any{"nvis": 10}
	mergeEnv(env, def)
	want := map[string]any{"nvis": 10, "run": map[string]any{"name": "baseline"}}
	if diff := cmp.Diff(want, env); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	t.Setenv(EnvEnv, "[1, 2]")
	if _, err := loadEnv(); err == nil {
		t.Errorf("expected an error for a sequence")
	}
}
