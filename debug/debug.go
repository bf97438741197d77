// Package debug provides env-var gated diagnostics for the loader.
//
// Each flag is read once at start up, for example
//
//	OBJYAML_DEBUG_CONSTRUCT=1 objyaml load config.yaml
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Parse     bool
	Resolve   bool
	Construct bool
	Anchor    bool
	Blob      bool
	Expand    bool
}

var d *debug

func init() {
	d = &debug{}
	d.Parse = boolEnv("OBJYAML_DEBUG_PARSE")
	d.Resolve = boolEnv("OBJYAML_DEBUG_RESOLVE")
	d.Construct = boolEnv("OBJYAML_DEBUG_CONSTRUCT")
	d.Anchor = boolEnv("OBJYAML_DEBUG_ANCHOR")
	d.Blob = boolEnv("OBJYAML_DEBUG_BLOB")
	d.Expand = boolEnv("OBJYAML_DEBUG_EXPAND")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Parse() bool {
	return d.Parse
}
func Resolve() bool {
	return d.Resolve
}
func Construct() bool {
	return d.Construct
}
func Anchor() bool {
	return d.Anchor
}
func Blob() bool {
	return d.Blob
}
func Expand() bool {
	return d.Expand
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
}
