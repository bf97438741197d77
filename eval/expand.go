// Package eval expands references embedded in document strings.
//
// Two forms are recognised:
//
//	${NAME}        replaced by an environment variable (ExpandVars)
//	$[expression]  replaced by the result of an expr-lang expression (ExpandString)
package eval

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/signadot/objyaml/debug"
	"github.com/signadot/objyaml/ir"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

type Env = map[string]any

// Options configures expression evaluation.
type Options struct {
	// Node is the node holding the expression. When set, whereami() and
	// getpath() are available to expressions.
	Node *ir.Node
}

func exprOpts(node *ir.Node) []expr.Option {
	res := []expr.Option{
		expr.Function("getenv", func(params ...any) (any, error) {
			return os.Getenv(params[0].(string)), nil
		},
			new(func(string) string)),
	}
	if node == nil {
		return res
	}
	return append(res,
		expr.Function("whereami", func(params ...any) (any, error) {
			return node.Path(), nil
		},
			new(func() string)),
		expr.Function("getpath", func(params ...any) (any, error) {
			res, err := node.Root().GetPath(params[0].(string))
			if err != nil {
				return nil, err
			}
			return scalarOf(res), nil
		},
			new(func(string) any)),
	)
}

// scalarOf gives the value of a scalar node, and a description of others.
func scalarOf(n *ir.Node) any {
	if n == nil {
		return nil
	}
	switch n.Type {
	case ir.StringType:
		return n.String
	case ir.BoolType:
		return n.Bool
	case ir.NumberType:
		if n.Int64 != nil {
			return int(*n.Int64)
		}
		if n.Float64 != nil {
			return *n.Float64
		}
		return n.Number
	case ir.NullType:
		return nil
	}
	return n.Describe()
}

func evalWithOptions(input string, env Env, opts *Options) (any, error) {
	var node *ir.Node
	if opts != nil {
		node = opts.Node
	}
	program, err := expr.Compile(input, exprOpts(node)...)
	if err != nil {
		return nil, err
	}
	return vm.Run(program, env)
}

// Eval evaluates s if it consists of exactly one $[...] expression and
// reports whether it did. The result keeps its type, so "$[2 * n]" can give
// an int.
func Eval(s string, env Env, opts *Options) (any, bool, error) {
	raw := getRaw(s)
	if raw == "" {
		return nil, false, nil
	}
	v, err := evalWithOptions(raw, env, opts)
	if err != nil {
		return nil, true, fmt.Errorf("error evaluating %q: %w", raw, err)
	}
	if debug.Expand() {
		debug.Logf("eval %q gave %#v\n", raw, v)
	}
	return v, true, nil
}

// getRaw returns the expression of a string of the form $[expr] with no
// other unescaped closing bracket.
func getRaw(v string) string {
	if !strings.HasPrefix(v, "$[") || !strings.HasSuffix(v, "]") || len(v) < 4 {
		return ""
	}
	inner := v[2 : len(v)-1]
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '\\':
			i++
		case ']':
			return ""
		}
	}
	return strings.TrimSpace(unescape(inner))
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// ExpandString expands $[...] expressions in a string.
//
// Within expressions, backslash escaping is supported:
//   - \] → literal ] (does not close the expression)
//   - \\ → literal \
//   - \x → x (for any character x)
//
// If an expression is not closed with an unescaped ], the text is treated
// as a literal string rather than an expression.
func ExpandString(v string, env Env) (string, error) {
	return ExpandStringWithOptions(v, env, nil)
}

func ExpandStringWithOptions(v string, env Env, opts *Options) (string, error) {
	if len(v) < 3 {
		return v, nil
	}
	exprStart := -1 // position of the $ starting the expression
	i := 0
	n := len(v)
	var outBuf []byte
	var keyBuf []byte

	for i < n-1 {
		c, next := v[i], v[i+1]
		i++
		switch c {
		case '$':
			if next == '[' && exprStart == -1 {
				exprStart = i - 1
				keyBuf = keyBuf[:0]
				i++
				continue
			}
			if exprStart == -1 {
				outBuf = append(outBuf, c)
			} else {
				keyBuf = append(keyBuf, c)
			}
		case '\\':
			if exprStart != -1 {
				keyBuf = append(keyBuf, next)
				i++
				continue
			}
			outBuf = append(outBuf, c)
		case ']':
			if exprStart != -1 {
				b, err := evalToBytes(string(keyBuf), env, opts)
				if err != nil {
					return "", err
				}
				outBuf = append(outBuf, b...)
				exprStart = -1
				continue
			}
			outBuf = append(outBuf, c)
		default:
			if exprStart == -1 {
				outBuf = append(outBuf, c)
			} else {
				keyBuf = append(keyBuf, c)
			}
		}
	}

	if exprStart == -1 {
		if i < n {
			outBuf = append(outBuf, v[n-1])
		}
		return string(outBuf), nil
	}
	if i >= n || v[n-1] != ']' {
		outBuf = append(outBuf, v[exprStart:n]...)
		return string(outBuf), nil
	}
	b, err := evalToBytes(string(keyBuf), env, opts)
	if err != nil {
		return "", err
	}
	return string(append(outBuf, b...)), nil
}

func evalToBytes(key string, env Env, opts *Options) ([]byte, error) {
	key = strings.TrimSpace(key)
	x, err := evalWithOptions(key, env, opts)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", key, err)
	}
	if debug.Expand() {
		debug.Logf("eval %q gave %#v\n", key, x)
	}
	return []byte(anyToString(x)), nil
}

func anyToString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return "null"
	default:
		return fmt.Sprint(x)
	}
}
