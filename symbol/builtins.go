package symbol

import (
	"fmt"
	"math"
	"strconv"
)

func mathModule() *Module {
	m := NewModule("math")
	fns := map[string]any{
		"sqrt":  math.Sqrt,
		"exp":   math.Exp,
		"log":   math.Log,
		"log2":  math.Log2,
		"log10": math.Log10,
		"tanh":  math.Tanh,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"pow":   math.Pow,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"fabs":  math.Abs,
		"isnan": math.IsNaN,
		"pi":    math.Pi,
		"e":     math.E,
		"inf":   math.Inf(1),
		"nan":   math.NaN(),
	}
	for k, v := range fns {
		m.Define(k, v)
	}
	return m
}

func builtinsModule() *Module {
	m := NewModule("builtins")
	m.Define("None", nil)
	m.Define("True", true)
	m.Define("False", false)
	m.Define("dict", func(args map[string]any) (any, error) {
		res := make(map[string]any, len(args))
		for k, v := range args {
			res[k] = v
		}
		return res, nil
	})
	m.Define("list", func(args map[string]any) (any, error) {
		items, ok := args["items"]
		if !ok {
			return []any{}, nil
		}
		if len(args) != 1 {
			return nil, fmt.Errorf("list takes only items")
		}
		s, ok := items.([]any)
		if !ok {
			return nil, fmt.Errorf("list items must be a sequence, got %T", items)
		}
		return append([]any{}, s...), nil
	})
	m.Define("str", func(v any) string {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	})
	m.Define("int", func(s string) (int, error) {
		return strconv.Atoi(s)
	})
	m.Define("float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
	m.Define("len", func(v any) int {
		switch x := v.(type) {
		case string:
			return len(x)
		case []any:
			return len(x)
		case map[string]any:
			return len(x)
		}
		return 0
	})
	m.Define("abs", math.Abs)
	m.Define("min", math.Min)
	m.Define("max", math.Max)
	return m
}
