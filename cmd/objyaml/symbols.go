package main

import (
	"reflect"

	"github.com/signadot/objyaml/encode"
	"github.com/signadot/objyaml/symbol"

	"github.com/scott-cotton/cli"
)

// symbols renders, for each module, its attributes and their Go types.
func symbols(cfg *SymbolsConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Symbols.Parse(cc, args)
	if err != nil {
		return err
	}
	ns := namespace(cfg.Plugins)
	paths := args
	if len(paths) == 0 {
		paths = ns.Modules()
	}
	res := make(map[string]any, len(paths))
	for _, p := range paths {
		m, err := ns.Import(p)
		if err != nil {
			return err
		}
		attrs := map[string]any{}
		for _, name := range m.Names() {
			v, _ := m.Attr(name)
			attrs[name] = describe(v)
		}
		res[p] = attrs
	}
	return encode.Encode(res, cc.Out, cfg.encOpts(cc.Out)...)
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case *symbol.Module:
		return "module"
	}
	return reflect.TypeOf(v).String()
}
