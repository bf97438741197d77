package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/signadot/objyaml/encode"
	"github.com/signadot/objyaml/load"
	"github.com/signadot/objyaml/symbol"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	B     bool `cli:"name=b desc='encode with brackets'"`
	Color bool `cli:"name=color desc='encode with color'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	res := []encode.EncodeOption{
		encode.EncodeBrackets(cfg.B),
	}
	if cfg.colors(w) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

// colors reports whether output to w is coloured: when -color is given,
// or when it is not and w is a terminal.
func (cfg *MainConfig) colors(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		if opt.Value != nil {
			return false
		}
		break
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

// namespace gives the namespace dotted paths resolve in, importing plugin
// modules from the directories listed in plugins.
func namespace(plugins string) *symbol.Namespace {
	ns := symbol.Default()
	if plugins != "" {
		ns.AddImporter(&symbol.PluginImporter{Path: filepath.SplitList(plugins)})
	}
	return ns
}

type LoadConfig struct {
	*MainConfig

	Plugins string `cli:"name=plugins desc='list of directories holding plugin modules'"`
	Expand  bool   `cli:"name=x desc='expand ${VAR} and $[expr] in strings'"`
	Lazy    bool   `cli:"name=lazy desc='do not construct objects'"`
	Path    string `cli:"name=p aliases=path desc='render only the value at path, such as $.model.layers[0]'"`
	BlobDir string `cli:"name=blobs desc='directory relative !pkl: locators are read from'"`
	Env     map[string]any

	Load *cli.Command
}

func (cfg *LoadConfig) loadOpts() []load.Option {
	res := []load.Option{
		load.WithNamespace(namespace(cfg.Plugins)),
		load.WithEnviron(cfg.Env),
		load.ExpandStrings(cfg.Expand),
		load.Instantiate(!cfg.Lazy),
	}
	if cfg.BlobDir != "" {
		res = append(res, load.WithBlobDir(cfg.BlobDir))
	}
	return res
}

type TreeConfig struct {
	*MainConfig
	Tree *cli.Command
}

type SymbolsConfig struct {
	*MainConfig

	Plugins string `cli:"name=plugins desc='list of directories holding plugin modules'"`

	Symbols *cli.Command
}

type DiffConfig struct {
	*MainConfig

	Plugins string `cli:"name=plugins desc='list of directories holding plugin modules'"`
	Tree    bool   `cli:"name=tree desc='compare document trees rather than loaded graphs'"`
	Context int    `cli:"name=U desc='lines of context around changes'"`

	Diff *cli.Command
}

type BlobConfig struct {
	*MainConfig
	Blob *cli.Command
}

type BlobCatConfig struct {
	*MainConfig
	Cat *cli.Command
}

type BlobConvertConfig struct {
	*MainConfig
	Convert *cli.Command
}
