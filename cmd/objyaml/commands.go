package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "objyaml").
		WithSynopsis("objyaml [opts] command [opts]").
		WithDescription("objyaml loads object graphs described by YAML configurations.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return objyamlMain(cfg, cc, args)
		}).
		WithSubs(
			LoadCommand(cfg),
			TreeCommand(cfg),
			SymbolsCommand(cfg),
			DiffCommand(cfg),
			BlobCommand(cfg))
}

func LoadCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &LoadConfig{MainConfig: mainCfg, Env: map[string]any{}}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts,
		&cli.Opt{
			Name:        "e",
			Description: "set an expansion variable, the value is parsed as YAML",
			Type:        cli.NamedFuncOpt(cli.FuncOpt(envOptTypeFunc(cfg.Env)), "(name=val)"),
		})
	return cli.NewCommandAt(&cfg.Load, "load").
		WithAliases("l").
		WithSynopsis("load [-e name=val]... [-x] [-lazy] [-p path] [files]").
		WithDescription(loadDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return loadMain(cfg, cc, args)
		})
}

const loadDescription = `load resolves configurations and renders the resulting object graphs.

!obj: directives are constructed, !import directives resolved and !pkl:
blobs read. Values shared through anchors are rendered once with an anchor
and aliased afterwards.

With -lazy nothing is constructed and !obj: directives are rendered with
their resolved arguments. With -x, strings are expanded: ${NAME} from -e
variables or the environment and $[expr] as expressions over the -e
variables.`

func envOptTypeFunc(env map[string]any) func(cc *cli.Context, a string) (any, error) {
	return func(cc *cli.Context, a string) (any, error) {
		if err := envFunc(env, a); err != nil {
			return nil, err
		}
		return 0, nil
	}
}

func TreeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &TreeConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Tree, "tree").
		WithAliases("t").
		WithSynopsis("tree [files]").
		WithDescription("parse configurations and render their document trees, directives included").
		WithRun(func(cc *cli.Context, args []string) error {
			return tree(cfg, cc, args)
		})
}

func SymbolsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SymbolsConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Symbols, "symbols").
		WithAliases("sym").
		WithSynopsis("symbols [-plugins dirs] [modules]").
		WithDescription("list the modules of the namespace and their attributes").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return symbols(cfg, cc, args)
		})
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg, Context: 3}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d").
		WithSynopsis("diff [-tree] [-U n] a b").
		WithDescription("diff two configurations, as loaded graphs or with -tree as documents").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

func BlobCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &BlobConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Blob, "blob").
		WithSynopsis("blob <subcommand>").
		WithDescription("inspect and convert serialized blobs").
		WithSubs(
			BlobCatCommand(cfg.MainConfig),
			BlobConvertCommand(cfg.MainConfig))
}

func BlobCatCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &BlobCatConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Cat, "cat").
		WithSynopsis("cat <locator>...").
		WithDescription("render the contents of blobs, locators may pin a digest with @sha256:...").
		WithRun(func(cc *cli.Context, args []string) error {
			return blobCat(cfg, cc, args)
		})
}

func BlobConvertCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &BlobConvertConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Convert, "convert").
		WithSynopsis("convert <in> <out>").
		WithDescription("re-encode a blob, the formats following the file extensions").
		WithRun(func(cc *cli.Context, args []string) error {
			return blobConvert(cfg, cc, args)
		})
}
