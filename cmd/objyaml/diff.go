package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/signadot/objyaml/encode"
	"github.com/signadot/objyaml/ir"
	"github.com/signadot/objyaml/libdiff"
	"github.com/signadot/objyaml/load"
	"github.com/signadot/objyaml/parse"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
)

// diff compares two configurations. It exits with status 1 when they
// differ.
func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	var differs bool
	if cfg.Tree {
		differs, err = diffTrees(cfg, cc, args[0], args[1])
	} else {
		differs, err = diffGraphs(cfg, cc, args[0], args[1])
	}
	if err != nil {
		return err
	}
	if differs {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func diffTrees(cfg *DiffConfig, cc *cli.Context, a, b string) (bool, error) {
	parseFile := func(file string) (*ir.Node, error) {
		d, err := readInput(cc, file)
		if err != nil {
			return nil, err
		}
		return parse.Parse(d, parse.ParseFilename(file))
	}
	from, err := parseFile(a)
	if err != nil {
		return false, err
	}
	to, err := parseFile(b)
	if err != nil {
		return false, err
	}
	d := libdiff.Diff(from, to)
	if d == nil {
		return false, nil
	}
	return true, encode.EncodeTree(d, cc.Out, cfg.encOpts(cc.Out)...)
}

// diffGraphs loads both configurations and diffs their renderings line by
// line.
func diffGraphs(cfg *DiffConfig, cc *cli.Context, a, b string) (bool, error) {
	render := func(file string) (string, error) {
		d, err := readInput(cc, file)
		if err != nil {
			return "", err
		}
		v, err := load.LoadBytes(d, load.WithNamespace(namespace(cfg.Plugins)), load.WithFilename(file))
		if err != nil {
			return "", err
		}
		buf := bytes.NewBuffer(nil)
		if err := encode.Encode(v, buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	from, err := render(a)
	if err != nil {
		return false, err
	}
	to, err := render(b)
	if err != nil {
		return false, err
	}
	lines := libdiff.Lines(from, to)
	if lines == nil {
		return false, nil
	}
	return true, writeLineDiff(cc.Out, a, b, libdiff.Format(lines, cfg.Context), cfg.colors(cc.Out))
}

func writeLineDiff(w io.Writer, a, b, d string, colored bool) error {
	var out strings.Builder
	fmt.Fprintf(&out, "--- %s\n+++ %s\n", a, b)
	for _, ln := range strings.SplitAfter(d, "\n") {
		switch {
		case !colored || ln == "":
		case strings.HasPrefix(ln, "-"):
			ln = color.RedString("%s", ln)
		case strings.HasPrefix(ln, "+"):
			ln = color.GreenString("%s", ln)
		case strings.HasPrefix(ln, "..."):
			ln = color.CyanString("%s", ln)
		}
		out.WriteString(ln)
	}
	_, err := io.WriteString(w, out.String())
	return err
}
