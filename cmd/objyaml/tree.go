package main

import (
	"fmt"
	"io"

	"github.com/signadot/objyaml/encode"
	"github.com/signadot/objyaml/parse"

	"github.com/scott-cotton/cli"
)

func tree(cfg *TreeConfig, cc *cli.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"-"}
	}
	sep := false
	for _, file := range args {
		d, err := readInput(cc, file)
		if err != nil {
			return err
		}
		var pOpts []parse.ParseOption
		if file != "-" {
			pOpts = append(pOpts, parse.ParseFilename(file))
		}
		docs, err := parse.ParseAll(d, pOpts...)
		if err != nil {
			return err
		}
		for i, doc := range docs {
			if err := writeDoc(cc.Out, sep, func(w io.Writer) error {
				return encode.EncodeTree(doc, w, cfg.encOpts(cc.Out)...)
			}); err != nil {
				return fmt.Errorf("error encoding %s document %d: %w", file, i, err)
			}
			sep = true
		}
	}
	return nil
}
