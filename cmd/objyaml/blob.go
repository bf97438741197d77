package main

import (
	"fmt"
	"io"

	"github.com/signadot/objyaml/blob"
	"github.com/signadot/objyaml/encode"

	"github.com/scott-cotton/cli"
)

func blobCat(cfg *BlobCatConfig, cc *cli.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: blob cat requires at least one locator", cli.ErrUsage)
	}
	loader := &blob.FileLoader{}
	for i, loc := range args {
		v, err := loader.Load(loc)
		if err != nil {
			return err
		}
		if err := writeDoc(cc.Out, i > 0, func(w io.Writer) error {
			return encode.Encode(v, w, cfg.encOpts(cc.Out)...)
		}); err != nil {
			return fmt.Errorf("error encoding %s: %w", loc, err)
		}
	}
	return nil
}

// blobConvert re-encodes a blob and prints the digest of the result, usable
// to pin the new blob in a locator.
func blobConvert(cfg *BlobConvertConfig, cc *cli.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: blob convert requires 2 args, got %v", cli.ErrUsage, args)
	}
	v, err := (&blob.FileLoader{}).Load(args[0])
	if err != nil {
		return err
	}
	d, err := blob.Save(args[1], v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cc.Out, "%s@%s\n", args[1], d)
	return err
}
