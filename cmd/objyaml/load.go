package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/signadot/objyaml/encode"
	"github.com/signadot/objyaml/load"

	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"
)

func loadMain(cfg *LoadConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Load.Parse(cc, args)
	if err != nil {
		return err
	}
	def, err := loadEnv()
	if err != nil {
		return err
	}
	mergeEnv(cfg.Env, def)
	if len(args) == 0 {
		args = []string{"-"}
	}
	sep := false
	for _, file := range args {
		d, err := readInput(cc, file)
		if err != nil {
			return err
		}
		opts := cfg.loadOpts()
		if file != "-" {
			opts = append(opts, load.WithFilename(file))
		}
		vs, err := load.New(opts...).LoadAll(d)
		if err != nil {
			return err
		}
		for i, v := range vs {
			if cfg.Path != "" {
				v, err = load.Select(v, cfg.Path)
				if err != nil {
					return fmt.Errorf("%s document %d: %w", file, i, err)
				}
			}
			if err := writeDoc(cc.Out, sep, func(w io.Writer) error {
				return encode.Encode(v, w, cfg.encOpts(cc.Out)...)
			}); err != nil {
				return fmt.Errorf("error encoding %s document %d: %w", file, i, err)
			}
			sep = true
		}
	}
	return nil
}

// writeDoc writes one document of a stream, preceded by a separator unless
// it is the first.
func writeDoc(w io.Writer, sep bool, enc func(io.Writer) error) error {
	if sep {
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
	}
	return enc(w)
}

func envFunc(env map[string]any, a string) error {
	key, val, ok := strings.Cut(a, "=")
	if !ok {
		return fmt.Errorf("%w: argument %q expected name=val", cli.ErrUsage, a)
	}
	var v any
	if err := yaml.Unmarshal([]byte(val), &v); err != nil {
		return err
	}
	parts := strings.Split(key, ".")
	n := len(parts)
	tmpEnv := env
	for i, part := range parts {
		if i == n-1 {
			tmpEnv[part] = v
			break
		}
		next := tmpEnv[part]
		if next == nil {
			next = map[string]any{}
			tmpEnv[part] = next
		}
		nextEnv, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot access %s, list or scalar", strings.Join(parts[:i+1], "."))
		}
		tmpEnv = nextEnv
	}
	return nil
}
