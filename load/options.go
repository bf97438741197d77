package load

import (
	"github.com/signadot/objyaml/blob"
	"github.com/signadot/objyaml/symbol"
)

type Option func(*Loader)

// WithNamespace resolves dotted paths in ns instead of symbol.Default().
func WithNamespace(ns *symbol.Namespace) Option {
	return func(l *Loader) { l.ns = ns }
}

// WithBlobLoader loads !pkl: locators with bl.
func WithBlobLoader(bl blob.Loader) Option {
	return func(l *Loader) { l.blobs = bl }
}

// WithBlobDir loads !pkl: locators from files relative to dir.
func WithBlobDir(dir string) Option {
	return func(l *Loader) { l.blobs = &blob.FileLoader{Dir: dir} }
}

// WithEnviron provides variables for ${NAME} references, consulted before
// the process environment, and the environment of $[...] expressions.
func WithEnviron(env map[string]any) Option {
	return func(l *Loader) { l.environ = env }
}

// ExpandStrings turns on expansion of ${NAME} and $[...] in every string
// scalar. Locators of !pkl: are always expanded.
func ExpandStrings(on bool) Option {
	return func(l *Loader) { l.expand = on }
}

// Instantiate controls whether !obj: directives are constructed during the
// load. When off they resolve to *Proxy values.
func Instantiate(on bool) Option {
	return func(l *Loader) { l.instantiate = on }
}

// WithFilename names the document in errors.
func WithFilename(name string) Option {
	return func(l *Loader) { l.filename = name }
}
