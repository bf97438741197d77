// Package load turns documents into object graphs.
//
// Besides plain YAML data, documents may contain three directives:
//
//	model: !obj:pkg.models.MLP {
//	    layers: [...],
//	    act: !import 'math.tanh',
//	    weights: !pkl: 'params/mlp.pkl',
//	}
//
// !obj: resolves a dotted path to a callable and calls it with the
// mapping as keyword arguments, !import resolves a dotted path to the value
// it names and !pkl: loads a serialized blob. Anchored nodes are resolved
// once: every alias of an anchored !obj: refers to the same object.
package load

import (
	"io"
	"os"

	"github.com/signadot/objyaml/blob"
	"github.com/signadot/objyaml/ir"
	"github.com/signadot/objyaml/parse"
	"github.com/signadot/objyaml/symbol"
)

// Loader holds the configuration of loads. A Loader may be used for any
// number of loads, concurrently.
type Loader struct {
	ns          *symbol.Namespace
	blobs       blob.Loader
	environ     map[string]any
	expand      bool
	instantiate bool
	filename    string
}

func New(opts ...Option) *Loader {
	l := &Loader{
		ns:          symbol.Default(),
		blobs:       &blob.FileLoader{},
		instantiate: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads a single document from r and resolves it.
func (l *Loader) Load(r io.Reader) (any, error) {
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return l.LoadBytes(d)
}

func (l *Loader) LoadBytes(d []byte) (any, error) {
	node, err := parse.Parse(d, l.parseOpts()...)
	if err != nil {
		return nil, parseError(err)
	}
	return l.Resolve(node)
}

// LoadFile loads the single document in the file at path.
func (l *Loader) LoadFile(path string) (any, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fl := *l
	fl.filename = path
	return fl.LoadBytes(d)
}

// LoadAll resolves every document of a stream. Anchors do not cross
// documents.
func (l *Loader) LoadAll(d []byte) ([]any, error) {
	nodes, err := parse.ParseAll(d, l.parseOpts()...)
	if err != nil {
		return nil, parseError(err)
	}
	res := make([]any, 0, len(nodes))
	for _, node := range nodes {
		v, err := l.Resolve(node)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

// Resolve builds the object graph of a parsed document.
func (l *Loader) Resolve(node *ir.Node) (any, error) {
	return newResolver(l).resolve(node)
}

func (l *Loader) parseOpts() []parse.ParseOption {
	if l.filename == "" {
		return nil
	}
	return []parse.ParseOption{parse.ParseFilename(l.filename)}
}

// Load reads and resolves a single document with a new Loader.
func Load(r io.Reader, opts ...Option) (any, error) {
	return New(opts...).Load(r)
}

func LoadBytes(d []byte, opts ...Option) (any, error) {
	return New(opts...).LoadBytes(d)
}

func LoadString(s string, opts ...Option) (any, error) {
	return New(opts...).LoadBytes([]byte(s))
}

func LoadFile(path string, opts ...Option) (any, error) {
	return New(opts...).LoadFile(path)
}
