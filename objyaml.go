// Package objyaml loads YAML configurations which describe object graphs.
//
// A configuration is plain YAML extended with three tags:
//
//	model: !obj:models.MLP {
//	    nvis: &nvis 784,
//	    layers: [!obj:models.Linear {dim: *nvis}],
//	    act: !import 'math.tanh',
//	    weights: !pkl: 'params/mlp.pkl',
//	}
//
// Dotted paths are resolved against a symbol.Namespace, in which
// applications register the constructors configurations may name. See the
// load package for options and the error kinds.
package objyaml

import (
	"io"

	"github.com/signadot/objyaml/load"
	"github.com/signadot/objyaml/symbol"
)

type Option = load.Option

var (
	ErrParse           = load.ErrParse
	ErrUndefinedAnchor = load.ErrUndefinedAnchor
	ErrImport          = load.ErrImport
	ErrAttribute       = load.ErrAttribute
	ErrConstruction    = load.ErrConstruction
	ErrBlobLoad        = load.ErrBlobLoad
)

func Load(r io.Reader, opts ...Option) (any, error) {
	return load.Load(r, opts...)
}

func LoadString(s string, opts ...Option) (any, error) {
	return load.LoadString(s, opts...)
}

func LoadFile(path string, opts ...Option) (any, error) {
	return load.LoadFile(path, opts...)
}

// Register adds m to the default namespace.
func Register(m *symbol.Module) error {
	return symbol.Register(m)
}
