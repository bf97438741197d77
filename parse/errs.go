package parse

import (
	"errors"
	"fmt"

	"github.com/signadot/objyaml/anchor"
)

var (
	ErrParse             = errors.New("parse error")
	ErrKeyTag            = fmt.Errorf("%w: key cannot be tagged", ErrParse)
	ErrDuplicateKey      = fmt.Errorf("%w: duplicate key", ErrParse)
	ErrUnknownTag        = fmt.Errorf("%w: unknown tag", ErrParse)
	ErrDirective         = fmt.Errorf("%w: malformed directive", ErrParse)
	ErrMultipleDocuments = fmt.Errorf("%w: expected a single document", ErrParse)
	ErrIntRange          = fmt.Errorf("%w: integer out of range", ErrParse)

	// anchor errors found while parsing are reported wrapped in ErrParse.
	ErrUndefinedAnchor = anchor.ErrUndefinedAnchor
	ErrDuplicateAnchor = anchor.ErrDuplicateAnchor
)
