package symbol

import (
	"errors"
	"fmt"
)

var (
	ErrImport       = errors.New("import error")
	ErrAttribute    = errors.New("attribute error")
	ErrModuleExists = errors.New("module exists")

	// ErrNoModule is returned by importers which do not provide a module.
	// The namespace then tries the next importer.
	ErrNoModule = fmt.Errorf("%w: no module named", ErrImport)
)
