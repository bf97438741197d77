// Package anchor implements the per-load table of anchored values.
//
// Anchors are indexed back-references, never copies: the value registered
// under a name is handed out as-is to every alias, so aliases of constructed
// objects observe the same instance.
package anchor

import (
	"errors"
	"fmt"

	"github.com/signadot/objyaml/debug"
)

var (
	ErrUndefinedAnchor = errors.New("undefined anchor")
	ErrDuplicateAnchor = errors.New("duplicate anchor")
	ErrAnchorCycle     = fmt.Errorf("%w: alias refers to an enclosing node", ErrUndefinedAnchor)
)

type state int

const (
	pending state = iota + 1
	done
)

type entry struct {
	state state
	value any
}

// Table maps anchor names to resolved values. The zero value is not usable,
// use New.
type Table struct {
	entries map[string]*entry
	order   []string
}

func New() *Table {
	return &Table{entries: map[string]*entry{}}
}

// Begin records that the node carrying anchor name has started resolving.
func (t *Table) Begin(name string) error {
	if _, present := t.entries[name]; present {
		return fmt.Errorf("%w &%s", ErrDuplicateAnchor, name)
	}
	t.entries[name] = &entry{state: pending}
	t.order = append(t.order, name)
	return nil
}

// Register stores the resolved value of an anchored node. It may be called
// without Begin, in which case the name must be new.
func (t *Table) Register(name string, v any) error {
	e, present := t.entries[name]
	if !present {
		if err := t.Begin(name); err != nil {
			return err
		}
		e = t.entries[name]
	}
	if e.state == done {
		return fmt.Errorf("%w &%s", ErrDuplicateAnchor, name)
	}
	if debug.Anchor() {
		debug.Logf("anchor &%s registered as %T\n", name, v)
	}
	e.state = done
	e.value = v
	return nil
}

// Lookup returns the value registered under name.
func (t *Table) Lookup(name string) (any, error) {
	e, present := t.entries[name]
	if !present {
		return nil, fmt.Errorf("%w *%s", ErrUndefinedAnchor, name)
	}
	if e.state != done {
		return nil, fmt.Errorf("%w *%s", ErrAnchorCycle, name)
	}
	if debug.Anchor() {
		debug.Logf("alias *%s resolved to %T\n", name, e.value)
	}
	return e.value, nil
}

// Defined reports whether name has been seen, finished or not.
func (t *Table) Defined(name string) bool {
	_, present := t.entries[name]
	return present
}

// Names returns anchor names in the order they were first seen.
func (t *Table) Names() []string {
	res := make([]string, len(t.order))
	copy(res, t.order)
	return res
}
