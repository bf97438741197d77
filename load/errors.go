package load

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signadot/objyaml/anchor"
	"github.com/signadot/objyaml/blob"
	"github.com/signadot/objyaml/ir"
	"github.com/signadot/objyaml/parse"
	"github.com/signadot/objyaml/symbol"
)

// Error kinds. Every error returned by a load matches exactly one of these
// with errors.Is, in addition to its underlying cause.
var (
	ErrParse           = parse.ErrParse
	ErrUndefinedAnchor = anchor.ErrUndefinedAnchor
	ErrImport          = symbol.ErrImport
	ErrAttribute       = symbol.ErrAttribute
	ErrConstruction    = errors.New("construction error")
	ErrBlobLoad        = blob.ErrBlobLoad
	ErrExpand          = errors.New("expansion error")
)

// Error describes a failed load and where in the document it happened.
type Error struct {
	Kind error
	Err  error

	File   string
	Pos    ir.Pos
	Path   string
	Tag    string
	Target string
	Anchor string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if !e.Pos.IsZero() {
		fmt.Fprintf(&b, "%s: ", e.Pos)
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	switch {
	case e.Tag != "" && e.Target != "" && !strings.HasSuffix(e.Tag, e.Target):
		fmt.Fprintf(&b, "%s %q: ", e.Tag, e.Target)
	case e.Tag != "":
		b.WriteString(e.Tag)
		b.WriteString(": ")
	}
	if e.Anchor != "" {
		fmt.Fprintf(&b, "&%s: ", e.Anchor)
	}
	switch {
	case e.Err == nil:
		b.WriteString(e.Kind.Error())
	case errors.Is(e.Err, e.Kind):
		b.WriteString(e.Err.Error())
	default:
		fmt.Fprintf(&b, "%s: %s", e.Kind, e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// nodeError builds an Error located at n.
func nodeError(n *ir.Node, kind, err error) *Error {
	res := &Error{Kind: kind, Err: err}
	if n == nil {
		return res
	}
	res.Pos = n.Pos
	res.Path = n.Path()
	res.Anchor = n.Anchor
	if n.Type == ir.DirectiveType {
		res.Tag = n.DirectiveTag()
		res.Target = n.Target
	}
	if n.Type == ir.AliasType {
		res.Anchor = n.Alias
	}
	return res
}

func parseError(err error) *Error {
	kind := ErrParse
	if errors.Is(err, ErrUndefinedAnchor) {
		kind = ErrUndefinedAnchor
	}
	return &Error{Kind: kind, Err: err}
}

func symbolKind(err error) error {
	if errors.Is(err, ErrAttribute) {
		return ErrAttribute
	}
	return ErrImport
}
