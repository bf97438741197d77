package ir

import (
	"fmt"
	"strings"
)

// Directive tags. Only these exact spellings are recognised.
const (
	ObjectTagPrefix = "!obj:"
	ImportTag       = "!import"
	PickleTag       = "!pkl:"
)

type DirectiveKind int

const (
	ObjectDirective DirectiveKind = iota + 1
	ImportDirective
	PickleDirective
)

func (k DirectiveKind) String() string {
	switch k {
	case ObjectDirective:
		return "obj"
	case ImportDirective:
		return "import"
	case PickleDirective:
		return "pkl"
	default:
		return fmt.Sprintf("<unknown directive %d>", int(k))
	}
}

// DirectiveOf classifies a raw tag. For object directives the target is the
// dotted path following the "!obj:" prefix; for the other kinds the target
// comes from the tagged scalar and is left empty here.
func DirectiveOf(tag string) (kind DirectiveKind, target string, ok bool) {
	switch {
	case strings.HasPrefix(tag, ObjectTagPrefix):
		return ObjectDirective, tag[len(ObjectTagPrefix):], true
	case tag == ImportTag:
		return ImportDirective, "", true
	case tag == PickleTag:
		return PickleDirective, "", true
	}
	return 0, "", false
}

// DirectiveTag renders the tag which would produce a directive node.
func (y *Node) DirectiveTag() string {
	switch y.Kind {
	case ObjectDirective:
		return ObjectTagPrefix + y.Target
	case ImportDirective:
		return ImportTag
	case PickleDirective:
		return PickleTag
	}
	return ""
}

// NewDirective creates a directive node. args is only meaningful for object
// directives and may be nil.
func NewDirective(kind DirectiveKind, target string, args []KeyVal) *Node {
	res := FromKeyVals(args)
	res.Type = DirectiveType
	res.Kind = kind
	res.Target = target
	res.Tag = res.DirectiveTag()
	return res
}
