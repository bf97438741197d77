package encode

import (
	"bytes"
	"strings"

	"github.com/signadot/objyaml/ir"
)

func MustString(node *ir.Node) string {
	buf := bytes.NewBuffer(nil)
	if err := EncodeTree(node, buf); err != nil {
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}
