// Package encode renders document trees and loaded object graphs as YAML
// text.
//
// # Usage
//
//	// Render a loaded graph. Values reachable along several paths are
//	// written once with an anchor and aliased afterwards.
//	v, err := load.LoadFile("train.yaml")
//	err = encode.Encode(v, os.Stdout)
//
//	// Render a parsed document, directives included, in colour.
//	node, err := parse.Parse(d)
//	err = encode.EncodeTree(node, os.Stdout, encode.EncodeColors(encode.NewColors()))
package encode
