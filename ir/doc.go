// Package ir provides the document tree produced by the parser and consumed
// by the loader.
//
// # Node Structure
//
// A Node represents a single value in a document. Nodes can be:
//
//   - Atomic types: null, boolean, number, string
//   - Composite types: object (key-value pairs), array (ordered list)
//   - Aliases: a reference (*name) to a node carrying an anchor (&name)
//   - Directives: !obj:<path>, !import and !pkl: nodes
//
// The IR works as a recursive tagged union structure, where values are placed
// in fields depending on the node type. Objects and object directives keep
// their keys in Fields and their values in Values, in document order. Merge
// keys ("<<") are kept as fields of NullType.
//
// Each node maintains parent links, and Path renders its location in the
// document for error messages.
package ir
