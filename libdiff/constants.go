// Package libdiff compares document trees and renderings.
package libdiff

const (
	DeleteTag     = "!delete"
	InsertTag     = "!insert"
	ReplaceTag    = "!replace"
	StringDiffTag = "!strdiff"
)
