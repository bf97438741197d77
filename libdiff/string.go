package libdiff

import (
	"strings"

	"github.com/signadot/objyaml/ir"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// DiffString diffs two string nodes. Multi-line strings give a !strdiff
// string of the changed lines, others are replaced whole.
func DiffString(from, to *ir.Node) *ir.Node {
	if from.String == to.String {
		return nil
	}
	if !strings.Contains(from.String, "\n") || !strings.Contains(to.String, "\n") {
		return MakeDiff(from, to)
	}
	return ir.FromString(Format(Lines(from.String, to.String), 1)).WithTag(StringDiffTag)
}

type Op int8

const (
	Equal Op = iota
	Delete
	Insert
)

func (o Op) Prefix() string {
	switch o {
	case Delete:
		return "-"
	case Insert:
		return "+"
	default:
		return " "
	}
}

// Line is one line of a line diff, without its newline.
type Line struct {
	Op   Op
	Text string
}

// Lines diffs from and to line by line. It returns nil when they are equal.
func Lines(from, to string) []Line {
	if from == to {
		return nil
	}
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	var res []Line
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffpatch.DiffDelete:
			op = Delete
		case diffpatch.DiffInsert:
			op = Insert
		}
		for _, ln := range splitLines(d.Text) {
			res = append(res, Line{Op: op, Text: ln})
		}
	}
	return res
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// Format renders lines as a diff, keeping context unchanged lines around
// each change. Runs of omitted lines are shown as "...".
func Format(lines []Line, context int) string {
	keep := make([]bool, len(lines))
	for i, ln := range lines {
		if ln.Op == Equal {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			keep[j] = true
		}
	}
	var b strings.Builder
	skipped := false
	for i, ln := range lines {
		if !keep[i] {
			skipped = true
			continue
		}
		if skipped {
			b.WriteString("...\n")
			skipped = false
		}
		b.WriteString(ln.Op.Prefix())
		b.WriteString(ln.Text)
		b.WriteByte('\n')
	}
	if skipped {
		b.WriteString("...\n")
	}
	return b.String()
}
