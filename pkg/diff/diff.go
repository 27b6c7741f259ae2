// Package diff renders line-oriented unified diffs between two versions of
// a file.
package diff

import (
	"fmt"
	"strings"
)

// ContextLines is the number of unchanged lines shown around each change.
const ContextLines = 3

// Kind classifies a diff line.
type Kind int

const (
	// Context is an unchanged line.
	Context Kind = iota

	// Add is a line present only in the modified version.
	Add

	// Remove is a line present only in the original version.
	Remove
)

// Prefix returns the unified diff marker for the kind.
func (k Kind) Prefix() string {
	switch k {
	case Add:
		return "+"
	case Remove:
		return "-"
	default:
		return " "
	}
}

// Line is one line of a hunk, without its terminator.
type Line struct {
	Kind    Kind
	Content string
}

// Hunk is a group of nearby changes with surrounding context.
type Hunk struct {
	// OriginalStart and ModifiedStart are 1-based line numbers.
	OriginalStart int
	OriginalCount int
	ModifiedStart int
	ModifiedCount int

	Lines []Line
}

// Diff is a unified diff of one file.
type Diff struct {
	Path      string
	Hunks     []Hunk
	Additions int
	Deletions int
}

// Unified compares original and modified line by line. It returns nil
// when the contents are identical.
func Unified(path string, original, modified []byte) *Diff {
	if string(original) == string(modified) {
		return nil
	}

	ops := compare(splitLines(original), splitLines(modified))

	d := &Diff{Path: path}
	for _, op := range ops {
		switch op.kind {
		case Add:
			d.Additions++
		case Remove:
			d.Deletions++
		}
	}
	d.Hunks = group(ops)
	if len(d.Hunks) == 0 {
		return nil
	}
	return d
}

// HasChanges returns true if the diff contains any changes.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// GitHeader returns the "diff --git" header line.
func (d *Diff) GitHeader() string {
	if d == nil {
		return ""
	}
	path := strings.TrimPrefix(d.Path, "/")
	return fmt.Sprintf("diff --git a/%s b/%s", path, path)
}

// String returns the diff in unified format without the git header.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", path)
	fmt.Fprintf(&b, "+++ b/%s\n", path)

	for _, hunk := range d.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
			hunk.OriginalStart, hunk.OriginalCount,
			hunk.ModifiedStart, hunk.ModifiedCount)
		for _, line := range hunk.Lines {
			b.WriteString(line.Kind.Prefix())
			b.WriteString(line.Content)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// FullString returns the diff including the git header.
func (d *Diff) FullString() string {
	if !d.HasChanges() {
		return ""
	}
	return d.GitHeader() + "\n" + d.String()
}

// splitLines splits on "\n". A carriage return stays part of its line, so
// terminator changes show up as changed lines. A missing final newline is
// marked on the last line.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}

	lines := strings.Split(string(content), "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += "\n\\ No newline at end of file"
	return lines
}

type op struct {
	kind    Kind
	content string
}

// compare returns the edit script turning a into b, from a longest common
// subsequence table.
func compare(a, b []string) []op {
	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]op, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			ops = append(ops, op{Context, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, op{Remove, a[i]})
			i++
		default:
			ops = append(ops, op{Add, b[j]})
			j++
		}
	}
	for ; i < len(a); i++ {
		ops = append(ops, op{Remove, a[i]})
	}
	for ; j < len(b); j++ {
		ops = append(ops, op{Add, b[j]})
	}
	return ops
}

// group cuts the edit script into hunks, merging changes separated by at
// most 2*ContextLines unchanged lines.
func group(ops []op) []Hunk {
	var hunks []Hunk

	for start := 0; start < len(ops); {
		// Find the next change.
		for start < len(ops) && ops[start].kind == Context {
			start++
		}
		if start >= len(ops) {
			break
		}

		// Extend while the run of context between changes stays short.
		end := start
		for k := start; k < len(ops); k++ {
			if ops[k].kind != Context {
				end = k + 1
				continue
			}
			if k-end >= 2*ContextLines {
				break
			}
		}

		from := max(start-ContextLines, 0)
		to := min(end+ContextLines, len(ops))
		hunks = append(hunks, buildHunk(ops, from, to))
		start = to
	}

	return hunks
}

func buildHunk(ops []op, from, to int) Hunk {
	hunk := Hunk{OriginalStart: 1, ModifiedStart: 1}
	for _, o := range ops[:from] {
		if o.kind != Add {
			hunk.OriginalStart++
		}
		if o.kind != Remove {
			hunk.ModifiedStart++
		}
	}

	for _, o := range ops[from:to] {
		hunk.Lines = append(hunk.Lines, Line{Kind: o.kind, Content: o.content})
		if o.kind != Add {
			hunk.OriginalCount++
		}
		if o.kind != Remove {
			hunk.ModifiedCount++
		}
	}

	// An empty side starts at the line before the hunk.
	if hunk.OriginalCount == 0 {
		hunk.OriginalStart--
	}
	if hunk.ModifiedCount == 0 {
		hunk.ModifiedStart--
	}
	return hunk
}
