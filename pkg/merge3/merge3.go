// Package merge3 implements a line-based three-way text merge: given
// a common ancestor and two divergent versions, it reconciles them
// line by line, emitting Git-style conflict markers for any region
// both sides changed differently. It operates on raw bytes (not
// necessarily UTF-8 text); binary files that diverge on both sides
// are merged the same way, producing conflict-marked bytes around
// whatever the file's lines happen to be.
package merge3

import "bytes"

// Result is the outcome of a three-way merge.
type Result struct {
	Merged   []byte // the merged content, with conflict markers if Conflict
	Conflict bool
}

// Merge reconciles base, current, and target line by line. Where only
// one side changed a region relative to base, that side's lines win.
// Where both sides changed the same region to the same lines, the
// change is accepted cleanly. Where both sides changed the same
// region differently, the region is replaced by a conflict block and
// Result.Conflict is set — the merge still completes.
func Merge(base, current, target []byte) Result {
	baseLines := splitLines(base)
	curLines := splitLines(current)
	tgtLines := splitLines(target)

	curChunks := buildChunks(baseLines, curLines)
	tgtChunks := buildChunks(baseLines, tgtLines)

	return mergeChunks(curChunks, tgtChunks)
}

// chunk is a contiguous region of base lines together with the
// replacement lines one side produced for it.
type chunk struct {
	baseStart, baseEnd int
	lines              []string
	changed            bool
}

func buildChunks(base, side []string) []chunk {
	ops := diffLines(base, side)

	var chunks []chunk
	baseIdx := 0
	i := 0
	for i < len(ops) {
		if ops[i].kind == opEqual {
			chunks = append(chunks, chunk{baseStart: baseIdx, baseEnd: baseIdx + 1, lines: []string{ops[i].line}})
			baseIdx++
			i++
			continue
		}

		start := baseIdx
		var replacement []string
		for i < len(ops) && ops[i].kind != opEqual {
			if ops[i].kind == opDelete {
				baseIdx++
			} else {
				replacement = append(replacement, ops[i].line)
			}
			i++
		}
		chunks = append(chunks, chunk{baseStart: start, baseEnd: baseIdx, lines: replacement, changed: true})
	}
	return chunks
}

// mergeChunks walks the current- and target-side chunk sequences in
// lockstep (both are derived from the same base, so they cover the
// same base ranges in the same order) and decides, region by region,
// whose lines to keep.
func mergeChunks(curChunks, tgtChunks []chunk) Result {
	var out bytes.Buffer
	conflict := false

	ci, ti := 0, 0
	for ci < len(curChunks) || ti < len(tgtChunks) {
		var cc, tc *chunk
		if ci < len(curChunks) {
			cc = &curChunks[ci]
		}
		if ti < len(tgtChunks) {
			tc = &tgtChunks[ti]
		}

		switch {
		case cc == nil:
			writeLines(&out, tc.lines)
			ti++
		case tc == nil:
			writeLines(&out, cc.lines)
			ci++
		case cc.baseStart == tc.baseStart && cc.baseEnd == tc.baseEnd:
			switch {
			case !cc.changed && !tc.changed:
				writeLines(&out, cc.lines)
			case cc.changed && !tc.changed:
				writeLines(&out, cc.lines)
			case !cc.changed && tc.changed:
				writeLines(&out, tc.lines)
			case linesEqual(cc.lines, tc.lines):
				writeLines(&out, cc.lines)
			default:
				conflict = true
				writeConflict(&out, cc.lines, tc.lines)
			}
			ci++
			ti++
		default:
			// One side's change spans a wider base region than the
			// other's aligned chunk; pull in every chunk on both
			// sides that overlaps the combined region before
			// deciding, so a multi-line edit on one side is compared
			// against the full corresponding region on the other.
			regionEnd := maxInt(cc.baseEnd, tc.baseEnd)

			var curRegion, tgtRegion []chunk
			for ci < len(curChunks) && curChunks[ci].baseStart < regionEnd {
				curRegion = append(curRegion, curChunks[ci])
				if curChunks[ci].baseEnd > regionEnd {
					regionEnd = curChunks[ci].baseEnd
				}
				ci++
			}
			for ti < len(tgtChunks) && tgtChunks[ti].baseStart < regionEnd {
				tgtRegion = append(tgtRegion, tgtChunks[ti])
				if tgtChunks[ti].baseEnd > regionEnd {
					regionEnd = tgtChunks[ti].baseEnd
				}
				ti++
			}

			curOut := assemble(curRegion)
			tgtOut := assemble(tgtRegion)
			curChanged := anyChanged(curRegion)
			tgtChanged := anyChanged(tgtRegion)

			switch {
			case !curChanged && !tgtChanged:
				writeLines(&out, curOut)
			case curChanged && !tgtChanged:
				writeLines(&out, curOut)
			case !curChanged && tgtChanged:
				writeLines(&out, tgtOut)
			case linesEqual(curOut, tgtOut):
				writeLines(&out, curOut)
			default:
				conflict = true
				writeConflict(&out, curOut, tgtOut)
			}
		}
	}

	return Result{Merged: out.Bytes(), Conflict: conflict}
}

func assemble(chunks []chunk) []string {
	var lines []string
	for _, c := range chunks {
		lines = append(lines, c.lines...)
	}
	return lines
}

func anyChanged(chunks []chunk) bool {
	for _, c := range chunks {
		if c.changed {
			return true
		}
	}
	return false
}

func writeLines(buf *bytes.Buffer, lines []string) {
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
}

func writeConflict(buf *bytes.Buffer, current, target []string) {
	buf.WriteString("<<<<<<< current\n")
	writeLines(buf, current)
	buf.WriteString("=======\n")
	writeLines(buf, target)
	buf.WriteString(">>>>>>> target\n")
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// splitLines splits raw text into lines without a trailing empty
// element for a final newline.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := string(data)
	lines := splitOn(s, '\n')
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func splitOn(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
