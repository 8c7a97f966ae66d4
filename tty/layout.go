// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tty/layout.go
// Summary: Pure line layout: tagged text + width + carry-over -> display lines.
//
// LayoutLine is a total function; it holds no state and callers must not
// pass a negative width.

package tty

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/murmurchat/murmur/chunk"
)

const tabStop = 8

// BreakLine is the Remaining sentinel meaning the caller should emit a
// real newline: the source text had one before the width ran out, or a
// right-justified segment reserved the line.
const BreakLine = -1

// StartFresh is the carry-over value for the first segment of a line.
const StartFresh = -1

// Piece is one display line produced by LayoutLine. Remaining is the
// column budget left on the line: positive means the line is not full and
// the next segment continues it, zero means it filled exactly, BreakLine
// means a newline belongs here.
type Piece struct {
	Text      string
	Remaining int
}

// cellWidth scores one rune: zero-width combining and format characters
// count 0, East-Asian wide and full characters count 2, everything else 1.
func cellWidth(r rune) int {
	if r < ' ' {
		return 0
	}
	return runewidth.RuneWidth(r)
}

// textWidth scores a whole string.
func textWidth(s string) int {
	w := 0
	for _, r := range s {
		w += cellWidth(r)
	}
	return w
}

// LayoutLine lays one tagged text run into display lines. width is the
// paint width; remaining is the column budget already left on the current
// output line, or StartFresh (any negative) at the start of a line.
func LayoutLine(s string, width, remaining int, tags chunk.TagSet) []Piece {
	right := tags.Has(chunk.Right)

	if tags.Has(chunk.Fill) {
		s = fillWrap(s, width, remaining)
	}

	var pieces []Piece
	var out strings.Builder
	line := 0
	col := 0
	if remaining > 0 {
		col = width - remaining
	}

	for _, c := range s {
		switch {
		case c == '\n':
			if !right {
				if col < width {
					pieces = append(pieces, Piece{out.String(), BreakLine})
				} else {
					pieces = append(pieces, Piece{out.String(), 0})
				}
			} else {
				pieces = append(pieces, Piece{out.String(), width - col})
			}
			out.Reset()
			col = 0
			line++
		case c >= ' ' || c == '\t':
			text := string(c)
			w := cellWidth(c)
			if c == '\t' {
				// Tabs expand to the next multiple of tabStop columns.
				w = tabStop - col%tabStop
				text = strings.Repeat(" ", w)
			}
			if col+w > width {
				if right && line == 0 {
					// Reserve this line for the right-justified field.
					pieces = append(pieces, Piece{"", BreakLine})
					col = remaining
					if col < 0 {
						col = 0
					}
				} else {
					pieces = append(pieces, Piece{out.String(), 0})
					out.Reset()
					col = 0
				}
				line++
				if c == '\t' {
					continue
				}
			}
			out.WriteString(text)
			col += w
		default:
			// other control characters don't print
		}
	}
	if out.Len() > 0 {
		pieces = append(pieces, Piece{out.String(), width - col})
	}
	return pieces
}

// fillWrap pre-wraps a fill-tagged segment: word wrap against the
// remaining width for its first line, the full width thereafter,
// preserving a trailing newline.
func fillWrap(s string, width, remaining int) string {
	nl := strings.HasSuffix(s, "\n")
	first := remaining
	if first <= 0 {
		first = width
	}
	words := strings.Join(strings.Fields(s), " ")
	lines := strings.Split(wordwrap.String(words, first), "\n")
	out := lines[0]
	if rest := strings.Join(lines[1:], " "); rest != "" {
		out += "\n" + wordwrap.String(rest, width)
	}
	if nl {
		out += "\n"
	}
	return out
}
