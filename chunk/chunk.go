// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: chunk/chunk.go
// Summary: Tagged-text model for rendered content items.
// Usage: Produced by windows and message formatters, consumed by the tty
// layout engine and renderer.

package chunk

import "strings"

// Attr is a display attribute attached to a text segment. The set is closed;
// arbitrary foreground/background colors go through the Fg/Bg escape fields
// of TagSet instead.
type Attr uint8

const (
	// Bold renders the segment in bold.
	Bold Attr = 1 << iota
	// Standout renders the segment reverse-video, with extra emphasis when
	// the owning viewport is focused.
	Standout
	// Reverse renders the segment reverse-video unconditionally.
	Reverse
	// Visible marks the segment containing the window's logical cursor; the
	// renderer uses it to decide whether a reframe is needed.
	Visible
	// Cursor marks the segment at whose start the hardware cursor should be
	// parked when the viewport is focused.
	Cursor
	// Right requests right-justification of the segment on its line.
	Right
	// Fill requests soft word-wrapping of the segment.
	Fill
)

// Has reports whether a contains attr.
func (a Attr) Has(attr Attr) bool {
	return a&attr != 0
}

// With returns a with attr added.
func (a Attr) With(attr Attr) Attr {
	return a | attr
}

// TagSet carries the attributes of one segment plus optional named colors.
// Fg/Bg are color names resolved by the frontend's color assigner ("red",
// "#ff8800", ...); empty means the terminal default.
type TagSet struct {
	Attrs  Attr
	Fg, Bg string
}

// Has reports whether the tag set contains attr.
func (t TagSet) Has(attr Attr) bool {
	return t.Attrs.Has(attr)
}

// Segment is one run of identically-tagged text.
type Segment struct {
	Tags TagSet
	Text string
}

// Chunk is the tagged-text rendering of one content item.
type Chunk []Segment

// Text returns the chunk's text with tags stripped.
func (c Chunk) Text() string {
	var b strings.Builder
	for _, s := range c {
		b.WriteString(s.Text)
	}
	return b.String()
}

// WithAttrs returns a copy of c with attrs added to every segment.
func (c Chunk) WithAttrs(attrs Attr) Chunk {
	out := make(Chunk, len(c))
	for i, s := range c {
		s.Tags.Attrs = s.Tags.Attrs.With(attrs)
		out[i] = s
	}
	return out
}

// SplitFirstLine carves the first display line off c. The first line ends at
// the first newline, or at a right-justified segment, whichever comes first;
// a right-justified segment is carried whole. If the chunk runs out before a
// newline, one is appended so the first line is always newline-terminated.
func (c Chunk) SplitFirstLine() (first, rest Chunk) {
	for i, s := range c {
		if s.Tags.Has(Right) {
			first = append(first, s)
			return first, c[i+1:]
		}
		if idx := strings.IndexByte(s.Text, '\n'); idx >= 0 {
			first = append(first, Segment{Tags: s.Tags, Text: s.Text[:idx+1]})
			if tail := s.Text[idx+1:]; tail != "" {
				rest = append(Chunk{{Tags: s.Tags, Text: tail}}, c[i+1:]...)
			} else {
				rest = c[i+1:]
			}
			return first, rest
		}
		first = append(first, s)
	}
	if len(first) == 0 {
		return Chunk{{Text: "\n"}}, nil
	}
	first[len(first)-1].Text += "\n"
	return first, nil
}
