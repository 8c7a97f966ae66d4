// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tty/location.go
// Summary: A pointer into the logical content stream: anchor + line offset.

package tty

import (
	"fmt"

	"github.com/murmurchat/murmur/store"
)

// Location points at one display line of the content stream: an anchor
// into the stream plus a 0-based line offset within that anchor's rendered
// block. Locations are immutable by convention; Shift returns new ones.
type Location struct {
	r      *Renderer
	Anchor store.ID
	Offset int
}

func (l Location) String() string {
	return fmt.Sprintf("<%s +%d>", l.Anchor, l.Offset)
}

// Shift returns the Location delta display lines away, walking the
// window's view as far as needed and clamping at the stream ends. This is
// the one place content traversal cost is paid eagerly; callers avoid
// large shifts on hot paths.
func (l Location) Shift(delta int) Location {
	if delta == 0 {
		return l
	}
	if delta < 0 && -delta < l.Offset {
		return Location{l.r, l.Anchor, l.Offset + delta}
	}
	if delta > 0 {
		return l.shiftForward(delta)
	}
	return l.shiftBackward(-delta)
}

func (l Location) shiftForward(delta int) Location {
	target := l.Offset + delta
	last := l
	for id, ch := range l.r.win.View(l.Anchor, true) {
		lines := l.r.chunkLines(ch)
		if lines < 1 {
			lines = 1
		}
		if target < lines {
			return Location{l.r, id, target}
		}
		target -= lines
		last = Location{l.r, id, lines - 1}
	}
	return last
}

func (l Location) shiftBackward(delta int) Location {
	// lines above the top of the anchor's block we still have to climb
	climb := delta - l.Offset
	if climb <= 0 {
		return Location{l.r, l.Anchor, 0}
	}
	skippedSelf := false
	last := Location{l.r, l.Anchor, 0}
	for id, ch := range l.r.win.View(l.Anchor, false) {
		if !skippedSelf && id == l.Anchor {
			skippedSelf = true
			continue
		}
		lines := l.r.chunkLines(ch)
		if lines < 1 {
			lines = 1
		}
		if climb <= lines {
			return Location{l.r, id, lines - climb}
		}
		climb -= lines
		last = Location{l.r, id, 0}
	}
	return last
}

// rebind attaches the location to another renderer, used when the frontend
// re-wraps a window into a resized viewport.
func (l Location) rebind(r *Renderer) Location {
	return Location{r, l.Anchor, l.Offset}
}
