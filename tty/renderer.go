// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tty/renderer.go
// Summary: The viewport: owns a screen sub-region, paints a window's
// content through the layout engine, and keeps the cursor visible.
// Usage: Created and resized only by the Frontend; windows reach their
// viewport through SetRenderer to drive scrolling.

package tty

import (
	"log"

	"github.com/murmurchat/murmur/chunk"
)

// Renderer owns a horizontal band of the terminal and exactly one Window.
// head is the content position painted at the top-left of the band, sill
// the position of the last painted line.
type Renderer struct {
	fe  *Frontend
	win Window

	y      int
	width  int
	height int

	headSet bool
	head    Location
	sill    Location

	cursorSet bool
	cursorRow int
	cursorCol int
}

func newRenderer(fe *Frontend, win Window, y, height int) *Renderer {
	return &Renderer{fe: fe, win: win, y: y, width: fe.maxx, height: height}
}

// Window returns the window this viewport paints.
func (r *Renderer) Window() Window { return r.win }

// Height returns the viewport's row count.
func (r *Renderer) Height() int { return r.height }

// Width returns the viewport's paint width.
func (r *Renderer) Width() int { return r.width }

// Head returns the content position at the top of the viewport.
func (r *Renderer) Head() Location { return r.head }

// Sill returns the content position of the last painted line.
func (r *Renderer) Sill() Location { return r.sill }

func (r *Renderer) active() bool {
	return r.fe.focusedRenderer() == r
}

// span is one identically-tagged run of text on a display line.
type span struct {
	tags chunk.TagSet
	text string
}

// screenLine is one fully laid-out display line of a chunk.
type screenLine struct {
	spans     []span
	visible   bool
	cursorCol int
}

// layoutChunk runs a chunk through the layout engine and assembles the
// per-line spans, noting which line carries the visible tag and where the
// hardware cursor belongs.
func (r *Renderer) layoutChunk(ch chunk.Chunk) []screenLine {
	var lines []screenLine
	cur := screenLine{cursorCol: -1}
	remaining := StartFresh

	flush := func() {
		lines = append(lines, cur)
		cur = screenLine{cursorCol: -1}
		remaining = StartFresh
	}

	for _, seg := range ch {
		if seg.Tags.Has(chunk.Visible) {
			cur.visible = true
		}
		if seg.Tags.Has(chunk.Cursor) && cur.cursorCol < 0 {
			if remaining > 0 {
				cur.cursorCol = r.width - remaining
			} else {
				cur.cursorCol = 0
			}
		}
		for _, p := range LayoutLine(seg.Text, r.width, remaining, seg.Tags) {
			if p.Text != "" {
				cur.spans = append(cur.spans, span{seg.Tags, p.Text})
			}
			if p.Remaining == BreakLine || p.Remaining == 0 {
				flush()
			} else {
				remaining = p.Remaining
			}
		}
	}
	if len(cur.spans) > 0 || cur.visible || cur.cursorCol >= 0 {
		flush()
	}
	return lines
}

// chunkLines counts the display lines a chunk occupies at this viewport's
// width. Location arithmetic and reframing both depend on this agreeing
// exactly with what redisplay paints.
func (r *Renderer) chunkLines(ch chunk.Chunk) int {
	return len(r.layoutChunk(ch))
}

// linesAboveCursor counts the display lines of the cursor item that
// precede its visible tag. They belong above the cursor's own line when
// budgeting a reframe.
func (r *Renderer) linesAboveCursor(ch chunk.Chunk) int {
	lines := r.layoutChunk(ch)
	for i, ln := range lines {
		if ln.visible {
			return i
		}
	}
	return len(lines)
}

// Reframe recomputes head so the cursor lands near the middle of the
// viewport.
func (r *Renderer) Reframe() {
	r.reframeBudget(r.height / 2)
}

// ReframeTo recomputes head so the cursor lands on screen line target;
// negative targets count from the bottom of the viewport.
func (r *Renderer) ReframeTo(target int) {
	if target >= 0 {
		r.reframeBudget(min(r.height-1, target))
	} else {
		r.reframeBudget(max(r.height+target, 0))
	}
}

// PageDown continues from where the previous page ended.
func (r *Renderer) PageDown() {
	if !r.headSet {
		r.Reframe()
		return
	}
	r.head = r.sill
	r.headSet = true
}

// PageUp reframes a page backward, keeping two lines of overlap.
func (r *Renderer) PageUp() {
	r.reframeBudget(r.height - 2 - r.head.Offset)
}

// reframeBudget walks the window's view backward from the cursor,
// spending budget display lines, and anchors head where the budget runs
// out. Reaching the top of the stream clamps.
func (r *Renderer) reframeBudget(budget int) {
	cursor := r.win.Cursor()
	head := Location{r: r, Anchor: cursor}
	remaining := budget
	first := true
	for id, ch := range r.win.View(cursor, false) {
		var lines int
		if first && id == cursor {
			lines = r.linesAboveCursor(ch)
		} else {
			lines = r.chunkLines(ch)
		}
		first = false
		remaining -= lines
		head = Location{r: r, Anchor: id}
		if remaining <= 0 {
			head.Offset = -remaining
			break
		}
	}
	r.head = head
	r.headSet = true
}

// Redisplay paints the viewport, reframing as needed to bring the cursor
// into view. The cascade tries a directed reframe, then a centered one;
// if the cursor still is not visible the last paint stands and the
// failure is logged.
func (r *Renderer) Redisplay() {
	if !r.headSet {
		r.Reframe()
	}
	if r.redisplayInternal() {
		return
	}
	if r.win.Cursor().Less(r.head.Anchor) {
		r.ReframeTo(0)
	} else {
		r.ReframeTo(-1)
	}
	if r.redisplayInternal() {
		return
	}
	r.Reframe()
	if !r.redisplayInternal() {
		log.Printf("renderer: window %s cursor %s not visible after reframe cascade, head %s",
			r.win.ID(), r.win.Cursor(), r.head)
	}
}

// redisplayInternal paints from head until the row budget runs out and
// reports whether the line carrying the visible tag was painted.
func (r *Renderer) redisplayInternal() bool {
	r.clear()
	r.cursorSet = false

	rows := 0
	visible := false
	firstItem := true
	last := r.head
	for id, ch := range r.win.View(r.head.Anchor, true) {
		start := 0
		if firstItem {
			if id == r.head.Anchor {
				start = r.head.Offset
			} else {
				// head's anchor fell out of the stream; re-anchor
				r.head = Location{r: r, Anchor: id}
			}
			firstItem = false
		}
		lines := r.layoutChunk(ch)
		for li := start; li < len(lines) && rows < r.height; li++ {
			ln := lines[li]
			r.paintLine(rows, ln)
			if ln.visible {
				visible = true
			}
			if ln.cursorCol >= 0 {
				r.cursorSet = true
				r.cursorRow = r.y + rows
				r.cursorCol = ln.cursorCol
			}
			last = Location{r: r, Anchor: id, Offset: li}
			rows++
		}
		if rows >= r.height {
			break
		}
	}
	r.sill = last
	return visible
}

func (r *Renderer) clear() {
	st := r.fe.styleFor(chunk.TagSet{}, false)
	for row := range r.height {
		for col := range r.width {
			r.fe.driver.SetContent(col, r.y+row, ' ', nil, st)
		}
	}
}

func (r *Renderer) paintLine(row int, ln screenLine) {
	active := r.active()
	col := 0
	for _, sp := range ln.spans {
		st := r.fe.styleFor(sp.tags, active)
		if sp.tags.Has(chunk.Right) {
			if c := r.width - textWidth(sp.text); c > col {
				col = c
			}
		}
		lastCol := -1
		var primary rune
		var combs []rune
		for _, c := range sp.text {
			w := cellWidth(c)
			if w == 0 {
				// combining characters ride on the previous cell
				if lastCol >= 0 {
					combs = append(combs, c)
					r.fe.driver.SetContent(lastCol, r.y+row, primary, combs, st)
				}
				continue
			}
			if col >= r.width {
				break
			}
			r.fe.driver.SetContent(col, r.y+row, c, nil, st)
			lastCol, primary, combs = col, c, nil
			col += w
		}
	}
}

// PlaceCursor parks or hides the hardware cursor after all viewports have
// painted. Only the focused viewport's request takes effect; the Frontend
// calls it exactly once per redisplay.
func (r *Renderer) PlaceCursor() {
	if r.cursorSet {
		r.fe.driver.ShowCursor(r.cursorCol, r.cursorRow)
	} else {
		r.fe.driver.HideCursor()
	}
}

// setGeometry moves and resizes the viewport, dropping the frame so the
// next redisplay reframes around the cursor.
func (r *Renderer) setGeometry(y, height, width int) {
	if width != r.width {
		r.headSet = false
	}
	r.y = y
	r.height = height
	r.width = width
	r.head = r.head.rebind(r)
	r.sill = r.sill.rebind(r)
}
