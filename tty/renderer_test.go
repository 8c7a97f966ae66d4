package tty

import (
	"fmt"
	"testing"

	"github.com/murmurchat/murmur/chunk"
)

func TestChunkLines(t *testing.T) {
	win := newStubWindow("a\n")
	fe, _ := testFrontend(t, win)
	r := fe.windows[0]

	cases := []struct {
		ch   chunk.Chunk
		want int
	}{
		{chunk.Chunk{{Text: "a\n"}}, 1},
		{chunk.Chunk{{Text: "a\nb\nc\n"}}, 3},
		{chunk.Chunk{{Text: "head"}, {Text: " tail\n"}}, 1},
		{chunk.Chunk{}, 0},
	}
	for _, tc := range cases {
		if got := r.chunkLines(tc.ch); got != tc.want {
			t.Errorf("chunkLines(%v) = %d, want %d", tc.ch, got, tc.want)
		}
	}
}

func TestLayoutChunkMarksVisibleLine(t *testing.T) {
	win := newStubWindow("a\n")
	fe, _ := testFrontend(t, win)
	r := fe.windows[0]

	ch := chunk.Chunk{
		{Text: "header\n"},
		{Tags: chunk.TagSet{Attrs: chunk.Visible | chunk.Cursor}, Text: "body\n"},
	}
	lines := r.layoutChunk(ch)
	if len(lines) != 2 {
		t.Fatalf("layoutChunk produced %d lines", len(lines))
	}
	if lines[0].visible {
		t.Fatal("header line marked visible")
	}
	if !lines[1].visible {
		t.Fatal("body line not marked visible")
	}
	if lines[1].cursorCol != 0 {
		t.Fatalf("cursorCol = %d, want 0", lines[1].cursorCol)
	}
	if r.linesAboveCursor(ch) != 1 {
		t.Fatalf("linesAboveCursor = %d, want 1", r.linesAboveCursor(ch))
	}
}

func TestRedisplayPaintsFromHead(t *testing.T) {
	win := newStubWindow("alpha\n", "bravo\n", "charlie\n")
	fe, drv := testFrontend(t, win)
	r := fe.windows[0]

	r.Redisplay()
	drv.Show()

	cells, w, _ := drv.GetContents()
	if w < 5 {
		t.Fatalf("sim width %d", w)
	}
	got := ""
	for col := 0; col < 5; col++ {
		got += string(cells[col].Runes[0])
	}
	if got != "alpha" {
		t.Fatalf("top line = %q, want alpha", got)
	}
	if r.head.Anchor != win.items[0].id {
		t.Fatalf("head = %v", r.head)
	}
	if r.sill.Anchor != win.items[2].id {
		t.Fatalf("sill = %v, want last item", r.sill)
	}
	if !r.cursorSet || r.cursorRow != 0 || r.cursorCol != 0 {
		t.Fatalf("cursor at (%d,%d) set=%v", r.cursorRow, r.cursorCol, r.cursorSet)
	}
}

func TestRedisplayReframesToShowCursor(t *testing.T) {
	var bodies []string
	for i := 0; i < 60; i++ {
		bodies = append(bodies, fmt.Sprintf("line %d\n", i))
	}
	win := newStubWindow(bodies...)
	fe, _ := testFrontend(t, win)
	r := fe.windows[0]

	win.cursor = win.items[59].id
	r.Redisplay()

	if r.sill.Anchor.Less(win.cursor) {
		t.Fatalf("cursor %v not painted, sill %v", win.cursor, r.sill)
	}
	if win.cursor.Less(r.head.Anchor) {
		t.Fatalf("cursor %v above head %v", win.cursor, r.head)
	}
	if !r.cursorSet {
		t.Fatal("cursor position not recorded")
	}
}

func TestReframeBudgets(t *testing.T) {
	win := newStubWindow("a\n", "b1\nb2\n", "c1\nc2\nc3\n")
	fe, _ := testFrontend(t, win)
	r := fe.windows[0]
	win.cursor = win.items[2].id

	r.ReframeTo(0)
	if r.head != (Location{r, win.items[2].id, 0}) {
		t.Fatalf("ReframeTo(0) head = %v", r.head)
	}

	r.Reframe()
	if r.head != (Location{r, win.items[0].id, 0}) {
		t.Fatalf("centered reframe clamped head = %v", r.head)
	}

	// two lines of budget land head one line into the middle block
	r.reframeBudget(1)
	if r.head != (Location{r, win.items[1].id, 1}) {
		t.Fatalf("reframeBudget(1) head = %v", r.head)
	}
}

func TestPageDownContinuesFromSill(t *testing.T) {
	var bodies []string
	for i := 0; i < 60; i++ {
		bodies = append(bodies, fmt.Sprintf("line %d\n", i))
	}
	win := newStubWindow(bodies...)
	fe, _ := testFrontend(t, win)
	r := fe.windows[0]

	r.Redisplay()
	sill := r.sill
	r.PageDown()
	if r.head != sill {
		t.Fatalf("PageDown head = %v, want %v", r.head, sill)
	}
}

func TestCombiningCharactersRideBaseCell(t *testing.T) {
	// e + combining acute + combining ring below, then x
	win := newStubWindow("é̥x\n")
	fe, drv := testFrontend(t, win)
	fe.windows[0].Redisplay()
	drv.Show()

	cells, _, _ := drv.GetContents()
	if got := cells[0].Runes; len(got) != 3 || got[0] != 'e' || got[1] != '́' || got[2] != '̥' {
		t.Fatalf("cell 0 runes = %q, want e with both combining marks", string(got))
	}
	if cells[1].Runes[0] != 'x' {
		t.Fatalf("cell 1 = %q, want x", string(cells[1].Runes[0]))
	}
}

func TestRightJustifiedPaint(t *testing.T) {
	win := newStubWindow("x\n")
	win.items[0].ch = chunk.Chunk{
		{Text: "left"},
		{Tags: chunk.TagSet{Attrs: chunk.Right}, Text: "right"},
		{Text: "\n"},
	}
	fe, drv := testFrontend(t, win)
	fe.windows[0].Redisplay()
	drv.Show()

	cells, w, _ := drv.GetContents()
	got := ""
	for col := w - 5; col < w; col++ {
		got += string(cells[col].Runes[0])
	}
	if got != "right" {
		t.Fatalf("right edge = %q, want right", got)
	}
}
