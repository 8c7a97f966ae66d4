package tty

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/murmurchat/murmur/chunk"
)

func collect(t *testing.T, s string, width, remaining int, tags chunk.TagSet) []Piece {
	t.Helper()
	return LayoutLine(s, width, remaining, tags)
}

func TestLayoutNewlineBeforeWidth(t *testing.T) {
	pieces := collect(t, "hello\n", 10, StartFresh, chunk.TagSet{})
	if len(pieces) != 1 || pieces[0] != (Piece{"hello", BreakLine}) {
		t.Fatalf("pieces = %v", pieces)
	}
}

func TestLayoutNewlineAtExactWidth(t *testing.T) {
	pieces := collect(t, "abcde\n", 5, StartFresh, chunk.TagSet{})
	if len(pieces) != 1 || pieces[0] != (Piece{"abcde", 0}) {
		t.Fatalf("pieces = %v", pieces)
	}
}

func TestLayoutOverflowBreaks(t *testing.T) {
	pieces := collect(t, "abcdef", 5, StartFresh, chunk.TagSet{})
	want := []Piece{{"abcde", 0}, {"f", 4}}
	if len(pieces) != 2 || pieces[0] != want[0] || pieces[1] != want[1] {
		t.Fatalf("pieces = %v, want %v", pieces, want)
	}
}

func TestLayoutTabExpansion(t *testing.T) {
	pieces := collect(t, "a\tb", 16, StartFresh, chunk.TagSet{})
	if len(pieces) != 1 {
		t.Fatalf("pieces = %v", pieces)
	}
	if pieces[0].Text != "a       b" {
		t.Fatalf("tab expanded to %q", pieces[0].Text)
	}
	if pieces[0].Remaining != 16-9 {
		t.Fatalf("remaining = %d, want 7", pieces[0].Remaining)
	}
}

func TestLayoutWideRunes(t *testing.T) {
	pieces := collect(t, "你好", 3, StartFresh, chunk.TagSet{})
	want := []Piece{{"你", 0}, {"好", 1}}
	if len(pieces) != 2 || pieces[0] != want[0] || pieces[1] != want[1] {
		t.Fatalf("pieces = %v, want %v", pieces, want)
	}
}

func TestLayoutContinuesPartialLine(t *testing.T) {
	// remaining 3 on a width-10 line means the text starts at column 7
	pieces := collect(t, "abcdef", 10, 3, chunk.TagSet{})
	want := []Piece{{"abc", 0}, {"def", 7}}
	if len(pieces) != 2 || pieces[0] != want[0] || pieces[1] != want[1] {
		t.Fatalf("pieces = %v, want %v", pieces, want)
	}
}

func TestLayoutRightReservesLine(t *testing.T) {
	// a right-justified field that does not fit beside existing text
	// gets the whole next line to itself
	pieces := collect(t, "longtext", 10, 4, chunk.TagSet{Attrs: chunk.Right})
	if len(pieces) != 2 {
		t.Fatalf("pieces = %v", pieces)
	}
	if pieces[0] != (Piece{"", BreakLine}) {
		t.Fatalf("pieces[0] = %v, want empty break", pieces[0])
	}
	if pieces[1].Text != "longtext" {
		t.Fatalf("pieces[1] = %v", pieces[1])
	}
}

func TestLayoutControlCharsSkipped(t *testing.T) {
	pieces := collect(t, "a\x01b\x02c", 10, StartFresh, chunk.TagSet{})
	if len(pieces) != 1 || pieces[0].Text != "abc" {
		t.Fatalf("pieces = %v", pieces)
	}
}

func TestLayoutFillWraps(t *testing.T) {
	pieces := collect(t, "one two three four\n", 10, StartFresh, chunk.TagSet{Attrs: chunk.Fill})
	var lines []string
	for _, p := range pieces {
		lines = append(lines, p.Text)
	}
	got := strings.Join(lines, "|")
	if got != "one two|three four" {
		t.Fatalf("fill wrapped to %q", got)
	}
	for _, p := range pieces {
		if textWidth(p.Text) > 10 {
			t.Fatalf("line %q exceeds width", p.Text)
		}
	}
}

func TestLayoutFillCollapsesWhitespace(t *testing.T) {
	pieces := collect(t, "a\n   b\tc\n", 40, StartFresh, chunk.TagSet{Attrs: chunk.Fill})
	if len(pieces) != 1 || pieces[0].Text != "a b c" {
		t.Fatalf("pieces = %v", pieces)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		width := rapid.IntRange(1, 40).Draw(t, "width")
		text := rapid.StringOfN(rapid.RuneFrom([]rune("abcdefgh XYZ.,")), 0, 200, -1).Draw(t, "text")

		first := LayoutLine(text, width, StartFresh, chunk.TagSet{})
		second := LayoutLine(text, width, StartFresh, chunk.TagSet{})
		if len(first) != len(second) {
			t.Fatalf("nondeterministic piece count: %d vs %d", len(first), len(second))
		}
		var rebuilt strings.Builder
		for i, p := range first {
			if p != second[i] {
				t.Fatalf("nondeterministic piece %d: %v vs %v", i, p, second[i])
			}
			if textWidth(p.Text) > width {
				t.Fatalf("piece %q wider than %d", p.Text, width)
			}
			rebuilt.WriteString(p.Text)
		}
		if rebuilt.String() != text {
			t.Fatalf("pieces %v do not reassemble %q", first, text)
		}
	})
}
