// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tty/color.go
// Summary: Color assignment and the style cache.
// Usage: The renderer resolves chunk tags to tcell styles through the
// frontend's assigner; unfocused standout is dimmed here.

package tty

import (
	"github.com/gdamore/tcell/v2"

	"github.com/murmurchat/murmur/chunk"
)

// ColorAssigner resolves symbolic color names to terminal colors. It is a
// collaborator of the rendering core; palette policy lives outside it.
type ColorAssigner interface {
	// Lookup maps a color name ("red", "#ff8800") to a terminal color.
	// Unknown names and the empty name map to the terminal default.
	Lookup(name string) tcell.Color
	// Dim returns the name of a dimmer variant of the named color, used
	// for standout segments in unfocused viewports.
	Dim(name string) string
	// Reset is called once per full redisplay, before any viewport
	// paints, so assigners with finite palette slots can recycle them.
	Reset()
}

// StaticAssigner resolves W3C color names and #rrggbb forms through tcell
// and dims by halving the channels.
type StaticAssigner struct{}

func (StaticAssigner) Lookup(name string) tcell.Color {
	if name == "" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return tcell.ColorDefault
	}
	return c
}

func (StaticAssigner) Dim(name string) string {
	if name == "" {
		return "gray"
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return "gray"
	}
	r, g, b := c.TrueColor().RGB()
	return tcell.NewRGBColor(r/2, g/2, b/2).CSS()
}

func (StaticAssigner) Reset() {}

// NoColorAssigner is the assigner for monochrome terminals.
type NoColorAssigner struct{}

func (NoColorAssigner) Lookup(string) tcell.Color { return tcell.ColorDefault }
func (NoColorAssigner) Dim(name string) string    { return name }
func (NoColorAssigner) Reset()                    {}

type styleKey struct {
	attrs  chunk.Attr
	fg, bg string
	active bool
}

// styleFor computes the tcell style for a tag set. Standout gains bold on
// the focused viewport and a dimmed foreground otherwise.
func (fe *Frontend) styleFor(tags chunk.TagSet, active bool) tcell.Style {
	key := styleKey{attrs: tags.Attrs, fg: tags.Fg, bg: tags.Bg, active: active}
	if st, ok := fe.styleCache[key]; ok {
		return st
	}

	fg := tags.Fg
	if tags.Has(chunk.Standout) && !active {
		fg = fe.colors.Dim(fg)
	}
	st := tcell.StyleDefault.
		Foreground(fe.colors.Lookup(fg)).
		Background(fe.colors.Lookup(tags.Bg))
	if tags.Has(chunk.Bold) {
		st = st.Bold(true)
	}
	if tags.Has(chunk.Reverse) {
		st = st.Reverse(true)
	}
	if tags.Has(chunk.Standout) {
		st = st.Reverse(true)
		if active {
			st = st.Bold(true)
		}
	}
	fe.styleCache[key] = st
	return st
}
