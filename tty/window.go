// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tty/window.go
// Summary: The contract a window satisfies toward the rendering core.

package tty

import (
	"iter"

	"github.com/google/uuid"

	"github.com/murmurchat/murmur/chunk"
	"github.com/murmurchat/murmur/keymap"
	"github.com/murmurchat/murmur/store"
)

// Hint scopes a redisplay to the viewports that care. The zero Hint
// repaints everything.
type Hint struct {
	Window uuid.UUID
}

// Zero reports whether the hint is unscoped.
func (h Hint) Zero() bool {
	return h.Window == uuid.Nil
}

// Window is what the rendering core requires of a window: an identity, a
// pull-based view of its content, a logical cursor, and key/lifecycle
// entry points. Concrete windows live outside this package.
type Window interface {
	ID() uuid.UUID

	// View yields (anchor, chunk) pairs starting at origin, moving
	// forward or backward. The sequence is lazy and restartable; the
	// stream-end sentinels store.First and store.Omega are valid origins.
	View(origin store.ID, forward bool) iter.Seq2[store.ID, chunk.Chunk]

	// Cursor is the anchor of the logically selected content item.
	Cursor() store.ID

	// HandleKey feeds one normalized keystroke to the window's input
	// dispatcher.
	HandleKey(ks keymap.Keystroke)

	// SetRenderer attaches or detaches (nil) the live viewport. A window
	// has at most one live viewport at a time; the frontend enforces it.
	SetRenderer(r *Renderer)

	// Focus tells the window it became the focused one.
	Focus()

	// Destroy is called exactly once when the window leaves the stack.
	Destroy()

	// WantsRedisplay reports whether a scoped redisplay hint covers this
	// window.
	WantsRedisplay(h Hint) bool
}
