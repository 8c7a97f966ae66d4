// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tty/driver.go
// Summary: The terminal control surface the frontend drives.
// Usage: Satisfied by tcell.Screen in production and by the simulation
// screen in tests.

package tty

import "github.com/gdamore/tcell/v2"

// Driver is the slice of tcell.Screen the rendering core needs: region
// painting, cursor control, size, events. Everything else tcell offers is
// deliberately out of reach of the core.
type Driver interface {
	Init() error
	Fini()
	Size() (int, int)
	SetStyle(style tcell.Style)
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	ShowCursor(x, y int)
	HideCursor()
	Show()
	Sync()
	Beep() error
	PollEvent() tcell.Event
}
