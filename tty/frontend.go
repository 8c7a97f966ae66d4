// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tty/frontend.go
// Summary: The terminal frontend: window stack, popup overlays, the
// cooperative event loop, and redisplay scheduling.
// Usage: Create with New, seed with Initial, then Run. All window-stack
// mutation happens on the Run goroutine; background work re-enters
// through Call.

package tty

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/murmurchat/murmur/keymap"
)

var (
	ErrTooSmall   = errors.New("window too small to split")
	ErrLastWindow = errors.New("attempt to delete only window")
)

// redrawInterval paces paint flushes when redisplay requests arrive from
// background completions.
const redrawInterval = 16 * time.Millisecond

type popEntry struct {
	win    Window
	height int
}

// Frontend owns the terminal. It keeps the window stack (viewports
// partitioning the screen height), the popup overlay stack, the focused
// index, and the style cache. Everything here runs on the Run goroutine.
type Frontend struct {
	driver     Driver
	colors     ColorAssigner
	styleCache map[styleKey]tcell.Style

	maxy, maxx int

	windows  []*Renderer
	output   int
	popstack []popEntry

	dirty   bool
	pending Hint

	refreshCh chan struct{}
	callCh    chan func()
	quitCh    chan struct{}
	quitOnce  sync.Once
}

// New wraps a terminal driver. Initial must be called before Run.
func New(driver Driver, colors ColorAssigner) *Frontend {
	return &Frontend{
		driver:     driver,
		colors:     colors,
		styleCache: make(map[styleKey]tcell.Style),
		refreshCh:  make(chan struct{}, 1),
		callCh:     make(chan func(), 8),
		quitCh:     make(chan struct{}),
	}
}

// Initial initializes the terminal and fills it with one window.
func (fe *Frontend) Initial(win Window) error {
	if len(fe.windows) > 0 {
		return errors.New("frontend already has windows")
	}
	if err := fe.driver.Init(); err != nil {
		return err
	}
	fe.driver.SetStyle(tcell.StyleDefault)
	fe.maxx, fe.maxy = fe.driver.Size()
	r := newRenderer(fe, win, 0, fe.maxy)
	fe.windows = []*Renderer{r}
	fe.output = 0
	win.SetRenderer(r)
	win.Focus()
	fe.paint(Hint{})
	return nil
}

// Close tears down the terminal. Safe after Quit.
func (fe *Frontend) Close() {
	fe.Quit()
	fe.driver.Fini()
}

// Quit makes Run return.
func (fe *Frontend) Quit() {
	fe.quitOnce.Do(func() { close(fe.quitCh) })
}

// Call schedules f onto the Run goroutine. Background completions use it
// to mutate windows without racing the dispatcher.
func (fe *Frontend) Call(f func()) {
	select {
	case fe.callCh <- f:
	case <-fe.quitCh:
	}
}

// Run drives the cooperative loop: terminal events, resize signals,
// scheduled calls, and paced repaints, all on one goroutine.
func (fe *Frontend) Run() {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := fe.driver.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-fe.quitCh:
				return
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGWINCH)
	defer signal.Stop(sig)

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	for {
		select {
		case <-fe.quitCh:
			return
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				fe.HandleKey(ev)
			case *tcell.EventResize:
				w, h := ev.Size()
				fe.Resize(h, w)
				fe.flush()
			}
		case <-sig:
			// tcell turns the actual resize into an EventResize; the
			// signal only forces a full terminal resync.
			fe.driver.Sync()
		case f := <-fe.callCh:
			f()
			fe.flush()
		case <-fe.refreshCh:
			fe.flush()
		case <-ticker.C:
			fe.flush()
		}
	}
}

// HandleKey feeds one terminal key event to the focused window and
// repaints. A key that changed the window stack forces a full repaint,
// anything else repaints only the focused window's viewport.
func (fe *Frontend) HandleKey(ev *tcell.EventKey) {
	if len(fe.windows) == 0 {
		return
	}
	ks := keymap.FromEvent(ev)
	nwin, active := len(fe.windows), fe.output
	win := fe.windows[fe.output].win
	if ev.Modifiers()&tcell.ModAlt != 0 {
		// Alt arrives as a modifier; the keymaps speak ESC-prefix
		win.HandleKey(keymap.Char(0x1b))
	}
	win.HandleKey(ks)
	if len(fe.windows) != nwin || fe.output != active {
		fe.Redisplay(Hint{})
	} else {
		fe.Redisplay(Hint{Window: win.ID()})
	}
	fe.flush()
}

// Redisplay requests a repaint. A zero hint repaints every viewport;
// requests with different hints collapse into a full repaint.
func (fe *Frontend) Redisplay(hint Hint) {
	if fe.dirty {
		if fe.pending != hint {
			fe.pending = Hint{}
		}
	} else {
		fe.dirty = true
		fe.pending = hint
	}
	select {
	case fe.refreshCh <- struct{}{}:
	default:
	}
}

func (fe *Frontend) flush() {
	if !fe.dirty {
		return
	}
	hint := fe.pending
	fe.dirty = false
	fe.pending = Hint{}
	fe.paint(hint)
}

func (fe *Frontend) paint(hint Hint) {
	fe.colors.Reset()
	for _, r := range fe.windows {
		if hint.Zero() || r.win.WantsRedisplay(hint) {
			r.Redisplay()
		}
	}
	if fr := fe.focusedRenderer(); fr != nil {
		fr.PlaceCursor()
	}
	fe.driver.Show()
}

func (fe *Frontend) focusedRenderer() *Renderer {
	if fe.output < 0 || fe.output >= len(fe.windows) {
		return nil
	}
	return fe.windows[fe.output]
}

// Focused returns the focused window.
func (fe *Frontend) Focused() Window {
	if r := fe.focusedRenderer(); r != nil {
		return r.win
	}
	return nil
}

// Whine surfaces a non-fatal complaint: logged, then beeped.
func (fe *Frontend) Whine(msg string) {
	if msg != "" {
		log.Printf("whine: %s", msg)
	}
	fe.driver.Beep()
}

// Notify beeps without a message, for unbound keys.
func (fe *Frontend) Notify() {
	fe.driver.Beep()
}

// SplitWindow halves the focused viewport and slides new into the freed
// bottom half. Focus stays put; only the new window is hinted dirty.
func (fe *Frontend) SplitWindow(new Window) error {
	r := fe.windows[fe.output]
	nh := r.height / 2
	if nh == 0 {
		return ErrTooSmall
	}
	nr := newRenderer(fe, new, r.y+nh, r.height-nh)
	r.setGeometry(r.y, nh, fe.maxx)
	fe.windows = append(fe.windows, nil)
	copy(fe.windows[fe.output+2:], fe.windows[fe.output+1:])
	fe.windows[fe.output+1] = nr
	new.SetRenderer(nr)
	fe.Redisplay(Hint{Window: new.ID()})
	return nil
}

// DeleteWindow removes the nth viewport, folding its rows into the
// neighbor above (below when n is 0) and running the window's teardown.
func (fe *Frontend) DeleteWindow(n int) error {
	if len(fe.windows) == 1 {
		return ErrLastWindow
	}
	victim := fe.windows[n]
	fe.windows = append(fe.windows[:n], fe.windows[n+1:]...)
	fe.dropPopups(victim.win)
	victim.win.SetRenderer(nil)
	victim.win.Destroy()

	if n == 0 {
		u := fe.windows[0]
		u.setGeometry(0, victim.height+u.height, fe.maxx)
	} else {
		u := fe.windows[n-1]
		u.setGeometry(u.y, victim.height+u.height, fe.maxx)
	}

	was := fe.Focused()
	if fe.output >= n && fe.output > 0 {
		fe.output--
	}
	if fe.output >= len(fe.windows) {
		fe.output = len(fe.windows) - 1
	}
	if now := fe.Focused(); now != was && now != nil {
		now.Focus()
	}
	fe.Redisplay(Hint{})
	return nil
}

// DeleteCurrentWindow removes the focused viewport.
func (fe *Frontend) DeleteCurrentWindow() error {
	return fe.DeleteWindow(fe.output)
}

// DeleteOtherWindows removes every viewport but the focused one.
func (fe *Frontend) DeleteOtherWindows() {
	for len(fe.windows) > 1 {
		n := 0
		if fe.output == 0 {
			n = 1
		}
		if err := fe.DeleteWindow(n); err != nil {
			return
		}
	}
}

// PopupWindow overlays new over the bottom of the screen. If the bottom
// viewport is already the top of the popup stack the new window replaces
// it in place; otherwise the bottom viewport shrinks by height rows to
// make room. A bottom viewport too small to shrink is covered whole and
// remembered for restoration.
func (fe *Frontend) PopupWindow(new Window, height int, sel bool) {
	bottom := len(fe.windows) - 1
	r := fe.windows[bottom]

	if r.height <= height && !fe.topPopupIs(r.win) {
		fe.popstack = append(fe.popstack, popEntry{r.win, r.height})
	}

	if fe.topPopupIs(r.win) {
		fe.popstack[len(fe.popstack)-1].height = r.height
		nr := newRenderer(fe, new, r.y, r.height)
		r.win.SetRenderer(nil)
		fe.windows[bottom] = nr
		new.SetRenderer(nr)
	} else {
		oldY, oldH := r.y, r.height
		r.setGeometry(oldY, oldH-height, fe.maxx)
		nr := newRenderer(fe, new, oldY+oldH-height, height)
		fe.windows = append(fe.windows, nr)
		new.SetRenderer(nr)
	}

	fe.popstack = append(fe.popstack, popEntry{new, height})
	if sel {
		fe.output = len(fe.windows) - 1
		new.Focus()
	}
	fe.Redisplay(Hint{})
}

// PopdownWindow dismisses the top popup, restoring the one under it at
// its remembered height or folding the rows back into the neighbor.
func (fe *Frontend) PopdownWindow() {
	if len(fe.popstack) == 0 {
		return
	}
	entry := fe.popstack[len(fe.popstack)-1]
	fe.popstack = fe.popstack[:len(fe.popstack)-1]

	victim := fe.windows[len(fe.windows)-1]
	fe.windows = fe.windows[:len(fe.windows)-1]
	victim.win.SetRenderer(nil)
	entry.win.Destroy()

	if len(fe.windows) == 0 {
		// the popup had covered the whole screen; whatever is under it
		// gets the screen back
		if len(fe.popstack) == 0 {
			fe.Quit()
			return
		}
		next := fe.popstack[len(fe.popstack)-1]
		nr := newRenderer(fe, next.win, 0, fe.maxy)
		fe.windows = []*Renderer{nr}
		next.win.SetRenderer(nr)
		fe.output = 0
		next.win.Focus()
		fe.Redisplay(Hint{})
		return
	}

	adj := fe.windows[len(fe.windows)-1]
	if len(fe.popstack) > 0 {
		next := fe.popstack[len(fe.popstack)-1]
		dh := next.height - victim.height
		adj.setGeometry(adj.y, adj.height-dh, fe.maxx)
		nr := newRenderer(fe, next.win, victim.y-dh, next.height)
		fe.windows = append(fe.windows, nr)
		next.win.SetRenderer(nr)
	} else {
		adj.setGeometry(adj.y, adj.height+victim.height, fe.maxx)
	}

	if fe.output >= len(fe.windows) {
		fe.output = len(fe.windows) - 1
		if w := fe.Focused(); w != nil {
			w.Focus()
		}
	}
	fe.Redisplay(Hint{})
}

// SwitchWindow moves focus adj viewports down the stack, wrapping.
func (fe *Frontend) SwitchWindow(adj int) {
	n := len(fe.windows)
	fe.output = ((fe.output+adj)%n + n) % n
	fe.windows[fe.output].win.Focus()
	fe.Redisplay(Hint{})
}

// Resize relays a new terminal geometry onto the stack. When the height
// drops below the viewport count the topmost windows are evicted, oldest
// first; survivors are rescaled proportionally with the topmost viewport
// absorbing the rounding remainder.
func (fe *Frontend) Resize(maxy, maxx int) {
	if maxy < 1 || maxx < 1 || len(fe.windows) == 0 {
		return
	}
	oldy := fe.maxy
	fe.maxy, fe.maxx = maxy, maxx

	if maxy < len(fe.windows) {
		drop := len(fe.windows) - maxy
		fe.output -= drop
		if fe.output < 0 {
			fe.output = 0
		}
		orphans := fe.windows[:drop]
		fe.windows = fe.windows[drop:]
		for _, v := range orphans {
			fe.dropPopups(v.win)
			v.win.SetRenderer(nil)
			v.win.Destroy()
		}
	}

	remaining := maxy
	for i := len(fe.windows) - 1; i >= 1; i-- {
		nh := max(1, fe.windows[i].height*maxy/oldy)
		// leave at least one row per viewport above
		if nh > remaining-i {
			nh = remaining - i
		}
		remaining -= nh
		fe.windows[i].setGeometry(remaining, nh, fe.maxx)
	}
	fe.windows[0].setGeometry(0, remaining, fe.maxx)
	fe.Redisplay(Hint{})
}

// topPopupIs reports whether win is the top of the popup stack.
func (fe *Frontend) topPopupIs(win Window) bool {
	if len(fe.popstack) == 0 {
		return false
	}
	return fe.popstack[len(fe.popstack)-1].win.ID() == win.ID()
}

// dropPopups removes every popup-stack entry belonging to win.
func (fe *Frontend) dropPopups(win Window) {
	out := fe.popstack[:0]
	for _, e := range fe.popstack {
		if e.win.ID() != win.ID() {
			out = append(out, e)
		}
	}
	fe.popstack = out
}
