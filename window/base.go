// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: window/base.go
// Summary: Shared window plumbing: the input dispatcher, the binding
// table, and prompt injection.
// Usage: Concrete windows embed Base and register Bindings at
// construction; Base walks the keymap trie and invokes bound actions.

package window

import (
	"fmt"
	"log"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/murmurchat/murmur/keymap"
	"github.com/murmurchat/murmur/task"
	"github.com/murmurchat/murmur/tty"
)

// Action is a command bound in a window's keymap. It receives the
// keystroke that completed the sequence and the repeat count (1 unless a
// Control-U prefix supplied one); a returned error is surfaced as a
// whine, never propagated.
type Action func(ks keymap.Keystroke, count int) error

// Binding declares one key sequence and the action it runs. Windows
// assemble their keymaps from explicit tables of these.
type Binding struct {
	Seq  string
	Name string
	Do   Action
}

// Base carries the state every window shares: identity, the keymap and
// the dispatcher's position in it, the attached viewport, and teardown
// bookkeeping.
type Base struct {
	fe *tty.Frontend
	id uuid.UUID

	km     *keymap.Keymap
	active *keymap.Keymap

	r *tty.Renderer

	// Control-U prefix state: counting while a repeat count is being
	// entered, digits once an explicit number replaced the default.
	counting bool
	digits   bool
	count    int

	destroyed bool
	teardown  []func()
}

func newBase(fe *tty.Frontend) Base {
	return Base{fe: fe, id: uuid.New(), km: keymap.New()}
}

// BuildKeymap installs bindings into the window's keymap. A malformed
// sequence spec fails the whole table; untypable specs are skipped by the
// compiler.
func (b *Base) BuildKeymap(bindings []Binding) error {
	for _, bind := range bindings {
		if err := b.km.Bind(bind.Seq, bind.Do); err != nil {
			return fmt.Errorf("binding %q to %s: %w", bind.Seq, bind.Name, err)
		}
	}
	return nil
}

// Rebind applies configured sequence overrides onto the keymap, looking
// actions up in table by command name.
func (b *Base) Rebind(overrides map[string]string, table []Binding) error {
	byName := make(map[string]Action, len(table))
	for _, bind := range table {
		byName[bind.Name] = bind.Do
	}
	for seq, name := range overrides {
		act, ok := byName[name]
		if !ok {
			return fmt.Errorf("rebinding %q: unknown command %q", seq, name)
		}
		if err := b.km.Bind(seq, act); err != nil {
			return fmt.Errorf("rebinding %q to %s: %w", seq, name, err)
		}
	}
	return nil
}

// Keymap exposes the root keymap for window-local rebinding.
func (b *Base) Keymap() *keymap.Keymap { return b.km }

func (b *Base) ID() uuid.UUID { return b.id }

func (b *Base) SetRenderer(r *tty.Renderer) { b.r = r }

// Renderer returns the live viewport, or nil when detached.
func (b *Base) Renderer() *tty.Renderer { return b.r }

// Frontend returns the owning frontend.
func (b *Base) Frontend() *tty.Frontend { return b.fe }

func (b *Base) Focus() {}

func (b *Base) WantsRedisplay(h tty.Hint) bool {
	return h.Zero() || h.Window == b.id
}

// Destroy runs the window's teardown hooks exactly once.
func (b *Base) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	for _, f := range b.teardown {
		f()
	}
}

// OnDestroy registers a teardown hook.
func (b *Base) OnDestroy(f func()) {
	b.teardown = append(b.teardown, f)
}

// HandleKey advances the dispatcher by one keystroke. An unbound key
// resets the sequence and whines; a sub-map advances the sequence; a leaf
// resets the sequence before invoking the action so the action's own
// suspensions cannot be mistaken for pending sequence state. A Control-U
// prefix starts a repeat count (Control-U alone means 4, repeated
// Control-U multiplies, digits entered after it set the count exactly)
// handed to the action that ends the prefix.
func (b *Base) HandleKey(ks keymap.Keystroke) {
	if b.counting && b.active == nil {
		if ks.Key == tcell.KeyCtrlU {
			if !b.digits {
				b.count *= 4
			}
			return
		}
		if ks.Key == tcell.KeyRune && ks.Ch >= '0' && ks.Ch <= '9' {
			if !b.digits {
				b.digits, b.count = true, 0
			}
			b.count = b.count*10 + int(ks.Ch-'0')
			return
		}
	}

	km := b.active
	if km == nil {
		km = b.km
	}
	v, ok := km.Get(ks)
	if !ok {
		// an unbound Control-U at sequence start begins a repeat count;
		// windows that bind it keep their own meaning
		if b.active == nil && ks.Key == tcell.KeyCtrlU {
			b.counting, b.digits, b.count = true, false, 4
			return
		}
		b.active = nil
		b.counting = false
		b.fe.Notify()
		return
	}
	switch v := v.(type) {
	case *keymap.Keymap:
		b.active = v
	case Action:
		b.active = nil
		count := 1
		if b.counting {
			count = b.count
			b.counting = false
		}
		b.invoke(v, ks, count)
	default:
		b.active = nil
		b.counting = false
		log.Printf("window %s: %q bound to unexpected %T", b.id, ks, v)
		b.fe.Notify()
	}
}

// invoke runs an action, catching both returned errors and panics at the
// dispatcher boundary.
func (b *Base) invoke(act Action, ks keymap.Keystroke, count int) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("window %s: action panicked on %q: %v\n%s",
				b.id, ks, p, debug.Stack())
			b.fe.Whine(fmt.Sprint(p))
		}
	}()
	if err := act(ks, count); err != nil {
		b.fe.Whine(err.Error())
	}
}

// ReadString pushes a one-line prompt popup and returns the result slot
// it will settle. The slot aborts if the popup is torn down first; the
// caller waits on it from a goroutine and re-enters through
// Frontend.Call.
func (b *Base) ReadString(prompt string) *task.Result[string] {
	res := task.NewResult[string]()
	p := NewPrompt(b.fe, prompt, res)
	b.fe.PopupWindow(p, 1, true)
	return res
}

// stackBindings are the window-management sequences every window gets.
// clone supplies the window pushed by the split command; nil disables
// splitting for that window.
func (b *Base) stackBindings(clone func() tty.Window) []Binding {
	return []Binding{
		{"Control-X 2", "split-window", func(keymap.Keystroke, int) error {
			if clone == nil {
				return fmt.Errorf("this window cannot split")
			}
			return b.fe.SplitWindow(clone())
		}},
		{"Control-X 0", "delete-window", func(keymap.Keystroke, int) error {
			return b.fe.DeleteCurrentWindow()
		}},
		{"Control-X 1", "delete-other-windows", func(keymap.Keystroke, int) error {
			b.fe.DeleteOtherWindows()
			return nil
		}},
		{"Control-X o", "other-window", func(_ keymap.Keystroke, count int) error {
			b.fe.SwitchWindow(count)
			return nil
		}},
		{"Control-X Control-C", "quit", func(keymap.Keystroke, int) error {
			b.fe.Quit()
			return nil
		}},
	}
}
