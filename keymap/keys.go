// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: keymap/keys.go
// Summary: Normalized keystrokes and the symbolic key name tables.

package keymap

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/unicode/runenames"
)

// Keystroke is one normalized input symbol. Printable runes use
// Key == tcell.KeyRune with Ch set; control characters and function keys
// use the tcell key code with Ch zero, so Control-X and the byte 0x18
// index identically.
type Keystroke struct {
	Key tcell.Key
	Ch  rune
}

// Char returns the keystroke for a single character, folding control
// characters (below space, and DEL) into key codes.
func Char(r rune) Keystroke {
	if r < ' ' || r == 0x7f {
		return Keystroke{Key: tcell.Key(r)}
	}
	return Keystroke{Key: tcell.KeyRune, Ch: r}
}

// FromEvent normalizes a tcell key event.
func FromEvent(ev *tcell.EventKey) Keystroke {
	if ev.Key() == tcell.KeyRune {
		return Char(ev.Rune())
	}
	return Keystroke{Key: ev.Key()}
}

// IsRune reports whether the keystroke is a printable character.
func (k Keystroke) IsRune() bool {
	return k.Key == tcell.KeyRune
}

func (k Keystroke) String() string {
	if k.IsRune() {
		return string(k.Ch)
	}
	if r := rune(k.Key); r < ' ' || r == 0x7f {
		if name, ok := unotherKeys[r]; ok {
			return "[" + strings.ToUpper(name) + "]"
		}
		return fmt.Sprintf("Control-%c", r+'@')
	}
	if name, ok := tcell.KeyNames[k.Key]; ok {
		return "[" + strings.ToUpper(name) + "]"
	}
	return fmt.Sprintf("[key %d]", k.Key)
}

// otherKeysSpec names the characters that have no Unicode name of their
// own in common usage; first alias is the canonical one.
var otherKeysSpec = []struct {
	names []string
	ch    rune
}{
	{[]string{"escape", "esc"}, 0x1b},
	{[]string{"delete", "del"}, 0x7f},
	{[]string{"line feed", "linefeed", "newline"}, 0x0a},
	{[]string{"carriage return", "return"}, 0x0d},
	{[]string{"tab"}, 0x09},
	{[]string{"space"}, ' '},
}

var (
	otherKeys   = map[string]rune{}
	unotherKeys = map[rune]string{}
)

func init() {
	for _, spec := range otherKeysSpec {
		for _, n := range spec.names {
			otherKeys[n] = spec.ch
		}
		unotherKeys[spec.ch] = spec.names[0]
	}
}

// namedKey resolves a bracketed symbolic name: Unicode character names
// first, then the fixed other-keys table, then the terminal's named
// function keys.
func namedKey(name string) (Keystroke, bool) {
	if r, ok := lookupRuneName(strings.ToUpper(name)); ok {
		return Char(r), true
	}
	if r, ok := otherKeys[strings.ToLower(name)]; ok {
		return Char(r), true
	}
	for key, kname := range tcell.KeyNames {
		if strings.EqualFold(kname, name) {
			return Keystroke{Key: key}, true
		}
	}
	return Keystroke{}, false
}

// keyNamesByKey looks up the terminal name of a function key.
func keyNamesByKey(k Keystroke) (string, bool) {
	name, ok := tcell.KeyNames[k.Key]
	return name, ok
}

var (
	runeNameOnce  sync.Once
	runeNameIndex map[string]rune
)

// lookupRuneName inverts runenames.Name over the first three planes, which
// cover every character a key can plausibly produce. The index is built
// once, on first use.
func lookupRuneName(name string) (rune, bool) {
	runeNameOnce.Do(func() {
		runeNameIndex = make(map[string]rune, 1<<16)
		for r := rune(0x20); r <= 0x2FFFF; r++ {
			if r >= 0xD800 && r <= 0xDFFF {
				continue
			}
			if n := runenames.Name(r); n != "" && n[0] != '<' {
				if _, dup := runeNameIndex[n]; !dup {
					runeNameIndex[n] = r
				}
			}
		}
	})
	r, ok := runeNameIndex[name]
	return r, ok
}

// runeName returns the Unicode name for a rune, used when meta bindings
// are re-encoded in bracketed-name form.
func runeName(r rune) string {
	return runenames.Name(r)
}
