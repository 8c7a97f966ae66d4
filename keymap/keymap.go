// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: keymap/keymap.go
// Summary: The key-sequence trie.
// Usage: One root Keymap per window; the input dispatcher walks it one
// keystroke at a time.

package keymap

import (
	"errors"
	"fmt"
)

// ErrNotKeymap is raised when a path step lands on a bound action where a
// sub-map is required.
var ErrNotKeymap = errors.New("not a keymap")

// Keymap maps normalized keystrokes to bound values. A value is either a
// nested *Keymap (a multi-keystroke sequence in progress) or an opaque
// action leaf supplied by the binder.
type Keymap struct {
	m map[Keystroke]any
}

// New returns an empty keymap.
func New() *Keymap {
	return &Keymap{m: make(map[Keystroke]any)}
}

// Copy returns a deep copy: sub-maps are value-copied so a spawned window
// can rebind locally without disturbing its prototype. Leaves are shared.
func (k *Keymap) Copy() *Keymap {
	out := New()
	for ks, v := range k.m {
		if sub, ok := v.(*Keymap); ok {
			out.m[ks] = sub.Copy()
		} else {
			out.m[ks] = v
		}
	}
	return out
}

// Len returns the number of entries at this level.
func (k *Keymap) Len() int {
	return len(k.m)
}

// Get indexes by a raw keystroke, bypassing the grammar.
func (k *Keymap) Get(ks Keystroke) (any, bool) {
	v, ok := k.m[ks]
	return v, ok
}

// Set binds a raw keystroke at this level, bypassing the grammar.
func (k *Keymap) Set(ks Keystroke, v any) {
	k.m[ks] = v
}

// Bind compiles spec and binds v at the resulting path, auto-vivifying
// intermediate sub-maps. Binding an untypable spec is a no-op. Malformed
// or unknown specs are an error.
func (k *Keymap) Bind(spec string, v any) error {
	path, err := Compile(spec)
	if err != nil {
		return err
	}
	if path == nil {
		return nil // valid but untypable
	}
	return k.bindPath(path, v)
}

func (k *Keymap) bindPath(path []Keystroke, v any) error {
	cur := k
	for _, ks := range path[:len(path)-1] {
		switch sub := cur.m[ks].(type) {
		case *Keymap:
			cur = sub
		case nil:
			next := New()
			cur.m[ks] = next
			cur = next
		default:
			return fmt.Errorf("%q %w", ks.String(), ErrNotKeymap)
		}
	}
	cur.m[path[len(path)-1]] = v
	return nil
}

// Lookup compiles spec and reads the value at the resulting path. An
// untypable spec reads as an absent binding (nil, nil). A missing entry
// reads as nil with no error, matching the dispatcher's unbound-key path.
func (k *Keymap) Lookup(spec string) (any, error) {
	path, err := Compile(spec)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, nil
	}
	cur := k
	for i, ks := range path {
		v, ok := cur.m[ks]
		if !ok {
			return nil, nil
		}
		if i == len(path)-1 {
			return v, nil
		}
		sub, ok := v.(*Keymap)
		if !ok {
			return nil, fmt.Errorf("%q %w", ks.String(), ErrNotKeymap)
		}
		cur = sub
	}
	return nil, nil
}

// Unbind compiles spec and removes the binding at the resulting path. The
// enclosing sub-maps stay, so deleting "a b" leaves "a" reading as an
// empty sub-map.
func (k *Keymap) Unbind(spec string) error {
	path, err := Compile(spec)
	if err != nil {
		return err
	}
	if path == nil {
		return nil
	}
	cur := k
	for _, ks := range path[:len(path)-1] {
		sub, ok := cur.m[ks].(*Keymap)
		if !ok {
			if _, present := cur.m[ks]; present {
				return fmt.Errorf("%q %w", ks.String(), ErrNotKeymap)
			}
			return nil
		}
		cur = sub
	}
	delete(cur.m, path[len(path)-1])
	return nil
}
