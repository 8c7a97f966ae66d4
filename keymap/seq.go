// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: keymap/seq.go
// Summary: Sequence-spec grammar: parsing and modifier normalization.
//
// A sequence spec is a run of modifier names (Control-, Shift-, Meta-,
// Hyper-, Super-, with aliases Ctl- and Alt-) followed by either a single
// literal character or a bracketed symbolic name, optionally followed by
// whitespace and a remainder spec for multi-keystroke bindings:
//
//	"Control-X 2"    "Meta-/ p"    "[escape] [up]"
//
// Normalization can declare a combination untypable (Hyper-x, Control-$),
// which is distinct from an unknown name, which is an error.

package keymap

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrBadSequence marks a spec the grammar cannot parse at all.
	ErrBadSequence = errors.New("invalid key sequence specification")
	// ErrUnknownKey marks a bracketed name that resolves to nothing.
	ErrUnknownKey = errors.New("unknown key name")
)

var modifierAliases = map[string]string{
	"ctl": "control",
	"alt": "meta",
}

var seqRe = regexp.MustCompile(
	`(?i)^((?:(?:control|shift|meta|hyper|super|ctl|alt)-)*)` +
		`(?:(.)|\[([^]]+)\])` +
		`(?:\s+(\S.*))?$`)

// Compile translates a sequence-spec string into a path of normalized
// keystrokes. A valid but untypable spec compiles to a nil path with no
// error; callers treat binding it as a documented no-op.
func Compile(spec string) ([]Keystroke, error) {
	var path []Keystroke
	rest := spec
	for rest != "" {
		key, tail, untypable, err := splitSeq(rest)
		if err != nil {
			return nil, err
		}
		if untypable {
			return nil, nil
		}
		path = append(path, key)
		rest = tail
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadSequence, spec)
	}
	return path, nil
}

// splitSeq resolves the first keystroke of a spec and returns the
// remainder. Meta bindings re-encode as an ESC prefix, pushing the
// original key back onto the remainder in bracketed-name form.
func splitSeq(spec string) (key Keystroke, rest string, untypable bool, err error) {
	if utf8.RuneCountInString(spec) == 1 {
		r, _ := utf8.DecodeRuneInString(spec)
		return Char(r), "", false, nil
	}

	m := seqRe.FindStringSubmatch(spec)
	if m == nil {
		return Keystroke{}, "", false, fmt.Errorf("%w: %q", ErrBadSequence, spec)
	}
	modGroup, chGroup, nameGroup, rest := m[1], m[2], m[3], m[4]

	mods := map[string]bool{}
	for _, mod := range strings.Split(strings.TrimSuffix(modGroup, "-"), "-") {
		if mod == "" {
			continue
		}
		mod = strings.ToLower(mod)
		if canon, ok := modifierAliases[mod]; ok {
			mod = canon
		}
		mods[mod] = true
	}

	if chGroup != "" {
		r, _ := utf8.DecodeRuneInString(chGroup)
		key = Char(r)
	} else {
		var ok bool
		key, ok = namedKey(nameGroup)
		if !ok {
			return Keystroke{}, "", false, fmt.Errorf("%w: %q", ErrUnknownKey, nameGroup)
		}
	}

	if mods["hyper"] || mods["super"] {
		return Keystroke{}, "", true, nil
	}

	if mods["control"] {
		// Control only means something on character keys.
		if !key.IsRune() {
			return Keystroke{}, "", true, nil
		}
		if key.Ch == '?' {
			key = Char(0x7f)
		} else if up := unicode.ToUpper(key.Ch); up >= '@' && up <= '_' {
			key = Char(up - '@')
		} else {
			return Keystroke{}, "", true, nil
		}
	}

	if mods["shift"] {
		if !key.IsRune() {
			return Keystroke{}, "", true, nil
		}
		key = Char(unicode.ToUpper(key.Ch))
	}

	if mods["meta"] {
		var name string
		switch {
		case key.IsRune():
			name = "[" + runeName(key.Ch) + "]"
		case unotherKeys[rune(key.Key)] != "":
			name = "[" + strings.ToUpper(unotherKeys[rune(key.Key)]) + "]"
		case rune(key.Key) < ' ':
			name = "Control-[" + runeName(rune(key.Key)+'@') + "]"
		default:
			name = "[" + key.keyName() + "]"
		}
		if rest != "" {
			name += " " + rest
		}
		rest = name
		key = Char(0x1b)
	}

	return key, rest, false, nil
}

func (k Keystroke) keyName() string {
	if name, ok := keyNamesByKey(k); ok {
		return name
	}
	return fmt.Sprintf("key %d", k.Key)
}
