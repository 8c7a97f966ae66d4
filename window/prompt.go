// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: window/prompt.go
// Summary: A one-line editor popup. Settles its result slot on enter or
// abort; tearing the popup down settles it as aborted.

package window

import (
	"iter"

	"github.com/murmurchat/murmur/chunk"
	"github.com/murmurchat/murmur/keymap"
	"github.com/murmurchat/murmur/store"
	"github.com/murmurchat/murmur/task"
	"github.com/murmurchat/murmur/tty"
)

// Prompt is the popup window behind ReadString. Unbound printable keys
// self-insert; everything else goes through the keymap like any window.
type Prompt struct {
	Base
	prompt string
	buf    []rune
	point  int
	result *task.Result[string]
}

// NewPrompt builds a prompt that settles result.
func NewPrompt(fe *tty.Frontend, prompt string, result *task.Result[string]) *Prompt {
	p := &Prompt{Base: newBase(fe), prompt: prompt, result: result}
	p.OnDestroy(func() { p.result.Abort() })
	// the bindings table is static; Bind can only fail on a typo here
	if err := p.BuildKeymap([]Binding{
		{"[carriage return]", "finish", p.finish},
		{"[line feed]", "finish", p.finish},
		{"Control-G", "abort", p.abort},
		{"[delete]", "delete-backward", p.deleteBackward},
		{"Control-H", "delete-backward", p.deleteBackward},
		{"Control-D", "delete-forward", p.deleteForward},
		{"Control-A", "beginning-of-line", p.beginningOfLine},
		{"Control-E", "end-of-line", p.endOfLine},
		{"Control-B", "backward-char", p.backwardChar},
		{"Control-F", "forward-char", p.forwardChar},
		{"Control-K", "kill-to-end", p.killToEnd},
		{"Control-U", "kill-line", p.killLine},
	}); err != nil {
		panic(err)
	}
	return p
}

func (p *Prompt) Cursor() store.ID { return store.ID{} }

// View yields the single prompt line, hardware cursor at point.
func (p *Prompt) View(origin store.ID, forward bool) iter.Seq2[store.ID, chunk.Chunk] {
	return func(yield func(store.ID, chunk.Chunk) bool) {
		ch := chunk.Chunk{
			{Tags: chunk.TagSet{Attrs: chunk.Bold | chunk.Visible}, Text: p.prompt},
			{Text: string(p.buf[:p.point])},
			{Tags: chunk.TagSet{Attrs: chunk.Cursor}, Text: string(p.buf[p.point:]) + "\n"},
		}
		yield(store.ID{}, ch)
	}
}

// HandleKey dispatches through the keymap, with unbound printable runes
// self-inserting at point.
func (p *Prompt) HandleKey(ks keymap.Keystroke) {
	if _, ok := p.km.Get(ks); !ok && ks.IsRune() {
		p.buf = append(p.buf[:p.point], append([]rune{ks.Ch}, p.buf[p.point:]...)...)
		p.point++
		return
	}
	p.Base.HandleKey(ks)
}

func (p *Prompt) finish(keymap.Keystroke, int) error {
	p.result.Resolve(string(p.buf))
	p.fe.PopdownWindow()
	return nil
}

func (p *Prompt) abort(keymap.Keystroke, int) error {
	p.result.Abort()
	p.fe.PopdownWindow()
	return nil
}

func (p *Prompt) deleteBackward(_ keymap.Keystroke, count int) error {
	for ; count > 0 && p.point > 0; count-- {
		p.buf = append(p.buf[:p.point-1], p.buf[p.point:]...)
		p.point--
	}
	return nil
}

func (p *Prompt) deleteForward(_ keymap.Keystroke, count int) error {
	for ; count > 0 && p.point < len(p.buf); count-- {
		p.buf = append(p.buf[:p.point], p.buf[p.point+1:]...)
	}
	return nil
}

func (p *Prompt) beginningOfLine(keymap.Keystroke, int) error {
	p.point = 0
	return nil
}

func (p *Prompt) endOfLine(keymap.Keystroke, int) error {
	p.point = len(p.buf)
	return nil
}

func (p *Prompt) backwardChar(_ keymap.Keystroke, count int) error {
	p.point = max(p.point-count, 0)
	return nil
}

func (p *Prompt) forwardChar(_ keymap.Keystroke, count int) error {
	p.point = min(p.point+count, len(p.buf))
	return nil
}

func (p *Prompt) killToEnd(keymap.Keystroke, int) error {
	p.buf = p.buf[:p.point]
	return nil
}

func (p *Prompt) killLine(keymap.Keystroke, int) error {
	p.buf = nil
	p.point = 0
	return nil
}
