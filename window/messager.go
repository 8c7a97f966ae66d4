// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: window/messager.go
// Summary: The message-browsing window: cursor motion over the store,
// filter stack, send/reply prompts, backfill triggering.

package window

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"runtime/debug"
	"slices"
	"time"

	"github.com/murmurchat/murmur/chunk"
	"github.com/murmurchat/murmur/keymap"
	"github.com/murmurchat/murmur/msgfmt"
	"github.com/murmurchat/murmur/store"
	"github.com/murmurchat/murmur/task"
	"github.com/murmurchat/murmur/tty"
)

// backfillSpan is how far past the oldest visible message a triggered
// backfill reaches.
const backfillSpan = 24 * time.Hour

// sendTimeout bounds outgoing sends and backfills.
const sendTimeout = 30 * time.Second

// Messager browses a message backend. The logical cursor is a message
// id; the filter stack narrows what the viewport sees.
type Messager struct {
	Base
	backend store.Backend
	cursor  store.ID
	filters []store.Filter
}

// NewMessager builds a messager over backend, cursor on the newest
// message.
func NewMessager(fe *tty.Frontend, backend store.Backend) (*Messager, error) {
	m := &Messager{Base: newBase(fe), backend: backend, cursor: store.First}
	for id := range backend.Walk(store.Omega, false, nil) {
		m.cursor = id
		break
	}
	if err := m.BuildKeymap(m.bindings()); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Messager) bindings() []Binding {
	return append(m.stackBindings(m.clone), []Binding{
		{"n", "next-message", m.nextMessage},
		{"p", "prev-message", m.prevMessage},
		{"Meta-<", "first-message", m.firstMessage},
		{"Meta->", "last-message", m.lastMessage},
		{"Control-V", "page-down", m.pageDown},
		{"Meta-v", "page-up", m.pageUp},
		{"Control-L", "recenter", m.recenter},
		{"s", "send-message", m.sendMessage},
		{"r", "reply", m.reply},
		{"f p", "filter-personal", m.filterPersonal},
		{"f s", "filter-sender", m.filterSender},
		{"f f", "pop-filter", m.popFilter},
		{"f g", "clear-filters", m.clearFilters},
	}...)
}

// clone spawns a sibling messager for window splitting, starting where
// this one's cursor is.
func (m *Messager) clone() tty.Window {
	n := &Messager{
		Base:    newBase(m.fe),
		backend: m.backend,
		cursor:  m.cursor,
		filters: slices.Clone(m.filters),
	}
	if err := n.BuildKeymap(n.bindings()); err != nil {
		// the bindings table is static; a compile failure here is a bug
		panic(err)
	}
	return n
}

// Rebind applies configured binding overrides.
func (m *Messager) Rebind(overrides map[string]string) error {
	return m.Base.Rebind(overrides, m.bindings())
}

func (m *Messager) filter() store.Filter {
	var f store.Filter
	for _, g := range m.filters {
		if f == nil {
			f = g
		} else {
			f = store.And(f, g)
		}
	}
	return f
}

func (m *Messager) Cursor() store.ID { return m.cursor }

// View yields rendered messages walking the backend from origin.
func (m *Messager) View(origin store.ID, forward bool) iter.Seq2[store.ID, chunk.Chunk] {
	return func(yield func(store.ID, chunk.Chunk) bool) {
		for id, msg := range m.backend.Walk(origin, forward, m.filter()) {
			if !yield(id, m.renderMessage(id, msg)) {
				return
			}
		}
	}
}

// renderMessage formats one message, falling back to a diagnostic dump
// if the formatter blows up so one bad message cannot blank the viewport.
func (m *Messager) renderMessage(id store.ID, msg *store.Message) (ch chunk.Chunk) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("messager: rendering %s: %v\n%s", id, p, debug.Stack())
			ch = chunk.Chunk{
				{Tags: chunk.TagSet{Attrs: chunk.Standout}, Text: fmt.Sprintf("error rendering %s\n", id)},
				{Text: fmt.Sprintf("%v\n", p)},
				{Text: fmt.Sprintf("%#v\n", msg)},
			}
			ch = m.markCursor(id, ch)
		}
	}()
	return m.markCursor(id, msgfmt.Render(msg))
}

func (m *Messager) markCursor(id store.ID, ch chunk.Chunk) chunk.Chunk {
	if id == m.cursor && len(ch) > 0 {
		ch[0].Tags.Attrs = ch[0].Tags.Attrs.With(chunk.Visible | chunk.Cursor)
	}
	return ch
}

// current returns the message at or just before the cursor.
func (m *Messager) current() (store.ID, *store.Message) {
	for id, msg := range m.backend.Walk(m.cursor, false, m.filter()) {
		return id, msg
	}
	return store.ID{}, nil
}

func (m *Messager) nextMessage(_ keymap.Keystroke, count int) error {
	moved := false
	for id := range m.backend.Walk(m.cursor, true, m.filter()) {
		if m.cursor.Less(id) {
			m.cursor = id
			moved = true
			if count--; count <= 0 {
				return nil
			}
		}
	}
	if moved {
		return nil
	}
	return errors.New("no more messages")
}

func (m *Messager) prevMessage(_ keymap.Keystroke, count int) error {
	moved := false
	for id := range m.backend.Walk(m.cursor, false, m.filter()) {
		if id.Less(m.cursor) {
			m.cursor = id
			moved = true
			if count--; count <= 0 {
				return nil
			}
		}
	}
	if moved {
		return nil
	}
	m.startBackfill()
	return errors.New("no earlier messages")
}

func (m *Messager) firstMessage(keymap.Keystroke, int) error {
	for id := range m.backend.Walk(store.First, true, m.filter()) {
		m.cursor = id
		return nil
	}
	return errors.New("no messages")
}

func (m *Messager) lastMessage(keymap.Keystroke, int) error {
	for id := range m.backend.Walk(store.Omega, false, m.filter()) {
		m.cursor = id
		return nil
	}
	return errors.New("no messages")
}

func (m *Messager) pageDown(keymap.Keystroke, int) error {
	r := m.Renderer()
	if r == nil {
		return nil
	}
	m.cursor = r.Sill().Anchor
	r.PageDown()
	return nil
}

func (m *Messager) pageUp(keymap.Keystroke, int) error {
	r := m.Renderer()
	if r == nil {
		return nil
	}
	m.cursor = r.Head().Anchor
	r.PageUp()
	return nil
}

func (m *Messager) recenter(keymap.Keystroke, int) error {
	if r := m.Renderer(); r != nil {
		r.Reframe()
	}
	return nil
}

// startBackfill asks the backend for older messages and repaints when
// they arrive. The backend's gate collapses overlapping requests.
func (m *Messager) startBackfill() {
	fe := m.fe
	hint := tty.Hint{Window: m.id}
	target := store.ID{Time: m.cursor.Time - int64(backfillSpan)}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := m.backend.Backfill(ctx, target); err != nil {
			log.Printf("messager: backfill: %v", err)
		}
		fe.Call(func() { fe.Redisplay(hint) })
	}()
}

func (m *Messager) sendMessage(keymap.Keystroke, int) error {
	m.promptSend("send: ", "")
	return nil
}

func (m *Messager) reply(keymap.Keystroke, int) error {
	_, msg := m.current()
	if msg == nil {
		return errors.New("no message to reply to")
	}
	params := msg.Sender
	if msg.Backend != "" {
		params = msg.Backend + ":" + msg.Sender
	}
	m.promptSend("reply to "+msg.Sender+": ", params)
	return nil
}

// promptSend reads a line and ships it. The wait happens off the event
// loop; the outcome re-enters through Call.
func (m *Messager) promptSend(prompt, params string) {
	res := m.ReadString(prompt)
	fe := m.fe
	go func() {
		body, err := res.Wait(context.Background())
		if err != nil {
			if !errors.Is(err, task.ErrAborted) {
				log.Printf("messager: prompt: %v", err)
			}
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		err = m.backend.Send(ctx, params, body)
		fe.Call(func() {
			if err != nil {
				fe.Whine(err.Error())
				return
			}
			fe.Redisplay(tty.Hint{})
		})
	}()
}

func (m *Messager) filterPersonal(keymap.Keystroke, int) error {
	m.filters = append(m.filters, store.Personal)
	m.resetCursor()
	return nil
}

func (m *Messager) filterSender(keymap.Keystroke, int) error {
	res := m.ReadString("sender: ")
	fe := m.fe
	go func() {
		name, err := res.Wait(context.Background())
		if err != nil {
			return
		}
		fe.Call(func() {
			m.filters = append(m.filters, store.Sender(name))
			m.resetCursor()
			fe.Redisplay(tty.Hint{Window: m.id})
		})
	}()
	return nil
}

func (m *Messager) popFilter(keymap.Keystroke, int) error {
	if len(m.filters) == 0 {
		return errors.New("no filter to pop")
	}
	m.filters = m.filters[:len(m.filters)-1]
	m.resetCursor()
	return nil
}

func (m *Messager) clearFilters(keymap.Keystroke, int) error {
	m.filters = nil
	m.resetCursor()
	return nil
}

// resetCursor re-anchors the cursor after a filter change so it lands on
// a message the new filter admits.
func (m *Messager) resetCursor() {
	for id := range m.backend.Walk(m.cursor, false, m.filter()) {
		m.cursor = id
		return
	}
	for id := range m.backend.Walk(m.cursor, true, m.filter()) {
		m.cursor = id
		return
	}
}
