// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: store/synthetic.go
// Summary: Deterministic in-memory backend for tests and demo sessions.

package store

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/murmurchat/murmur/task"
)

// Synthetic is an in-memory backend holding a sorted message slice. It is
// the reference implementation of the Backend contract and the content
// provider the demo session starts with.
type Synthetic struct {
	mu   sync.RWMutex
	name string
	msgs []*Message
	seq  uint64
	gate task.Gate

	// BackfillBatch is how many older messages one backfill invents.
	BackfillBatch int
}

// NewSynthetic creates a backend pre-populated with count messages spaced a
// second apart, the last one at the current time.
func NewSynthetic(name string, count int) *Synthetic {
	s := &Synthetic{name: name, BackfillBatch: 16}
	base := time.Now().Add(-time.Duration(count) * time.Second)
	for i := 0; i < count; i++ {
		s.Append("synthetic", fmt.Sprintf("message %d\n", i), base.Add(time.Duration(i)*time.Second))
	}
	return s
}

func (s *Synthetic) Name() string { return s.name }

// Append adds a message at the given time and returns its ID.
func (s *Synthetic) Append(sender, body string, at time.Time) ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := ID{Time: at.UnixNano(), Seq: s.seq}
	m := &Message{
		ID:      id,
		Backend: s.name,
		Sender:  sender,
		Body:    body,
		Data:    map[string]any{"sender": sender, "body": body},
	}
	i := sort.Search(len(s.msgs), func(i int) bool { return !s.msgs[i].ID.Less(id) })
	s.msgs = append(s.msgs, nil)
	copy(s.msgs[i+1:], s.msgs[i:])
	s.msgs[i] = m
	return id
}

// Walk implements Backend. The snapshot taken under the lock keeps the
// sequence restartable even while appends are happening.
func (s *Synthetic) Walk(origin ID, forward bool, filter Filter) iter.Seq2[ID, *Message] {
	return func(yield func(ID, *Message) bool) {
		s.mu.RLock()
		msgs := make([]*Message, len(s.msgs))
		copy(msgs, s.msgs)
		s.mu.RUnlock()

		if forward {
			i := sort.Search(len(msgs), func(i int) bool { return !msgs[i].ID.Less(origin) })
			for ; i < len(msgs); i++ {
				if filter != nil && !filter(msgs[i]) {
					continue
				}
				if !yield(msgs[i].ID, msgs[i]) {
					return
				}
			}
		} else {
			i := sort.Search(len(msgs), func(i int) bool { return origin.Less(msgs[i].ID) })
			for i--; i >= 0; i-- {
				if filter != nil && !filter(msgs[i]) {
					continue
				}
				if !yield(msgs[i].ID, msgs[i]) {
					return
				}
			}
		}
	}
}

// Backfill invents BackfillBatch messages older than the current oldest,
// stopping early once target is covered. Guarded so concurrent triggers
// collapse into one run.
func (s *Synthetic) Backfill(ctx context.Context, target ID) error {
	if !s.gate.TryEnter() {
		return nil
	}
	defer s.gate.Leave()

	s.mu.RLock()
	oldest := time.Now()
	if len(s.msgs) > 0 {
		oldest = s.msgs[0].ID.When()
	}
	s.mu.RUnlock()

	for i := 0; i < s.BackfillBatch; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		at := oldest.Add(-time.Duration(i+1) * time.Second)
		if at.UnixNano() < target.Time {
			break
		}
		s.Append("synthetic", fmt.Sprintf("backfilled %s\n", at.Format(time.Stamp)), at)
	}
	return nil
}

// Send appends the outgoing message to the stream.
func (s *Synthetic) Send(ctx context.Context, params, body string) error {
	sender := "me"
	if params != "" {
		sender = params
	}
	id := s.Append(sender, body, time.Now())
	s.mu.Lock()
	if i := s.index(id); i >= 0 {
		s.msgs[i].Outgoing = true
	}
	s.mu.Unlock()
	return nil
}

// index finds a message position by ID; the caller holds the lock.
func (s *Synthetic) index(id ID) int {
	i := sort.Search(len(s.msgs), func(i int) bool { return !s.msgs[i].ID.Less(id) })
	if i < len(s.msgs) && s.msgs[i].ID == id {
		return i
	}
	return -1
}
