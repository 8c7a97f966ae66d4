// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: store/aggregator.go
// Summary: Merges several backends into one time-ordered stream.
// Usage: The messager window walks the aggregator, never a backend directly.

package store

import (
	"context"
	"fmt"
	"iter"
	"log"
	"strings"
)

// Aggregator presents a set of backends as one Backend whose walk is the
// time-ordered merge of the members' walks.
type Aggregator struct {
	backends []Backend
}

// NewAggregator wraps the given backends.
func NewAggregator(backends ...Backend) *Aggregator {
	return &Aggregator{backends: backends}
}

func (a *Aggregator) Name() string { return "aggregator" }

// Backends returns the member backends.
func (a *Aggregator) Backends() []Backend {
	return a.backends
}

// Walk merges the member walks, always yielding the next message in the
// requested direction.
func (a *Aggregator) Walk(origin ID, forward bool, filter Filter) iter.Seq2[ID, *Message] {
	return func(yield func(ID, *Message) bool) {
		type cursor struct {
			next func() (ID, *Message, bool)
			stop func()
			id   ID
			msg  *Message
			ok   bool
		}
		cursors := make([]*cursor, 0, len(a.backends))
		defer func() {
			for _, c := range cursors {
				c.stop()
			}
		}()
		for _, b := range a.backends {
			next, stop := iter.Pull2(b.Walk(origin, forward, filter))
			c := &cursor{next: next, stop: stop}
			c.id, c.msg, c.ok = c.next()
			cursors = append(cursors, c)
		}
		for {
			var best *cursor
			for _, c := range cursors {
				if !c.ok {
					continue
				}
				if best == nil {
					best = c
					continue
				}
				if forward && c.id.Less(best.id) || !forward && best.id.Less(c.id) {
					best = c
				}
			}
			if best == nil {
				return
			}
			if !yield(best.id, best.msg) {
				return
			}
			best.id, best.msg, best.ok = best.next()
		}
	}
}

// Backfill fans out to every member; each member's own gate keeps its
// backfill single-flight.
func (a *Aggregator) Backfill(ctx context.Context, target ID) error {
	for _, b := range a.backends {
		if err := b.Backfill(ctx, target); err != nil {
			log.Printf("Aggregator: backfill on %s failed: %v", b.Name(), err)
			return fmt.Errorf("backfill %s: %w", b.Name(), err)
		}
	}
	return nil
}

// Send routes to the backend named by a "name:rest" params prefix, falling
// back to the first member.
func (a *Aggregator) Send(ctx context.Context, params, body string) error {
	if len(a.backends) == 0 {
		return fmt.Errorf("no backends")
	}
	target := a.backends[0]
	if name, rest, ok := strings.Cut(params, ":"); ok {
		for _, b := range a.backends {
			if b.Name() == name {
				target, params = b, rest
				break
			}
		}
	}
	return target.Send(ctx, params, body)
}
