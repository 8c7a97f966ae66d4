// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: store/store.go
// Summary: Content-provider contracts: anchors, messages, backends.
// Usage: The rendering core consumes backends only through Walk; anchors
// (IDs) are the opaque content keys windows and viewports carry around.

package store

import (
	"context"
	"fmt"
	"iter"
	"math"
	"time"
)

// ID anchors a position in a time-ordered message stream. IDs order by
// (Time, Seq); Seq breaks ties between messages sharing a timestamp. The
// zero ID is a valid anchor ordering before every real message except First.
type ID struct {
	Time int64 // unix nanoseconds
	Seq  uint64
}

// First and Omega are the stream-end sentinels: First orders before every
// message, Omega after every message.
var (
	First = ID{Time: math.MinInt64}
	Omega = ID{Time: math.MaxInt64, Seq: math.MaxUint64}
)

// Compare returns -1, 0 or 1 as a orders before, equal to, or after b.
func (a ID) Compare(b ID) int {
	switch {
	case a.Time < b.Time:
		return -1
	case a.Time > b.Time:
		return 1
	case a.Seq < b.Seq:
		return -1
	case a.Seq > b.Seq:
		return 1
	}
	return 0
}

// Less reports whether a orders strictly before b.
func (a ID) Less(b ID) bool {
	return a.Compare(b) < 0
}

// When returns the ID's timestamp.
func (a ID) When() time.Time {
	return time.Unix(0, a.Time)
}

func (a ID) String() string {
	switch a {
	case First:
		return "-inf"
	case Omega:
		return "+inf"
	}
	return fmt.Sprintf("%s/%d", a.When().Format(time.RFC3339Nano), a.Seq)
}

// Message is one displayable item in a backend's stream.
type Message struct {
	ID       ID
	Backend  string
	Sender   string
	Body     string
	Personal bool
	Outgoing bool
	// Data is the raw backend payload, dumped by the fallback rendering
	// when display formatting fails.
	Data map[string]any
}

// Filter is a display predicate over messages. A nil Filter admits all.
type Filter func(*Message) bool

// Personal admits only messages addressed to the user.
func Personal(m *Message) bool {
	return m.Personal
}

// Sender admits messages from one sender.
func Sender(name string) Filter {
	return func(m *Message) bool { return m.Sender == name }
}

// And combines filters conjunctively.
func And(a, b Filter) Filter {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(m *Message) bool { return a(m) && b(m) }
}

// Backend produces a bidirectional, filterable, lazy sequence of messages
// from a time-ordered index.
type Backend interface {
	Name() string

	// Walk yields messages starting at origin, moving forward or backward
	// in time. The first message yielded is the one at origin, or the
	// nearest one in the walk direction. The sequence is restartable:
	// ranging over it twice walks twice. Messages failing filter are
	// skipped before they are yielded.
	Walk(origin ID, forward bool, filter Filter) iter.Seq2[ID, *Message]

	// Backfill fetches older messages until target is covered. Backends
	// keep at most one backfill in flight; a call while one is running
	// returns immediately.
	Backfill(ctx context.Context, target ID) error

	// Send submits an outgoing message.
	Send(ctx context.Context, params, body string) error
}
