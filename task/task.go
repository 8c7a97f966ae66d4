// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: task/task.go
// Summary: Single-resolution result slots and the backfill gate.
// Usage: Results carry prompt replies and backend completions back into the
// event loop; Gate collapses concurrently triggered backfills.

package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrAborted is the settlement outcome of a Result whose producer was torn
// down before completion (popup deleted, window evicted on resize).
var ErrAborted = errors.New("operation aborted")

// Result is a slot settled at most once with a value, an error, or an
// abort. It is observable by exactly one waiter through Done or Wait.
type Result[T any] struct {
	mu      sync.Mutex
	done    chan struct{}
	val     T
	err     error
	settled bool
}

// NewResult returns an unsettled Result.
func NewResult[T any]() *Result[T] {
	return &Result[T]{done: make(chan struct{})}
}

func (r *Result[T]) settle(v T, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settled {
		return false
	}
	r.val, r.err = v, err
	r.settled = true
	close(r.done)
	return true
}

// Resolve settles the result with a value. It reports whether this call won;
// later settlements are no-ops.
func (r *Result[T]) Resolve(v T) bool {
	return r.settle(v, nil)
}

// Fail settles the result with an error.
func (r *Result[T]) Fail(err error) bool {
	var zero T
	return r.settle(zero, err)
}

// Abort settles the result with ErrAborted.
func (r *Result[T]) Abort() bool {
	var zero T
	return r.settle(zero, ErrAborted)
}

// Settled reports whether the result has been settled.
func (r *Result[T]) Settled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settled
}

// Done returns a channel closed on settlement.
func (r *Result[T]) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until settlement or context cancellation.
func (r *Result[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Gate is a one-in-flight guard. A second TryEnter while the first holder
// has not Left reports false, so concurrently triggered backfills collapse
// into a no-op.
type Gate struct {
	busy atomic.Bool
}

// TryEnter acquires the gate if it is free.
func (g *Gate) TryEnter() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Leave releases the gate.
func (g *Gate) Leave() {
	g.busy.Store(false)
}
