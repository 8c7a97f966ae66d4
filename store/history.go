// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: store/history.go
// Summary: SQLite-backed message history backend.
//
// Provides a persistent, time-indexed message store with:
//   - Async batch recording of incoming messages
//   - Forward/backward walks for the display core
//   - Substring search over bodies and senders

package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/murmurchat/murmur/task"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS messages (
    time     INTEGER NOT NULL,        -- UnixNano
    seq      INTEGER NOT NULL,
    sender   TEXT NOT NULL,
    body     TEXT NOT NULL,
    personal INTEGER DEFAULT 0,
    outgoing INTEGER DEFAULT 0,
    PRIMARY KEY (time, seq)
);

-- Index for time-based navigation
CREATE INDEX IF NOT EXISTS idx_messages_time ON messages(time);
`

// walkBatch is how many rows one query pulls; the walk pages through the
// table so a lazy consumer never loads the whole history.
const walkBatch = 256

// History is a Backend backed by a SQLite database.
type History struct {
	db   *sql.DB
	name string

	mu      sync.Mutex
	pending []*Message
	seq     uint64
	gate    task.Gate

	batchSize    int
	flushTimeout time.Duration
	flushTimer   *time.Timer
	closed       bool
}

// OpenHistory opens (creating if necessary) the history database at path.
func OpenHistory(name, path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	h := &History{
		db:           db,
		name:         name,
		batchSize:    100,
		flushTimeout: 5 * time.Second,
	}
	if err := db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM messages`).Scan(&h.seq); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read sequence: %w", err)
	}
	return h, nil
}

func (h *History) Name() string { return h.name }

// Record queues a message for insertion and returns its assigned ID. The
// batch flushes when full or after the flush timeout, whichever first.
func (h *History) Record(sender, body string, at time.Time, personal, outgoing bool) (ID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ID{}, fmt.Errorf("history %s is closed", h.name)
	}
	h.seq++
	m := &Message{
		ID:       ID{Time: at.UnixNano(), Seq: h.seq},
		Backend:  h.name,
		Sender:   sender,
		Body:     body,
		Personal: personal,
		Outgoing: outgoing,
		Data:     map[string]any{"sender": sender, "body": body},
	}
	h.pending = append(h.pending, m)
	if len(h.pending) >= h.batchSize {
		if err := h.flushLocked(); err != nil {
			return ID{}, err
		}
		return m.ID, nil
	}
	if h.flushTimer == nil {
		h.flushTimer = time.AfterFunc(h.flushTimeout, func() { h.Flush() })
	}
	return m.ID, nil
}

// Flush writes all pending messages.
func (h *History) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flushLocked()
}

func (h *History) flushLocked() error {
	if h.flushTimer != nil {
		h.flushTimer.Stop()
		h.flushTimer = nil
	}
	if len(h.pending) == 0 {
		return nil
	}
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO messages (time, seq, sender, body, personal, outgoing) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, m := range h.pending {
		if _, err := stmt.Exec(m.ID.Time, m.ID.Seq, m.Sender, m.Body, m.Personal, m.Outgoing); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	h.pending = h.pending[:0]
	return nil
}

// Walk implements Backend by paging through the messages table in ID order.
func (h *History) Walk(origin ID, forward bool, filter Filter) iter.Seq2[ID, *Message] {
	return func(yield func(ID, *Message) bool) {
		if err := h.Flush(); err != nil {
			return
		}
		cur := origin
		first := true
		for {
			rows, err := h.queryPage(cur, forward, first)
			if err != nil {
				return
			}
			n := 0
			for _, m := range rows {
				cur = m.ID
				n++
				if filter != nil && !filter(m) {
					continue
				}
				if !yield(m.ID, m) {
					return
				}
			}
			if n < walkBatch {
				return
			}
			first = false
		}
	}
}

func (h *History) queryPage(origin ID, forward, inclusive bool) ([]*Message, error) {
	var q string
	switch {
	case forward && inclusive:
		q = `SELECT time, seq, sender, body, personal, outgoing FROM messages
		     WHERE (time > ? OR (time = ? AND seq >= ?)) ORDER BY time, seq LIMIT ?`
	case forward:
		q = `SELECT time, seq, sender, body, personal, outgoing FROM messages
		     WHERE (time > ? OR (time = ? AND seq > ?)) ORDER BY time, seq LIMIT ?`
	case inclusive:
		q = `SELECT time, seq, sender, body, personal, outgoing FROM messages
		     WHERE (time < ? OR (time = ? AND seq <= ?)) ORDER BY time DESC, seq DESC LIMIT ?`
	default:
		q = `SELECT time, seq, sender, body, personal, outgoing FROM messages
		     WHERE (time < ? OR (time = ? AND seq < ?)) ORDER BY time DESC, seq DESC LIMIT ?`
	}
	rows, err := h.db.Query(q, origin.Time, origin.Time, origin.Seq, walkBatch)
	if err != nil {
		return nil, fmt.Errorf("walk query: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		m := &Message{Backend: h.name}
		if err := rows.Scan(&m.ID.Time, &m.ID.Seq, &m.Sender, &m.Body, &m.Personal, &m.Outgoing); err != nil {
			return nil, fmt.Errorf("walk scan: %w", err)
		}
		m.Data = map[string]any{"sender": m.Sender, "body": m.Body}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Search returns up to limit messages whose body or sender contains query,
// newest first.
func (h *History) Search(query string, limit int) ([]*Message, error) {
	if err := h.Flush(); err != nil {
		return nil, err
	}
	pat := "%" + query + "%"
	rows, err := h.db.Query(`SELECT time, seq, sender, body, personal, outgoing FROM messages
		WHERE body LIKE ? OR sender LIKE ? ORDER BY time DESC, seq DESC LIMIT ?`, pat, pat, limit)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		m := &Message{Backend: h.name}
		if err := rows.Scan(&m.ID.Time, &m.ID.Seq, &m.Sender, &m.Body, &m.Personal, &m.Outgoing); err != nil {
			return nil, fmt.Errorf("search scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Backfill is a no-op for local history; the gate still collapses
// concurrent triggers so callers see uniform backend behavior.
func (h *History) Backfill(ctx context.Context, target ID) error {
	if !h.gate.TryEnter() {
		return nil
	}
	defer h.gate.Leave()
	return nil
}

// Send records the outgoing message locally.
func (h *History) Send(ctx context.Context, params, body string) error {
	sender := "me"
	if params != "" {
		sender = params
	}
	_, err := h.Record(sender, body, time.Now(), false, true)
	return err
}

// Close flushes pending writes and closes the database.
func (h *History) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	err := h.flushLocked()
	h.closed = true
	h.mu.Unlock()
	if cerr := h.db.Close(); err == nil {
		err = cerr
	}
	return err
}
