package store

import (
	"context"
	"fmt"

	"github.com/mkalra/peercall/internal/domain"
)

// Message threads are stored one row per message under a normalized pair
// key, so both participants read and append the same thread.

func pairKey(a, b string) (lo, hi string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Thread returns the full message history between two users, oldest
// first. An empty thread is not an error.
func (s *Store) Thread(ctx context.Context, me, target string) ([]domain.ChatMessage, error) {
	if err := s.requireUsers(ctx, me, target); err != nil {
		return nil, err
	}
	lo, hi := pairKey(me, target)
	rows, err := s.pool.Query(ctx,
		`SELECT body, sender FROM messages WHERE pair_lo = $1 AND pair_hi = $2 ORDER BY id`,
		lo, hi)
	if err != nil {
		return nil, fmt.Errorf("load thread: %w", err)
	}
	defer rows.Close()

	out := []domain.ChatMessage{}
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.Msg, &m.MobileNo); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load thread: %w", err)
	}
	return out, nil
}

// AppendMessage stores one message on the pair's thread and returns the
// updated thread, which is what the client renders.
func (s *Store) AppendMessage(ctx context.Context, me, target string, msg domain.ChatMessage) ([]domain.ChatMessage, error) {
	if err := s.requireUsers(ctx, me, target); err != nil {
		return nil, err
	}
	lo, hi := pairKey(me, target)
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO messages (pair_lo, pair_hi, sender, body) VALUES ($1, $2, $3, $4)`,
		lo, hi, msg.MobileNo, msg.Msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return s.Thread(ctx, me, target)
}
