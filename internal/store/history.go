package store

import (
	"context"
	"fmt"

	"github.com/mkalra/peercall/internal/domain"
)

// AddCallHistory records a finished video call on both participants.
func (s *Store) AddCallHistory(ctx context.Context, mobile, remote string) error {
	if err := s.requireUsers(ctx, mobile, remote); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO call_history (owner, peer) VALUES ($1, $2), ($2, $1)`,
		mobile, remote); err != nil {
		return fmt.Errorf("add call history: %w", err)
	}
	return nil
}

// VideoChatHistory returns a card per past call, duplicates included:
// calling the same person twice lists them twice.
func (s *Store) VideoChatHistory(ctx context.Context, mobile string) ([]domain.ProfileCard, error) {
	if err := s.requireUsers(ctx, mobile); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT peer FROM call_history WHERE owner = $1 ORDER BY id`, mobile)
	if err != nil {
		return nil, fmt.Errorf("load call history: %w", err)
	}
	defer rows.Close()

	var peers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan call history: %w", err)
		}
		peers = append(peers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load call history: %w", err)
	}
	return s.Cards(ctx, peers)
}
