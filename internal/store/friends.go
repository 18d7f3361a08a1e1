package store

import (
	"context"
	"fmt"

	"github.com/mkalra/peercall/internal/domain"
)

// The friend graph lives on the users rows as array columns: friends,
// sent_request, new_request and blocked each hold mobile numbers.

// SendRequest records a pending friend request on both sides.
func (s *Store) SendRequest(ctx context.Context, from, to string) error {
	if err := s.requireUsers(ctx, from, to); err != nil {
		return err
	}
	if err := s.appendUnique(ctx, from, "sent_request", to); err != nil {
		return err
	}
	return s.appendUnique(ctx, to, "new_request", from)
}

// CancelSentRequest withdraws a request the sender no longer wants out.
func (s *Store) CancelSentRequest(ctx context.Context, from, to string) error {
	if err := s.requireUsers(ctx, from, to); err != nil {
		return err
	}
	if err := s.removeItem(ctx, from, "sent_request", to); err != nil {
		return err
	}
	return s.removeItem(ctx, to, "new_request", from)
}

// RejectRequest drops an incoming request without friending.
func (s *Store) RejectRequest(ctx context.Context, me, remote string) error {
	if err := s.requireUsers(ctx, me, remote); err != nil {
		return err
	}
	if err := s.removeItem(ctx, me, "new_request", remote); err != nil {
		return err
	}
	return s.removeItem(ctx, remote, "sent_request", me)
}

// AcceptRequest clears the pending request and makes both users friends.
func (s *Store) AcceptRequest(ctx context.Context, me, remote string) error {
	if err := s.requireUsers(ctx, me, remote); err != nil {
		return err
	}
	if err := s.removeItem(ctx, me, "new_request", remote); err != nil {
		return err
	}
	if err := s.appendUnique(ctx, me, "friends", remote); err != nil {
		return err
	}
	if err := s.removeItem(ctx, remote, "sent_request", me); err != nil {
		return err
	}
	return s.appendUnique(ctx, remote, "friends", me)
}

// Unfriend removes remote from me's friend list only; remote keeps its
// stale entry until it unfriends too.
func (s *Store) Unfriend(ctx context.Context, me, remote string) error {
	if err := s.requireUsers(ctx, me); err != nil {
		return err
	}
	return s.removeItem(ctx, me, "friends", remote)
}

// Block puts remote on me's block list and severs the friendship in both
// directions.
func (s *Store) Block(ctx context.Context, me, remote string) error {
	if err := s.requireUsers(ctx, me, remote); err != nil {
		return err
	}
	if err := s.appendUnique(ctx, me, "blocked", remote); err != nil {
		return err
	}
	if err := s.removeItem(ctx, me, "friends", remote); err != nil {
		return err
	}
	return s.removeItem(ctx, remote, "friends", me)
}

// Friends returns profile cards for everyone on me's friend list.
func (s *Store) Friends(ctx context.Context, me string) ([]domain.ProfileCard, error) {
	return s.listCards(ctx, me, "friends")
}

// SentRequests returns cards for the requests me has sent.
func (s *Store) SentRequests(ctx context.Context, me string) ([]domain.ProfileCard, error) {
	return s.listCards(ctx, me, "sent_request")
}

// NewRequests returns cards for the requests waiting on me.
func (s *Store) NewRequests(ctx context.Context, me string) ([]domain.ProfileCard, error) {
	return s.listCards(ctx, me, "new_request")
}

// BlockedUsers returns cards for everyone me has blocked.
func (s *Store) BlockedUsers(ctx context.Context, me string) ([]domain.ProfileCard, error) {
	return s.listCards(ctx, me, "blocked")
}

func (s *Store) listCards(ctx context.Context, me, column string) ([]domain.ProfileCard, error) {
	var mobiles []string
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE mobile_no = $1`, column), me,
	).Scan(&mobiles)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.Cards(ctx, mobiles)
}

// appendUnique adds item to an array column unless it is already there.
// The column name is always a compile-time constant, never user input.
func (s *Store) appendUnique(ctx context.Context, mobile, column, item string) error {
	q := fmt.Sprintf(
		`UPDATE users SET %[1]s = array_append(%[1]s, $2)
		 WHERE mobile_no = $1 AND NOT $2 = ANY(%[1]s)`, column)
	if _, err := s.pool.Exec(ctx, q, mobile, item); err != nil {
		return fmt.Errorf("append %s: %w", column, err)
	}
	return nil
}

func (s *Store) removeItem(ctx context.Context, mobile, column, item string) error {
	q := fmt.Sprintf(
		`UPDATE users SET %[1]s = array_remove(%[1]s, $2) WHERE mobile_no = $1`, column)
	if _, err := s.pool.Exec(ctx, q, mobile, item); err != nil {
		return fmt.Errorf("remove from %s: %w", column, err)
	}
	return nil
}

// requireUsers fails with ErrNotFound unless every mobile number exists.
func (s *Store) requireUsers(ctx context.Context, mobiles ...string) error {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE mobile_no = ANY($1)`, mobiles,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("check users: %w", err)
	}
	if n != len(mobiles) {
		return ErrNotFound
	}
	return nil
}
