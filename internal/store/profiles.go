package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mkalra/peercall/internal/domain"
)

// CreateProfile inserts a new user and returns the generated id.
func (s *Store) CreateProfile(ctx context.Context, p domain.Profile) (string, error) {
	var dob sql.NullTime
	if !p.DOB.IsZero() {
		dob = sql.NullTime{Time: p.DOB, Valid: true}
	}
	interest := p.Interest
	if interest == nil {
		interest = []string{}
	}
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (mobile_no, dob, name, gender, avatar, interest)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.MobileNo, dob, p.Name, p.Gender, p.Avatar, interest,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create profile: %w", err)
	}
	return id, nil
}

func (s *Store) ProfileByID(ctx context.Context, id string) (*domain.Profile, error) {
	return s.profile(ctx, `WHERE id = $1`, id)
}

func (s *Store) ProfileByMobile(ctx context.Context, mobile string) (*domain.Profile, error) {
	return s.profile(ctx, `WHERE mobile_no = $1`, mobile)
}

func (s *Store) profile(ctx context.Context, where string, arg any) (*domain.Profile, error) {
	var (
		p   domain.Profile
		dob sql.NullTime
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, mobile_no, dob, name, gender, avatar, interest FROM users `+where, arg,
	).Scan(&p.ID, &p.MobileNo, &dob, &p.Name, &p.Gender, &p.Avatar, &p.Interest)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if dob.Valid {
		p.DOB = dob.Time
	}
	return &p, nil
}

// Cards returns the summary card for every mobile number in the list,
// duplicates preserved in input order (the call-history view relies on
// that). Numbers without a profile are skipped.
func (s *Store) Cards(ctx context.Context, mobiles []string) ([]domain.ProfileCard, error) {
	if len(mobiles) == 0 {
		return []domain.ProfileCard{}, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT name, avatar, mobile_no FROM users WHERE mobile_no = ANY($1)`, mobiles)
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	defer rows.Close()

	byMobile := make(map[string]domain.ProfileCard)
	for rows.Next() {
		var c domain.ProfileCard
		if err := rows.Scan(&c.Name, &c.Avatar, &c.MobileNo); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		byMobile[c.MobileNo] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}

	out := make([]domain.ProfileCard, 0, len(mobiles))
	for _, m := range mobiles {
		if c, ok := byMobile[m]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// AddInterest appends an interest item and returns the updated list.
func (s *Store) AddInterest(ctx context.Context, mobile, item string) ([]string, error) {
	return s.updateInterest(ctx,
		`UPDATE users SET interest = array_append(interest, $2)
		 WHERE mobile_no = $1 AND NOT $2 = ANY(interest) RETURNING interest`,
		mobile, item)
}

// RemoveInterest removes an interest item and returns the updated list.
func (s *Store) RemoveInterest(ctx context.Context, mobile, item string) ([]string, error) {
	return s.updateInterest(ctx,
		`UPDATE users SET interest = array_remove(interest, $2)
		 WHERE mobile_no = $1 RETURNING interest`,
		mobile, item)
}

func (s *Store) updateInterest(ctx context.Context, query, mobile, item string) ([]string, error) {
	var interest []string
	err := s.pool.QueryRow(ctx, query, mobile, item).Scan(&interest)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the user is unknown or the guard matched nothing;
		// hand back the current state.
		p, perr := s.ProfileByMobile(ctx, mobile)
		if perr != nil {
			return nil, perr
		}
		return p.Interest, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update interest: %w", err)
	}
	return interest, nil
}
