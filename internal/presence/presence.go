// Package presence keeps the volatile per-deployment state in Redis:
// the online-user directory and short-lived SMS verification codes.
package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkalra/peercall/internal/domain"
)

const (
	onlineKey     = "online:users"
	codeKeyPrefix = "sms:code:"
)

type Presence struct {
	rdb     *redis.Client
	codeTTL time.Duration
}

func New(rdb *redis.Client, codeTTL time.Duration) *Presence {
	return &Presence{rdb: rdb, codeTTL: codeTTL}
}

// SetOnline publishes the user's card in the online directory. Returns
// false when the user was already listed.
func (p *Presence) SetOnline(ctx context.Context, card domain.ProfileCard) (bool, error) {
	b, err := json.Marshal(card)
	if err != nil {
		return false, fmt.Errorf("marshal card: %w", err)
	}
	created, err := p.rdb.HSetNX(ctx, onlineKey, card.MobileNo, b).Result()
	if err != nil {
		return false, fmt.Errorf("set online: %w", err)
	}
	return created, nil
}

// OnlineUsers lists every card currently in the directory.
func (p *Presence) OnlineUsers(ctx context.Context) ([]domain.ProfileCard, error) {
	all, err := p.rdb.HGetAll(ctx, onlineKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list online: %w", err)
	}
	out := make([]domain.ProfileCard, 0, len(all))
	for mobile, raw := range all {
		var c domain.ProfileCard
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			// A corrupt entry should not take the directory down.
			_ = p.rdb.HDel(ctx, onlineKey, mobile).Err()
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// StoreCode saves the verification code for a mobile number with a TTL;
// a fresh code replaces any pending one.
func (p *Presence) StoreCode(ctx context.Context, mobile, code string) error {
	return p.rdb.Set(ctx, codeKeyPrefix+mobile, code, p.codeTTL).Err()
}

// ConsumeCode checks a submitted code. A correct code is burned on use;
// a wrong guess reports false and leaves the stored code in place until
// it expires.
func (p *Presence) ConsumeCode(ctx context.Context, mobile, code string) (bool, error) {
	stored, err := p.rdb.Get(ctx, codeKeyPrefix+mobile).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consume code: %w", err)
	}
	if stored != code {
		return false, nil
	}
	_ = p.rdb.Del(ctx, codeKeyPrefix+mobile).Err()
	return true, nil
}
