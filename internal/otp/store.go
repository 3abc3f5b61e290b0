// internal/otp/store.go
package otp

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	codeKeyPrefix   = "otp:code:"
	resendKeyPrefix = "otp:resend:"
)

// Store holds issued verification codes and resend cooldowns. Entries expire
// on their own; nothing outlives its TTL.
type Store interface {
	// SaveCode stores the code for a phone, replacing any live one.
	SaveCode(ctx context.Context, phone, code string, ttl time.Duration) error
	// GetCode returns the live code for a phone, or "" when none exists.
	GetCode(ctx context.Context, phone string) (string, error)
	// DeleteCode removes the code after successful verification.
	DeleteCode(ctx context.Context, phone string) error
	// MarkSent arms the resend cooldown.
	MarkSent(ctx context.Context, phone string, cooldown time.Duration) error
	// Cooldown returns the remaining resend cooldown, zero when expired.
	Cooldown(ctx context.Context, phone string) (time.Duration, error)
}

// RedisStore keeps codes and cooldowns in Redis under TTL keys, so expiry and
// the resend window need no sweeper of their own.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SaveCode(ctx context.Context, phone, code string, ttl time.Duration) error {
	return s.client.Set(ctx, codeKeyPrefix+phone, code, ttl).Err()
}

func (s *RedisStore) GetCode(ctx context.Context, phone string) (string, error) {
	code, err := s.client.Get(ctx, codeKeyPrefix+phone).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *RedisStore) DeleteCode(ctx context.Context, phone string) error {
	return s.client.Del(ctx, codeKeyPrefix+phone).Err()
}

func (s *RedisStore) MarkSent(ctx context.Context, phone string, cooldown time.Duration) error {
	return s.client.Set(ctx, resendKeyPrefix+phone, "1", cooldown).Err()
}

func (s *RedisStore) Cooldown(ctx context.Context, phone string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, resendKeyPrefix+phone).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
