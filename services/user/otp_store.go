package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCodeNotFound is returned when no live login code exists for a phone.
var ErrCodeNotFound = errors.New("login code not found or expired")

// CodeStore keeps hashed login codes with their failed attempt counters.
type CodeStore interface {
	Save(ctx context.Context, phone, hash string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (hash string, attempts int, err error)
	// IncrementAttempts counts one attempt atomically and returns the new
	// total, or ErrCodeNotFound once the code is gone.
	IncrementAttempts(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) error
}

// RedisCodeStore stores each code as a hash under login-otp:<phone>.
type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func otpKey(phone string) string {
	return "login-otp:" + phone
}

func (s *RedisCodeStore) Save(ctx context.Context, phone, hash string, ttl time.Duration) error {
	key := otpKey(phone)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "code", hash, "attempts", 0)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to cache login code: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) Get(ctx context.Context, phone string) (string, int, error) {
	vals, err := s.client.HGetAll(ctx, otpKey(phone)).Result()
	if err != nil {
		return "", 0, fmt.Errorf("failed to read login code: %w", err)
	}
	hash, ok := vals["code"]
	if !ok || hash == "" {
		return "", 0, ErrCodeNotFound
	}
	attempts, _ := strconv.Atoi(vals["attempts"])
	return hash, attempts, nil
}

// incrementIfLive bumps the attempt counter only while the code is still
// stored, so an expired key is never recreated without a TTL.
var incrementIfLive = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], "attempts", 1)
`)

// IncrementAttempts atomically counts an attempt and returns the new total.
func (s *RedisCodeStore) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	n, err := incrementIfLive.Run(ctx, s.client, []string{otpKey(phone)}).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to count login attempt: %w", err)
	}
	if n < 0 {
		return 0, ErrCodeNotFound
	}
	return n, nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, otpKey(phone)).Err(); err != nil {
		return fmt.Errorf("failed to delete login code: %w", err)
	}
	return nil
}
