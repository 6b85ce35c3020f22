package redisstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("otp expired or not found")

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func otpKey(identifier string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(identifier))
}

// SaveOTP overwrites any pending code for the identifier; the key expires after ttl.
func (s *Store) SaveOTP(ctx context.Context, identifier, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, otpKey(identifier), code, ttl).Err()
}

// ConsumeOTP reads and deletes in one step, so a code verifies at most once.
func (s *Store) ConsumeOTP(ctx context.Context, identifier string) (string, error) {
	code, err := s.rdb.GetDel(ctx, otpKey(identifier)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return code, nil
}
