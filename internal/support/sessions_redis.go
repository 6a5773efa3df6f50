package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "support:session:"

type redisSessions struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessions stores widget sessions as JSON values that expire after ttl
// of inactivity. A zero ttl keeps them forever.
func NewRedisSessions(rdb *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessions{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses redisURL and verifies the server is reachable.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second
	opts.MaxRetries = 3
	opts.MinRetryBackoff = 100 * time.Millisecond
	opts.MaxRetryBackoff = time.Second

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (r *redisSessions) Get(ctx context.Context, userID string) (*Session, bool, error) {
	raw, err := r.rdb.Get(ctx, sessionKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get session %s: %w", userID, err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, fmt.Errorf("decode session %s: %w", userID, err)
	}
	return &s, true, nil
}

func (r *redisSessions) Save(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.UserID, err)
	}
	if err := r.rdb.Set(ctx, sessionKeyPrefix+s.UserID, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", s.UserID, err)
	}
	return nil
}
