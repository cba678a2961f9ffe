package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisNamespace is the key namespace shared by every client install. Each
// install stores its keys one level below it, see RedisPrefix.
const RedisNamespace = "accountkeeper:"

// ErrNoRedisPrefix is returned by NewRedisTier for an empty prefix, which
// would let Clear wipe every key on the server.
var ErrNoRedisPrefix = errors.New("redis tier needs a key prefix")

// RedisPrefix scopes a RedisTier to one client install.
func RedisPrefix(instanceID string) string {
	return RedisNamespace + instanceID + ":"
}

// RedisTier is an ephemeral tier on redis. Every write refreshes the key TTL,
// so an abandoned backup disappears on its own.
type RedisTier struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisTier returns a tier storing keys under prefix. A ttl of zero keeps
// keys until they are deleted.
func NewRedisTier(client redis.UniversalClient, prefix string, ttl time.Duration) (*RedisTier, error) {
	if prefix == "" {
		return nil, ErrNoRedisPrefix
	}
	return &RedisTier{client: client, prefix: prefix, ttl: ttl}, nil
}

// DialRedis connects to addr and checks the connection with PING.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisTier) key(k string) string { return r.prefix + k }

func (r *RedisTier) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisTier) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisTier) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Clear deletes every key under the tier prefix.
func (r *RedisTier) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s*: %w", r.prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}
