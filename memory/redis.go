package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "sift:memory:"

// RedisStore keeps field sets in Redis as JSON, one key per domain, so that
// several API replicas share what they learned. A single SET is atomic,
// which gives the per-domain write serialization.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps a client. An empty prefix uses the default; a zero
// ttl keeps entries forever.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(domain string) string {
	return r.prefix + domain
}

// Get loads and decodes the domain's set.
func (r *RedisStore) Get(ctx context.Context, domain string) (FieldSet, bool, error) {
	raw, err := r.client.Get(ctx, r.key(domain)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("memory get %s: %w", domain, err)
	}

	var fields FieldSet
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false, fmt.Errorf("memory decode %s: %w", domain, err)
	}
	return fields, true, nil
}

// Put encodes and stores the domain's set.
func (r *RedisStore) Put(ctx context.Context, domain string, fields FieldSet) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("memory encode %s: %w", domain, err)
	}
	if err := r.client.Set(ctx, r.key(domain), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("memory put %s: %w", domain, err)
	}
	return nil
}

// Len counts remembered domains with a SCAN over the key prefix.
func (r *RedisStore) Len(ctx context.Context) (int, error) {
	var n int
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return n, nil
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
