package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"people/internal/person/models"
	"people/pkg/platform/sentinel"
)

const personKeyPrefix = "person:"

// DefaultTTL bounds how long a cached person can lag behind the store when
// a write bypasses this process.
const DefaultTTL = 5 * time.Minute

// RedisCache stores people as JSON keyed by id.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a Redis-backed person cache. A non-positive ttl
// uses DefaultTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func personKey(id int64) string {
	return personKeyPrefix + strconv.FormatInt(id, 10)
}

// Get returns sentinel.ErrNotFound on a cache miss.
func (c *RedisCache) Get(ctx context.Context, id int64) (models.Person, error) {
	raw, err := c.client.Get(ctx, personKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Person{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Person{}, fmt.Errorf("get cached person: %w", err)
	}
	var p models.Person
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.Person{}, fmt.Errorf("decode cached person: %w", err)
	}
	return p, nil
}

func (c *RedisCache) Set(ctx context.Context, p models.Person) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode person: %w", err)
	}
	return c.client.Set(ctx, personKey(p.ID), raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, personKey(id)).Err()
}
