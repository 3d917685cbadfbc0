// Package cache is the cache-aside accessor: every operation tries the redis
// tier first and falls through to a process-local map on any redis error, so
// callers never see a cache failure.
package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"stagepass/config"
)

const opTimeout = 2 * time.Second

type Cache struct {
	client *redis.Client // nil when redis was unreachable at startup

	mu    sync.RWMutex
	local map[string]string // no TTL enforcement; process-lifetime staleness is accepted
}

// New connects to redis and pings it. If the ping fails the accessor still
// works, serving everything from the local map.
func New(cfg config.Redis) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("✗ Redis failed: %v", err)
		client = nil
	} else {
		log.Println("✓ Redis connected")
	}

	return &Cache{
		client: client,
		local:  make(map[string]string),
	}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c.client != nil {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		val, err := c.client.Get(ctx, key).Result()
		if err == nil {
			return val, true
		}
		if err == redis.Nil {
			return "", false
		}
		// fall through on transport errors
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.local[key]
	return val, ok
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if c.client != nil {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		if err := c.client.Set(ctx, key, value, ttl).Err(); err == nil {
			return
		}
	}

	c.mu.Lock()
	c.local[key] = value
	c.mu.Unlock()
}

func (c *Cache) Delete(ctx context.Context, key string) {
	if c.client != nil {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		c.client.Del(ctx, key)
	}

	c.mu.Lock()
	delete(c.local, key)
	c.mu.Unlock()
}
