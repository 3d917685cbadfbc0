// Package session maps opaque tokens to user identities through the
// cache-aside accessor under the "session:" key prefix. Validity is purely
// "does the key resolve"; expiry is the underlying TTL.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stagepass/cache"
)

const keyPrefix = "session:"

type Registry struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewRegistry(c *cache.Cache, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Registry{cache: c, ttl: ttl}
}

// Issue mints a fresh token for identity and registers it.
func (r *Registry) Issue(ctx context.Context, identity string) string {
	token := uuid.NewString()
	r.cache.Set(ctx, keyPrefix+token, identity, r.ttl)
	return token
}

// Resolve returns the identity behind token, or "" when the token is unknown
// or expired.
func (r *Registry) Resolve(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	return r.cache.Get(ctx, keyPrefix+token)
}

// Revoke is best-effort; a missing key is not an error.
func (r *Registry) Revoke(ctx context.Context, token string) {
	if token == "" {
		return
	}
	r.cache.Delete(ctx, keyPrefix+token)
}
