// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// advice.go keeps generated advisory text so repeated requests for the same
// prompt skip the provider round trip. Only successful answers are stored;
// fallback messages never reach the cache.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// adviceKeyPrefix is the Valkey key prefix for cached advisory answers.
	adviceKeyPrefix = "advice:"

	// DefaultAdviceTTL is how long an answer stays cached.
	DefaultAdviceTTL = time.Hour
)

// ValkeyAdvice stores advisory answers in Valkey.
type ValkeyAdvice struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeyAdvice creates an advisory cache backed by the given Valkey client.
func NewValkeyAdvice(client *redis.Client, ttl time.Duration) *ValkeyAdvice {
	if ttl <= 0 {
		ttl = DefaultAdviceTTL
	}
	return &ValkeyAdvice{client: client, ttl: ttl}
}

// Get returns the cached answer for key. Errors count as a miss.
func (c *ValkeyAdvice) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, adviceKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		slog.Warn("advice cache get error", "key", key, "error", err)
		return "", false
	}
	slog.Debug("advice cache hit", "key", key)
	return val, true
}

// Set stores an answer with the configured TTL.
func (c *ValkeyAdvice) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, adviceKeyPrefix+key, value, c.ttl).Err(); err != nil {
		slog.Warn("advice cache set error", "key", key, "error", err)
	}
}

// MemoryAdvice stores advisory answers in process memory. It is used when
// no Valkey host is configured.
type MemoryAdvice struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// NewMemoryAdvice creates an in-process advisory cache.
func NewMemoryAdvice(ttl time.Duration) *MemoryAdvice {
	if ttl <= 0 {
		ttl = DefaultAdviceTTL
	}
	return &MemoryAdvice{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached answer for key if it has not expired.
func (c *MemoryAdvice) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

// Set stores an answer and drops any expired entries.
func (c *MemoryAdvice) Set(_ context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = memoryEntry{value: value, expires: now.Add(c.ttl)}
}
