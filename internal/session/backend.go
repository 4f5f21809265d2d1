// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces session keys in Valkey to avoid collisions.
const keyPrefix = "session:"

// ValkeyBackend stores sessions in Valkey with native key expiry.
type ValkeyBackend struct {
	client *redis.Client
}

// NewValkeyBackend creates a backend on the given Valkey client.
func NewValkeyBackend(client *redis.Client) *ValkeyBackend {
	return &ValkeyBackend{client: client}
}

func (b *ValkeyBackend) Load(ctx context.Context, id string) ([]byte, bool, error) {
	payload, err := b.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (b *ValkeyBackend) Save(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	return b.client.Set(ctx, keyPrefix+id, payload, ttl).Err()
}

func (b *ValkeyBackend) Delete(ctx context.Context, id string) error {
	return b.client.Del(ctx, keyPrefix+id).Err()
}

// MemoryBackend keeps sessions in process memory. Expired entries are
// dropped lazily on access and on every Save.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	payload []byte
	expires time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (b *MemoryBackend) Load(_ context.Context, id string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[id]
	if !ok {
		return nil, false, nil
	}
	if b.now().After(e.expires) {
		delete(b.entries, id)
		return nil, false, nil
	}
	return append([]byte(nil), e.payload...), true, nil
}

func (b *MemoryBackend) Save(_ context.Context, id string, payload []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for k, e := range b.entries {
		if now.After(e.expires) {
			delete(b.entries, k)
		}
	}
	b.entries[id] = memoryEntry{
		payload: append([]byte(nil), payload...),
		expires: now.Add(ttl),
	}
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, id)
	return nil
}

// Len returns the number of stored sessions, including expired entries not
// yet swept.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
