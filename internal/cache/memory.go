// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryCapacity bounds the in-process cache when no capacity is set.
const DefaultMemoryCapacity = 1024

type memoryEntry struct {
	html      string
	storedAt  time.Time
	expiresAt time.Time
}

// Memory is an in-process page cache with a TTL and a size bound. Expired
// entries are dropped lazily; at capacity the oldest insertion is evicted.
type Memory struct {
	ttl      time.Duration
	capacity int
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemory creates a memory cache. A nil clock defaults to time.Now.
func NewMemory(ttl time.Duration, capacity int, now func() time.Time) *Memory {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &Memory{ttl: ttl, capacity: capacity, now: now, entries: make(map[string]memoryEntry)}
}

func (c *Memory) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return entry.html, true
}

func (c *Memory) Set(_ context.Context, key, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictLocked(now)
	}
	c.entries[key] = memoryEntry{html: html, storedAt: now, expiresAt: now.Add(c.ttl)}
}

func (c *Memory) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Memory) Clear(context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}

// Len reports the number of entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops expired entries, or the oldest one if none expired.
func (c *Memory) evictLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			continue
		}
		if oldestKey == "" || e.storedAt.Before(oldest) {
			oldestKey, oldest = k, e.storedAt
		}
	}
	if len(c.entries) >= c.capacity && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
