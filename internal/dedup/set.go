package dedup

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// HashSet stores lead fingerprints.
type HashSet interface {
	Contains(ctx context.Context, hash string) (bool, error)
	Add(ctx context.Context, hashes ...string) error
	Members(ctx context.Context) ([]string, error)
	Len(ctx context.Context) (int, error)
}

// MemorySet is the in-process HashSet used for single runs.
type MemorySet struct {
	hashes map[string]struct{}
	mu     sync.RWMutex
}

// NewMemorySet creates an empty set.
func NewMemorySet() *MemorySet {
	return &MemorySet{hashes: make(map[string]struct{})}
}

// Contains reports membership.
func (s *MemorySet) Contains(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[hash]
	return ok, nil
}

// Add inserts hashes.
func (s *MemorySet) Add(_ context.Context, hashes ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range hashes {
		s.hashes[h] = struct{}{}
	}
	return nil
}

// Members returns every hash in no particular order.
func (s *MemorySet) Members(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.hashes))
	for h := range s.hashes {
		out = append(out, h)
	}
	return out, nil
}

// Len returns the set size.
func (s *MemorySet) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hashes), nil
}

// DefaultRedisKey holds the lead hash set when no key is configured.
const DefaultRedisKey = "gfmd:lead_hashes"

// RedisSet keeps fingerprints in a Redis set so overlapping runs share them.
type RedisSet struct {
	client *redis.Client
	key    string
}

// NewRedisSet wraps client. An empty key uses DefaultRedisKey.
func NewRedisSet(client *redis.Client, key string) *RedisSet {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSet{client: client, key: key}
}

// Ping checks the connection.
func (s *RedisSet) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Contains reports membership.
func (s *RedisSet) Contains(ctx context.Context, hash string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key, hash).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember: %w", err)
	}
	return ok, nil
}

// Add inserts hashes.
func (s *RedisSet) Add(ctx context.Context, hashes ...string) error {
	if len(hashes) == 0 {
		return nil
	}
	members := make([]any, len(hashes))
	for i, h := range hashes {
		members[i] = h
	}
	if err := s.client.SAdd(ctx, s.key, members...).Err(); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}
	return nil
}

// Members returns every hash.
func (s *RedisSet) Members(ctx context.Context) ([]string, error) {
	out, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return out, nil
}

// Len returns the set size.
func (s *RedisSet) Len(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis scard: %w", err)
	}
	return int(n), nil
}
