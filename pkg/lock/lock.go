// Package lock provides short-lived exclusive locks used to reject concurrent
// order placements for the same session.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkitchen/catering-backend/pkg/redis"
)

const defaultTTL = 2 * time.Minute

// Lock is a single named lock instance. Acquire reports false when another
// owner holds it.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Factory builds locks by name.
type Factory interface {
	New(name string, ttl time.Duration) (Lock, error)
}

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(name string) string
}

// RedisFactory hands out RedisLocks sharing one client.
type RedisFactory struct {
	client redisStore
}

func NewRedisFactory(client redisStore) (*RedisFactory, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	return &RedisFactory{client: client}, nil
}

func (f *RedisFactory) New(name string, ttl time.Duration) (Lock, error) {
	if name == "" {
		return nil, errors.New("lock name is required")
	}
	return NewRedisLock(f.client, f.client.LockKey(name), ttl)
}

// RedisLock implements Lock using SETNX with a TTL so a crashed holder
// cannot wedge the key forever.
type RedisLock struct {
	client redisStore
	key    string
	ttl    time.Duration
	owner  string
}

func NewRedisLock(client redisStore, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lock only if the owner value still matches.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	value, err := l.client.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			l.owner = ""
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		l.owner = ""
		return nil
	}
	if err := l.client.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.owner = ""
	return nil
}

// MemoryFactory keeps lock ownership in process. Suitable for a single API
// instance and for tests.
type MemoryFactory struct {
	mu    sync.Mutex
	held  map[string]memoryHold
	clock func() time.Time
}

type memoryHold struct {
	owner   string
	expires time.Time
}

func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{held: make(map[string]memoryHold), clock: time.Now}
}

func (f *MemoryFactory) New(name string, ttl time.Duration) (Lock, error) {
	if name == "" {
		return nil, errors.New("lock name is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &memoryLock{factory: f, name: name, ttl: ttl}, nil
}

type memoryLock struct {
	factory *MemoryFactory
	name    string
	ttl     time.Duration
	owner   string
}

func (l *memoryLock) Acquire(context.Context) (bool, error) {
	f := l.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock()
	if hold, ok := f.held[l.name]; ok && now.Before(hold.expires) {
		return false, nil
	}
	owner := uuid.NewString()
	f.held[l.name] = memoryHold{owner: owner, expires: now.Add(l.ttl)}
	l.owner = owner
	return true, nil
}

func (l *memoryLock) Release(context.Context) error {
	if l.owner == "" {
		return nil
	}
	f := l.factory
	f.mu.Lock()
	defer f.mu.Unlock()
	if hold, ok := f.held[l.name]; ok && hold.owner == l.owner {
		delete(f.held, l.name)
	}
	l.owner = ""
	return nil
}
