package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryLockStore struct {
	values map[string]string
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{values: map[string]string{}}
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryLockStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryLockStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryLockStore) CronLockKey(name string) string { return "ff:cron:lock:" + name }

func TestRedisLockIsExclusive(t *testing.T) {
	store := newMemoryLockStore()
	a, err := NewRedisLock(store, "test", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	b, _ := NewRedisLock(store, "test", time.Minute)
	ctx := context.Background()

	if ok, err := a.Acquire(ctx); err != nil || !ok {
		t.Fatalf("expected first acquire to win, ok=%v err=%v", ok, err)
	}
	if ok, _ := b.Acquire(ctx); ok {
		t.Fatal("expected second acquire to lose")
	}
	if err := a.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := b.Acquire(ctx); !ok {
		t.Fatal("expected acquire after release to win")
	}
}

func TestRedisLockLeavesForeignOwnerAlone(t *testing.T) {
	store := newMemoryLockStore()
	lock, _ := NewRedisLock(store, "test", time.Minute)
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("expected acquire")
	}
	// simulate expiry followed by another worker taking over
	store.values["ff:cron:lock:test"] = "someone-else"

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["ff:cron:lock:test"] != "someone-else" {
		t.Fatal("expected foreign lock to survive release")
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "x", 0); err == nil {
		t.Fatal("expected store error")
	}
	if _, err := NewRedisLock(newMemoryLockStore(), "", 0); err == nil {
		t.Fatal("expected name error")
	}
}
