package cron

import (
	"context"
	"testing"
	"time"

	"github.com/gourmetpress/gourmetpress-backend/pkg/redis"
)

type fakeLockStore struct {
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: map[string]string{}}
}

func (f *fakeLockStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeLockStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeLockStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeLockStore) LockKey(name string) string { return "gp:lock:" + name }

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewRedisLock(store, "cron-worker", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	ctx := context.Background()

	ok, err := lock.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire = %v, %v", ok, err)
	}

	second, err := NewRedisLock(store, "cron-worker", time.Minute)
	if err != nil {
		t.Fatalf("construct second lock: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatalf("second instance acquired a held lock")
	}

	// A non-owner release leaves the lock in place.
	if err := second.Release(ctx); err != nil {
		t.Fatalf("non-owner release: %v", err)
	}
	if _, held := store.values["gp:lock:cron-worker"]; !held {
		t.Fatalf("lock removed by non-owner")
	}

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("reacquire after release = %v, %v", ok, err)
	}
}

func TestRedisLockReleaseAfterExpiry(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewRedisLock(store, "cron-worker", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	ctx := context.Background()
	if ok, err := lock.Acquire(ctx); err != nil || !ok {
		t.Fatalf("acquire = %v, %v", ok, err)
	}

	// Simulate TTL expiry plus takeover by another instance.
	delete(store.values, "gp:lock:cron-worker")
	store.values["gp:lock:cron-worker"] = "other-owner"

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release after expiry: %v", err)
	}
	if store.values["gp:lock:cron-worker"] != "other-owner" {
		t.Fatalf("release removed a lock owned elsewhere")
	}
}
