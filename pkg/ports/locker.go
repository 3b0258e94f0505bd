package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates access to one viewer session across API replicas
// sharing a session store.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx ends.
	// The returned UnlockFunc must be called to release it; ttl bounds a lost holder.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
