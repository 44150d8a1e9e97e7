package shared

import "context"

// Unlock releases a lock obtained from a Locker.
type Unlock func(ctx context.Context) error

// Locker hands out advisory locks keyed by name, e.g. "customer:<id>".
// Acquire blocks until the lock is held or ctx is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (Unlock, error)
}
