package ingestcache

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// Lock blocks until the advisory lock for key is held or ctx ends. The
// returned function releases it.
func (l Layout) Lock(ctx context.Context, key string) (func() error, error) {
	if err := os.MkdirAll(l.EntryDir(key), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}
	lock := flock.New(l.LockPath(key))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire cache lock: %s busy", l.LockPath(key))
	}
	return lock.Unlock, nil
}
